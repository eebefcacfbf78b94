package service

import (
	"context"
	"testing"

	"literacy_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUpdateExistingInterventions(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	student := createStudent(t, f, "2024-001", "Juan", "Dela Cruz")

	pa := &model.PrescriptiveAnalysis{StudentID: student.ID, CategoryID: model.AlphabetKnowledge}
	require.NoError(t, f.analyses.Upsert(ctx, pa))

	legacy := &model.InterventionPlan{
		StudentID: student.ID,
		Category:  model.AlphabetKnowledge,
		Status:    model.PlanActive,
		Questions: []model.PlanQuestion{{
			QuestionID:   "q1",
			QuestionType: model.Patinig,
			QuestionText: "A?",
			Choices:      []model.PlanChoice{{OptionText: "A", IsCorrect: true}, {OptionText: "E"}},
		}},
	}
	f.plans.Put(legacy)

	// already complete; must not be rewritten
	done := createPlan(t, f, student)
	require.NotNil(t, done.PrescriptiveAnalysisID)

	summary, err := f.interventions.UpdateExistingInterventions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, summary.TotalInterventions)
	assert.Equal(t, 1, summary.UpdatedCount)
	assert.Equal(t, 1, summary.PrescriptiveLinksAddedCount)
	assert.Equal(t, 2, summary.ChoiceDescriptionsAddedCount)

	stored, err := f.plans.FindByID(ctx, legacy.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.PrescriptiveAnalysisID)
	assert.Equal(t, pa.ID, *stored.PrescriptiveAnalysisID)
	for _, c := range stored.Questions[0].Choices {
		assert.NotEmpty(t, c.Description)
	}

	again, err := f.interventions.UpdateExistingInterventions(ctx)
	require.NoError(t, err)
	assert.Equal(t, &BackfillSummary{TotalInterventions: 2}, again)
}

// answeringAnalyses records a correct answer on the plan the first time the
// backfill looks up an analysis, so the plan completes mid-backfill.
type answeringAnalyses struct {
	PrescriptiveAnalysisStore
	t      *testing.T
	svc    *InterventionService
	answer RecordResponseRequest
	done   bool
}

func (a *answeringAnalyses) FindByStudentAndCategory(ctx context.Context, studentID primitive.ObjectID, category model.Category) (*model.PrescriptiveAnalysis, error) {
	if !a.done {
		a.done = true
		res, err := a.svc.RecordResponse(ctx, a.answer)
		require.NoError(a.t, err)
		require.Equal(a.t, model.PlanCompleted, res.PlanStatus)
	}
	return a.PrescriptiveAnalysisStore.FindByStudentAndCategory(ctx, studentID, category)
}

func TestUpdateExistingInterventionsKeepsConcurrentCompletion(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	student := createStudent(t, f, "2024-001", "Juan", "Dela Cruz")

	detail := createPlan(t, f, student)
	require.Nil(t, detail.PrescriptiveAnalysisID)
	_, err := f.interventions.PushIntervention(ctx, detail.ID.Hex())
	require.NoError(t, err)

	pa := &model.PrescriptiveAnalysis{StudentID: student.ID, CategoryID: model.AlphabetKnowledge}
	require.NoError(t, f.analyses.Upsert(ctx, pa))

	f.interventions.Analyses = &answeringAnalyses{
		PrescriptiveAnalysisStore: f.analyses,
		t:                         t,
		svc:                       f.interventions,
		answer: RecordResponseRequest{
			InterventionPlanID: detail.ID.Hex(),
			QuestionID:         detail.Questions[0].QuestionID,
			OptionText:         "A",
		},
	}

	summary, err := f.interventions.UpdateExistingInterventions(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, summary.PrescriptiveLinksAddedCount)

	stored, err := f.plans.FindByID(ctx, detail.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PlanCompleted, stored.Status)
	require.NotNil(t, stored.PrescriptiveAnalysisID)
	assert.Equal(t, pa.ID, *stored.PrescriptiveAnalysisID)
}

func TestLinkPrescriptiveAnalysisOnlyWhenMissing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	student := createStudent(t, f, "2024-001", "Juan", "Dela Cruz")
	detail := createPlan(t, f, student)

	pa := &model.PrescriptiveAnalysis{StudentID: student.ID, CategoryID: model.AlphabetKnowledge}
	require.NoError(t, f.analyses.Upsert(ctx, pa))

	// linked by someone else between the scan and the write
	other := primitive.NewObjectID()
	ok, err := f.plans.LinkPrescriptiveAnalysis(ctx, detail.ID, other)
	require.NoError(t, err)
	require.True(t, ok)
	ok, err = f.plans.LinkPrescriptiveAnalysis(ctx, detail.ID, pa.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	stored, err := f.plans.FindByID(ctx, detail.ID)
	require.NoError(t, err)
	assert.Equal(t, other, *stored.PrescriptiveAnalysisID)
}
