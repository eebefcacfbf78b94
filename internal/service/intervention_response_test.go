package service

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"literacy_backend/internal/model"
	"literacy_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordResponseCompletesSingleQuestionPlan(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	student := createStudent(t, f, "2024-001", "Juan", "Dela Cruz")
	detail := createPlan(t, f, student)
	q := detail.Questions[0]

	res, err := f.interventions.RecordResponse(ctx, RecordResponseRequest{
		InterventionPlanID: detail.ID.Hex(),
		StudentID:          "2024-001",
		QuestionID:         q.QuestionID,
		ChoiceID:           q.CorrectChoiceID,
		TimeSpentSeconds:   12,
	})
	require.NoError(t, err)

	assert.True(t, res.Response.IsCorrect)
	assert.Equal(t, "A", res.Response.SelectedOptionText)
	assert.Equal(t, "2024-001", res.Response.StudentNumber)
	assert.Equal(t, 12, res.Response.TimeSpentSeconds)
	assert.True(t, res.Response.AnsweredAt.Equal(f.now))

	assert.Equal(t, 1, res.Progress.CompletedActivities)
	assert.Equal(t, 100, res.Progress.PercentComplete)
	assert.Equal(t, 100, res.Progress.PercentCorrect)
	assert.True(t, res.Progress.PassedThreshold)
	assert.Equal(t, model.PlanCompleted, res.PlanStatus)

	stored, err := f.plans.FindByID(ctx, detail.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PlanCompleted, stored.Status)

	progress, err := f.progress.FindByPlan(ctx, detail.ID)
	require.NoError(t, err)
	assert.Equal(t, 100, progress.PercentComplete)
	assert.True(t, progress.PassedThreshold)

	_, err = f.interventions.RecordResponse(ctx, RecordResponseRequest{
		InterventionPlanID: detail.ID.Hex(),
		QuestionID:         q.QuestionID,
		ChoiceID:           q.CorrectChoiceID,
	})
	assert.ErrorIs(t, err, util.ErrPlanCompleted)
}

func TestRecordResponsePartialProgress(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	student := createStudent(t, f, "2024-001", "Juan", "Dela Cruz")
	detail := createPlan(t, f, student, letterQuestion("Una"), letterQuestion("Ikalawa"))

	_, err := f.interventions.ActivateIntervention(ctx, detail.ID.Hex())
	require.NoError(t, err)

	res, err := f.interventions.RecordResponse(ctx, RecordResponseRequest{
		InterventionPlanID: detail.ID.Hex(),
		QuestionID:         detail.Questions[0].QuestionID,
		OptionText:         "E",
	})
	require.NoError(t, err)

	assert.False(t, res.Response.IsCorrect)
	assert.Equal(t, model.DefaultFeedback(model.Patinig, false), res.Response.Description)
	assert.Equal(t, 50, res.Progress.PercentComplete)
	assert.Equal(t, 0, res.Progress.PercentCorrect)
	assert.False(t, res.Progress.PassedThreshold)
	assert.Equal(t, model.PlanActive, res.PlanStatus)

	res, err = f.interventions.RecordResponse(ctx, RecordResponseRequest{
		InterventionPlanID: detail.ID.Hex(),
		QuestionID:         detail.Questions[1].QuestionID,
		OptionText:         "A",
	})
	require.NoError(t, err)
	assert.Equal(t, 100, res.Progress.PercentComplete)
	assert.Equal(t, 50, res.Progress.PercentCorrect)
	assert.False(t, res.Progress.PassedThreshold)
	assert.Equal(t, model.PlanCompleted, res.PlanStatus)
}

func TestRecordResponseErrors(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	student := createStudent(t, f, "2024-001", "Juan", "Dela Cruz")
	other := createStudent(t, f, "2024-002", "Pedro", "Penduko")
	detail := createPlan(t, f, student)
	qid := detail.Questions[0].QuestionID

	tests := []struct {
		name string
		req  RecordResponseRequest
		want error
	}{
		{name: "unknown question", req: RecordResponseRequest{InterventionPlanID: detail.ID.Hex(), QuestionID: "nope", OptionText: "A"}, want: util.ErrQuestionNotFound},
		{name: "unknown choice", req: RecordResponseRequest{InterventionPlanID: detail.ID.Hex(), QuestionID: qid, ChoiceID: "nope"}, want: util.ErrChoiceNotFound},
		{name: "other student", req: RecordResponseRequest{InterventionPlanID: detail.ID.Hex(), StudentID: other.ID.Hex(), QuestionID: qid, OptionText: "A"}, want: util.ErrPermissionDenied},
		{name: "unknown student", req: RecordResponseRequest{InterventionPlanID: detail.ID.Hex(), StudentID: "2099-999", QuestionID: qid, OptionText: "A"}, want: util.ErrStudentNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.interventions.RecordResponse(ctx, tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	_, err := f.interventions.RecordResponse(ctx, RecordResponseRequest{InterventionPlanID: detail.ID.Hex(), QuestionID: qid})
	assert.True(t, util.IsValidation(err))

	_, err = f.interventions.RecordResponse(ctx, RecordResponseRequest{InterventionPlanID: detail.ID.Hex(), QuestionID: qid, OptionText: "A", TimeSpentSeconds: -1})
	assert.True(t, util.IsValidation(err))

	// nothing was recorded by the failed attempts
	responses, err := f.responses.ListByPlan(ctx, detail.ID)
	require.NoError(t, err)
	assert.Empty(t, responses)
}

func TestRecordResponseOnLegacyPlan(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	student := createStudent(t, f, "2024-001", "Juan", "Dela Cruz")
	legacy := &model.InterventionPlan{
		StudentID: student.ID,
		Category:  model.AlphabetKnowledge,
		Status:    model.PlanActive,
		Questions: []model.PlanQuestion{
			{QuestionID: "q1", Source: model.SourceCustom, QuestionType: model.Katinig, QuestionText: "B?",
				Choices: []model.PlanChoice{{OptionText: "B", IsCorrect: true}, {OptionText: "K"}}},
			{QuestionID: "q2", Source: model.SourceCustom, QuestionType: model.Katinig, QuestionText: "K?",
				Choices: []model.PlanChoice{{OptionText: "B"}, {OptionText: "K", IsCorrect: true}}},
		},
	}
	f.plans.Put(legacy)

	res, err := f.interventions.RecordResponse(ctx, RecordResponseRequest{
		InterventionPlanID: legacy.ID.Hex(),
		QuestionID:         "q2",
		OptionText:         "K",
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Progress.TotalActivities)
	assert.Equal(t, 1, res.Progress.CompletedActivities)
	assert.Equal(t, 50, res.Progress.PercentComplete)
	assert.Equal(t, model.DefaultFeedback(model.Katinig, true), res.Response.Description)

	// the idNumber is cached on the plan the first time it is needed
	assert.Equal(t, "2024-001", res.Response.StudentNumber)
	stored, err := f.plans.FindByID(ctx, legacy.ID)
	require.NoError(t, err)
	assert.Equal(t, "2024-001", stored.StudentNumber)
}

func TestPassThresholdFollowsPlan(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	student := createStudent(t, f, "2024-001", "Juan", "Dela Cruz")
	threshold := 50
	detail, err := f.interventions.CreateIntervention(ctx, CreateInterventionRequest{
		StudentID:     student.ID.Hex(),
		Category:      "alphabet_knowledge",
		PassThreshold: &threshold,
		Questions:     []QuestionRequest{letterQuestion("Una"), letterQuestion("Ikalawa")},
	}, nil)
	require.NoError(t, err)

	_, err = f.interventions.RecordResponse(ctx, RecordResponseRequest{InterventionPlanID: detail.ID.Hex(), QuestionID: detail.Questions[0].QuestionID, OptionText: "A"})
	require.NoError(t, err)
	res, err := f.interventions.RecordResponse(ctx, RecordResponseRequest{InterventionPlanID: detail.ID.Hex(), QuestionID: detail.Questions[1].QuestionID, OptionText: "E"})
	require.NoError(t, err)

	assert.Equal(t, 50, res.Progress.PercentCorrect)
	assert.True(t, res.Progress.PassedThreshold)
}

func TestRecordResponseConcurrentAnswersKeepExactCounters(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	student := createStudent(t, f, "2024-001", "Juan", "Dela Cruz")

	questions := make([]QuestionRequest, 8)
	for i := range questions {
		questions[i] = letterQuestion(fmt.Sprintf("Tanong %d", i+1))
	}
	detail := createPlan(t, f, student, questions...)
	_, err := f.interventions.PushIntervention(ctx, detail.ID.Hex())
	require.NoError(t, err)

	var wg sync.WaitGroup
	errs := make([]error, len(detail.Questions))
	for i, q := range detail.Questions {
		answer := "A"
		if i >= 5 {
			answer = "E"
		}
		wg.Add(1)
		go func(i int, questionID, answer string) {
			defer wg.Done()
			_, errs[i] = f.interventions.RecordResponse(ctx, RecordResponseRequest{
				InterventionPlanID: detail.ID.Hex(),
				QuestionID:         questionID,
				OptionText:         answer,
			})
		}(i, q.QuestionID, answer)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}

	progress, err := f.progress.FindByPlan(ctx, detail.ID)
	require.NoError(t, err)
	assert.Equal(t, 8, progress.CompletedActivities)
	assert.Equal(t, 5, progress.CorrectAnswers)
	assert.Equal(t, 3, progress.IncorrectAnswers)
	assert.Equal(t, 100, progress.PercentComplete)
	assert.Equal(t, 63, progress.PercentCorrect)
	assert.False(t, progress.PassedThreshold)

	stored, err := f.plans.FindByID(ctx, detail.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PlanCompleted, stored.Status)

	responses, err := f.responses.ListByPlan(ctx, detail.ID)
	require.NoError(t, err)
	assert.Len(t, responses, 8)
}
