package service

import (
	"context"
	"testing"
	"time"

	"literacy_backend/internal/model"
	"literacy_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func day(month time.Month, d int) time.Time {
	return time.Date(2024, month, d, 0, 0, 0, 0, time.UTC)
}

// seedResults stores results under each legacy studentId shape the
// assessment app has written over time.
func seedResults(t *testing.T, f *fixture) (*model.User, *model.User) {
	t.Helper()
	student := createStudent(t, f, "1001", "Juan", "Dela Cruz")
	other := createStudent(t, f, "2002", "Pedro", "Penduko")

	f.results.Add(&model.CategoryResult{
		StudentID:      "1001",
		AssessmentDate: day(time.January, 10),
		Categories: []model.CategoryScore{
			{CategoryName: "Alphabet Knowledge", Score: 60, TotalQuestions: 5, CorrectAnswers: 3},
			{CategoryName: "Decoding", Score: 90, TotalQuestions: 10, CorrectAnswers: 9},
		},
	})
	f.results.Add(&model.CategoryResult{
		StudentID:      int32(1001),
		AssessmentDate: day(time.March, 10),
		Categories: []model.CategoryScore{
			{CategoryName: "alphabet_knowledge", Score: 80, TotalQuestions: 5, CorrectAnswers: 4},
			{CategoryName: "Word Recognition", Score: 50, TotalQuestions: 4, CorrectAnswers: 2},
		},
	})
	f.results.Add(&model.CategoryResult{
		StudentObjectID: oidPtr(student.ID),
		AssessmentDate:  day(time.February, 10),
		Categories: []model.CategoryScore{
			{CategoryName: "Phonological Awareness", Score: 70, TotalQuestions: 10, CorrectAnswers: 7},
		},
	})
	f.results.Add(&model.CategoryResult{
		StudentID:      other.ID.Hex(),
		AssessmentDate: day(time.March, 1),
		Categories:     []model.CategoryScore{{CategoryName: "Decoding", Score: 40}},
	})
	return student, other
}

func TestCategoryResultsListByStudent(t *testing.T) {
	f := setup(t)
	student, other := seedResults(t, f)
	ctx := context.Background()

	for _, candidate := range []string{"1001", student.ID.Hex()} {
		results, err := f.resultsSvc.ListByStudent(ctx, candidate)
		require.NoError(t, err)
		require.Len(t, results, 3, candidate)
		assert.True(t, results[0].AssessmentDate.Equal(day(time.March, 10)))
		assert.True(t, results[1].AssessmentDate.Equal(day(time.February, 10)))
		assert.True(t, results[2].AssessmentDate.Equal(day(time.January, 10)))
	}

	results, err := f.resultsSvc.ListByStudent(ctx, other.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, results, 1)

	results, err = f.resultsSvc.ListByStudent(ctx, "9999")
	require.NoError(t, err)
	assert.Empty(t, results)
}

func TestWeakCategories(t *testing.T) {
	f := setup(t)
	seedResults(t, f)
	ctx := context.Background()

	weak, err := f.resultsSvc.WeakCategories(ctx, "1001", 0)
	require.NoError(t, err)
	require.Len(t, weak, 2)
	// the newer 80 supersedes the January 60 for alphabet knowledge
	assert.Equal(t, model.PhonologicalAwareness, weak[0].Category)
	assert.Equal(t, model.WordRecognition, weak[1].Category)
	assert.Equal(t, 50.0, weak[1].Score)

	weak, err = f.resultsSvc.WeakCategories(ctx, "1001", 95)
	require.NoError(t, err)
	assert.Len(t, weak, 4)
}

func TestFindLatest(t *testing.T) {
	f := setup(t)
	student, _ := seedResults(t, f)
	ctx := context.Background()
	ref, err := f.identity.ResolveStudentReference(ctx, student.ID.Hex())
	require.NoError(t, err)

	latest, err := f.resultsSvc.FindLatest(ctx, ref, model.Decoding)
	require.NoError(t, err)
	assert.True(t, latest.AssessmentDate.Equal(day(time.January, 10)))

	_, err = f.resultsSvc.FindLatest(ctx, ref, model.ReadingComprehension)
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func TestMigrateStudentObjectIDs(t *testing.T) {
	f := setup(t)
	student, other := seedResults(t, f)
	f.results.Add(&model.CategoryResult{StudentID: "ghost", AssessmentDate: day(time.April, 1)})
	ctx := context.Background()

	summary, err := f.resultsSvc.MigrateStudentObjectIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, &MigrationSummary{Scanned: 4, Migrated: 3, Unresolved: 1}, summary)

	pending, err := f.results.ListMissingObjectID(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, "ghost", pending[0].StudentID)

	results, err := f.resultsSvc.ListByStudent(ctx, student.ID.Hex())
	require.NoError(t, err)
	for _, r := range results {
		require.NotNil(t, r.StudentObjectID)
		assert.Equal(t, student.ID, *r.StudentObjectID)
	}
	results, err = f.resultsSvc.ListByStudent(ctx, other.ID.Hex())
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, other.ID.Hex(), results[0].StudentID, "legacy field is kept")

	again, err := f.resultsSvc.MigrateStudentObjectIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, &MigrationSummary{Scanned: 1, Unresolved: 1}, again)
}
