package service

import (
	"context"
	"testing"

	"literacy_backend/internal/model"
	"literacy_backend/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func TestUpsertPrescriptiveAnalysis(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	student := createStudent(t, f, "2024-001", "Juan", "Dela Cruz")
	teacher := primitive.NewObjectID()

	first, err := f.analysesSvc.Upsert(ctx, UpsertAnalysisRequest{
		StudentID:    "2024-001",
		Category:     "alphabet_knowledge",
		ReadingLevel: "Low Emerging",
		Strengths:    "Knows vowels",
	}, &teacher)
	require.NoError(t, err)
	assert.Equal(t, student.ID, first.StudentID)
	assert.Equal(t, model.AlphabetKnowledge, first.CategoryID)

	second, err := f.analysesSvc.Upsert(ctx, UpsertAnalysisRequest{
		StudentID:  student.ID.Hex(),
		Category:   "Alphabet Knowledge",
		Weaknesses: "Mixes b and d",
	}, nil)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)
	require.NotNil(t, second.CreatedBy)
	assert.Equal(t, teacher, *second.CreatedBy)

	got, err := f.analysesSvc.FindByStudentAndCategory(ctx, "2024-001", "alphabet_knowledge")
	require.NoError(t, err)
	assert.Equal(t, "Mixes b and d", got.Weaknesses)
	assert.Empty(t, got.Strengths)

	list, err := f.analysesSvc.ListByStudent(ctx, student.ID.Hex())
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPrescriptiveAnalysisErrors(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	createStudent(t, f, "2024-001", "Juan", "Dela Cruz")

	_, err := f.analysesSvc.Upsert(ctx, UpsertAnalysisRequest{StudentID: "nobody", Category: "decoding"}, nil)
	assert.ErrorIs(t, err, util.ErrStudentNotFound)

	_, err = f.analysesSvc.Upsert(ctx, UpsertAnalysisRequest{StudentID: "2024-001", Category: "Spelling"}, nil)
	assert.True(t, util.IsValidation(err))

	_, err = f.analysesSvc.Upsert(ctx, UpsertAnalysisRequest{StudentID: "2024-001", Category: "decoding", ReadingLevel: "fluent"}, nil)
	assert.True(t, util.IsValidation(err))

	_, err = f.analysesSvc.FindByStudentAndCategory(ctx, "2024-001", "decoding")
	assert.ErrorIs(t, err, util.ErrNotFound)

	_, err = f.analysesSvc.FindByStudentAndCategory(ctx, "nobody", "decoding")
	assert.ErrorIs(t, err, util.ErrStudentNotFound)

	list, err := f.analysesSvc.ListByStudent(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, list)
}
