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

func TestQuestionTemplates(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	admin := primitive.NewObjectID()

	q, err := f.templatesSvc.CreateQuestionTemplate(ctx, QuestionTemplateRequest{
		Category:              "alphabet_knowledge",
		QuestionType:          "patinig",
		TemplateText:          " Anong titik ito? ",
		ApplicableChoiceTypes: []string{"patinigBigLetter", "patinigSmallLetter"},
		CorrectChoiceType:     "patinigBigLetter",
	}, &admin)
	require.NoError(t, err)
	assert.Equal(t, model.AlphabetKnowledge, q.Category)
	assert.Equal(t, "Anong titik ito?", q.TemplateText)
	assert.True(t, q.IsActive)
	assert.Equal(t, admin, *q.CreatedBy)

	list, err := f.templatesSvc.ListQuestionTemplates(ctx, "Alphabet Knowledge")
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = f.templatesSvc.ListQuestionTemplates(ctx, "decoding")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = f.templatesSvc.ListQuestionTemplates(ctx, "Spelling")
	assert.True(t, util.IsValidation(err))

	inactive := false
	updated, err := f.templatesSvc.UpdateQuestionTemplate(ctx, q.ID.Hex(), QuestionTemplateRequest{
		Category:              "alphabet_knowledge",
		QuestionType:          "katinig",
		TemplateText:          "Anong katinig?",
		ApplicableChoiceTypes: []string{"katinigBigLetter"},
		IsActive:              &inactive,
	})
	require.NoError(t, err)
	assert.Equal(t, model.Katinig, updated.QuestionType)
	assert.False(t, updated.IsActive)

	// inactive templates are hidden from the wizard
	list, err = f.templatesSvc.ListQuestionTemplates(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, f.templatesSvc.DeleteQuestionTemplate(ctx, q.ID.Hex()))
	err = f.templatesSvc.DeleteQuestionTemplate(ctx, q.ID.Hex())
	assert.ErrorIs(t, err, util.ErrNotFound)

	err = f.templatesSvc.DeleteQuestionTemplate(ctx, "bad")
	var cerr *util.CastError
	assert.ErrorAs(t, err, &cerr)
}

func TestQuestionTemplateValidation(t *testing.T) {
	f := setup(t)
	tests := []struct {
		name string
		req  QuestionTemplateRequest
	}{
		{name: "missing text", req: QuestionTemplateRequest{Category: "decoding", QuestionType: "word", ApplicableChoiceTypes: []string{"wordText"}}},
		{name: "type not in category", req: QuestionTemplateRequest{Category: "word_recognition", QuestionType: "patinig", TemplateText: "x", ApplicableChoiceTypes: []string{"patinigSound"}}},
		{name: "choice type not in question type", req: QuestionTemplateRequest{Category: "decoding", QuestionType: "word", TemplateText: "x", ApplicableChoiceTypes: []string{"patinigSound"}}},
		{name: "no choice types", req: QuestionTemplateRequest{Category: "decoding", QuestionType: "word", TemplateText: "x"}},
		{name: "correct type outside applicable", req: QuestionTemplateRequest{Category: "decoding", QuestionType: "word", TemplateText: "x", ApplicableChoiceTypes: []string{"wordText"}, CorrectChoiceType: "wordSound"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.templatesSvc.CreateQuestionTemplate(context.Background(), tt.req, nil)
			assert.True(t, util.IsValidation(err), "got %v", err)
		})
	}
}

func TestChoiceTemplates(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	_, err := f.templatesSvc.CreateChoiceTemplate(ctx, ChoiceTemplateRequest{ChoiceType: "patinigBigLetter", ChoiceValue: "A"})
	require.NoError(t, err)
	sound, err := f.templatesSvc.CreateChoiceTemplate(ctx, ChoiceTemplateRequest{ChoiceType: "patinigSound", SoundText: "/ah/"})
	require.NoError(t, err)
	_, err = f.templatesSvc.CreateChoiceTemplate(ctx, ChoiceTemplateRequest{ChoiceType: "wordText", ChoiceValue: "aso"})
	require.NoError(t, err)

	_, err = f.templatesSvc.CreateChoiceTemplate(ctx, ChoiceTemplateRequest{ChoiceType: "patinigBigLetter"})
	assert.True(t, util.IsValidation(err), "a choice needs a value or a sound")
	_, err = f.templatesSvc.CreateChoiceTemplate(ctx, ChoiceTemplateRequest{ChoiceType: "emoji", ChoiceValue: "x"})
	assert.True(t, util.IsValidation(err))

	list, err := f.templatesSvc.ListChoiceTemplates(ctx, []string{"patinigBigLetter", " patinigSound ", ""})
	require.NoError(t, err)
	assert.Len(t, list, 2)

	all, err := f.templatesSvc.ListChoiceTemplates(ctx, nil)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	_, err = f.templatesSvc.UpdateChoiceTemplate(ctx, sound.ID.Hex(), ChoiceTemplateRequest{ChoiceType: "patinigSound"})
	assert.True(t, util.IsValidation(err))

	_, err = f.templatesSvc.UpdateChoiceTemplate(ctx, primitive.NewObjectID().Hex(), ChoiceTemplateRequest{ChoiceType: "patinigSound", SoundText: "/eh/"})
	assert.ErrorIs(t, err, util.ErrNotFound)
}

func sentenceRequest() SentenceTemplateRequest {
	return SentenceTemplateRequest{
		Title:        "Si Ana at ang Aso",
		ReadingLevel: "low_emerging",
		SentenceText: []SentencePageRequest{
			{PageNumber: 2, Text: "Ang aso ay puti."},
			{PageNumber: 1, Text: "Si Ana ay may aso.", Image: "https://cdn.example.com/ana.png\"junk"},
		},
		SentenceQuestions: []SentenceQuestionRequest{{
			QuestionText:          "Ano ang alaga ni Ana?",
			SentenceCorrectAnswer: "aso",
			SentenceOptionAnswers: []string{"aso", "pusa"},
		}},
	}
}

func TestSentenceTemplates(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	tpl, err := f.templatesSvc.CreateSentenceTemplate(ctx, sentenceRequest())
	require.NoError(t, err)
	assert.Equal(t, model.ReadingComprehension, tpl.Category)
	assert.Equal(t, model.LowEmerging, tpl.ReadingLevel)
	require.Len(t, tpl.SentenceText, 2)
	assert.Equal(t, 1, tpl.SentenceText[0].PageNumber)
	assert.Equal(t, "https://cdn.example.com/ana.png", tpl.SentenceText[0].Image)
	assert.Equal(t, 1, tpl.SentenceQuestions[0].QuestionNumber)

	list, err := f.templatesSvc.ListSentenceTemplates(ctx, "Low Emerging")
	require.NoError(t, err)
	assert.Len(t, list, 1)
	list, err = f.templatesSvc.ListSentenceTemplates(ctx, "developing")
	require.NoError(t, err)
	assert.Empty(t, list)

	all, err := f.templatesSvc.GetAllTemplates(ctx)
	require.NoError(t, err)
	assert.Len(t, all.SentenceTemplates, 1)
	assert.Empty(t, all.QuestionTemplates)

	require.NoError(t, f.templatesSvc.DeleteSentenceTemplate(ctx, tpl.ID.Hex()))
}

func TestSentenceTemplateValidation(t *testing.T) {
	f := setup(t)

	noPages := sentenceRequest()
	noPages.SentenceText = nil
	noQuestions := sentenceRequest()
	noQuestions.SentenceQuestions = []SentenceQuestionRequest{}
	wrongAnswer := sentenceRequest()
	wrongAnswer.SentenceQuestions[0].SentenceCorrectAnswer = "ibon"
	oneOption := sentenceRequest()
	oneOption.SentenceQuestions[0].SentenceOptionAnswers = []string{"aso"}
	blankPage := sentenceRequest()
	blankPage.SentenceText[0].Text = "  "
	badLevel := sentenceRequest()
	badLevel.ReadingLevel = "Grade 2"

	for name, req := range map[string]SentenceTemplateRequest{
		"no pages":      noPages,
		"no questions":  noQuestions,
		"wrong answer":  wrongAnswer,
		"one option":    oneOption,
		"blank page":    blankPage,
		"unknown level": badLevel,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := f.templatesSvc.CreateSentenceTemplate(context.Background(), req)
			assert.True(t, util.IsValidation(err), "got %v", err)
		})
	}
}

func TestListMainAssessmentQuestions(t *testing.T) {
	f := setup(t)
	f.templates.AddMainAssessment(&model.MainAssessmentQuestion{Category: model.AlphabetKnowledge, ReadingLevel: model.LowEmerging, QuestionType: model.Patinig, QuestionText: "second", Order: 2, IsActive: true})
	f.templates.AddMainAssessment(&model.MainAssessmentQuestion{Category: model.AlphabetKnowledge, ReadingLevel: model.LowEmerging, QuestionType: model.Patinig, QuestionText: "first", Order: 1, IsActive: true})
	f.templates.AddMainAssessment(&model.MainAssessmentQuestion{Category: model.Decoding, ReadingLevel: model.Developing, QuestionType: model.Word, QuestionText: "other", Order: 1, IsActive: true})

	got, err := f.templatesSvc.ListMainAssessmentQuestions(context.Background(), "alphabet_knowledge", "Low Emerging")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "first", got[0].QuestionText)

	_, err = f.templatesSvc.ListMainAssessmentQuestions(context.Background(), "alphabet_knowledge", "Grade 9")
	assert.True(t, util.IsValidation(err))
}

const seedYAML = `
questionTemplates:
  - category: alphabet_knowledge
    questionType: patinig
    templateText: Anong titik?
    applicableChoiceTypes: [patinigBigLetter]
choiceTemplates:
  - { choiceType: patinigBigLetter, choiceValue: A }
  - { choiceType: patinigBigLetter, choiceValue: E }
sentenceTemplates:
  - title: Si Ana
    readingLevel: Low Emerging
    sentenceText:
      - { text: "Si Ana ay may aso." }
    sentenceQuestions:
      - questionText: Ano ang alaga ni Ana?
        sentenceCorrectAnswer: aso
        sentenceOptionAnswers: [aso, pusa]
`

func TestSeedTemplates(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	seed, err := ParseTemplateSeed([]byte(seedYAML))
	require.NoError(t, err)
	require.Len(t, seed.ChoiceTemplates, 2)

	summary, err := f.templatesSvc.SeedTemplates(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, &SeedSummary{QuestionsAdded: 1, ChoicesAdded: 2, SentencesAdded: 1}, summary)

	summary, err = f.templatesSvc.SeedTemplates(ctx, seed)
	require.NoError(t, err)
	assert.Equal(t, &SeedSummary{Skipped: 4}, summary)

	_, err = ParseTemplateSeed([]byte("questionTemplates: {"))
	assert.Error(t, err)
}
