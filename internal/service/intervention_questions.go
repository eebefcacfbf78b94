package service

import (
	"fmt"
	"strings"

	"literacy_backend/internal/model"
	"literacy_backend/internal/util"

	"github.com/google/uuid"
)

type ChoiceRequest struct {
	ChoiceID    string `json:"choiceId"`
	OptionText  string `json:"optionText"`
	IsCorrect   bool   `json:"isCorrect"`
	Description string `json:"description"`
	SoundText   string `json:"soundText"`
}

// QuestionRequest is one staged question from the authoring wizard. Source
// tells where it was copied from; custom questions have no SourceQuestionID.
type QuestionRequest struct {
	QuestionID       string                `json:"questionId"`
	Source           string                `json:"source"`
	SourceQuestionID string                `json:"sourceQuestionId"`
	QuestionType     string                `json:"questionType"`
	QuestionText     string                `json:"questionText"`
	QuestionImage    string                `json:"questionImage"`
	QuestionValue    string                `json:"questionValue"`
	Choices          []ChoiceRequest       `json:"choices"`
	SentenceText     []SentencePageRequest `json:"sentenceText"`
}

// buildQuestions turns wizard input into plan questions, assigning ids and
// default feedback where missing, then validates the result.
func buildQuestions(category model.Category, reqs []QuestionRequest) ([]model.PlanQuestion, error) {
	questions := make([]model.PlanQuestion, 0, len(reqs))
	var fields []util.FieldError
	for i, r := range reqs {
		qt, err := model.ParseQuestionType(r.QuestionType)
		if err != nil {
			fields = append(fields, util.FieldError{
				Field:   fmt.Sprintf("questions[%d].questionType", i),
				Message: fmt.Sprintf("unknown question type %q", r.QuestionType),
			})
			continue
		}

		source := model.QuestionSource(r.Source)
		if source == "" {
			source = model.SourceCustom
			if qt == model.Sentence {
				source = model.SourceSentenceTemplate
			}
		}

		q := model.PlanQuestion{
			QuestionID:       strings.TrimSpace(r.QuestionID),
			Source:           source,
			SourceQuestionID: r.SourceQuestionID,
			QuestionType:     qt,
			QuestionText:     strings.TrimSpace(r.QuestionText),
			QuestionImage:    util.SanitizeImageURL(r.QuestionImage),
			QuestionValue:    r.QuestionValue,
		}
		if q.QuestionID == "" {
			q.QuestionID = uuid.NewString()
		}

		for _, c := range r.Choices {
			choice := model.PlanChoice{
				ChoiceID:    strings.TrimSpace(c.ChoiceID),
				OptionText:  strings.TrimSpace(c.OptionText),
				IsCorrect:   c.IsCorrect,
				Description: strings.TrimSpace(c.Description),
				SoundText:   strings.TrimSpace(c.SoundText),
			}
			if choice.ChoiceID == "" {
				choice.ChoiceID = uuid.NewString()
			}
			q.Choices = append(q.Choices, choice)
		}
		syncChoiceIDs(&q)

		for pi, p := range r.SentenceText {
			n := p.PageNumber
			if n <= 0 {
				n = pi + 1
			}
			q.SentenceText = append(q.SentenceText, model.SentencePage{
				PageNumber: n,
				Text:       p.Text,
				Image:      util.SanitizeImageURL(p.Image),
			})
		}
		questions = append(questions, q)
	}
	if len(fields) > 0 {
		return nil, util.NewValidationError("", fields...)
	}

	model.FillMissingDescriptions(questions)
	if err := validatePlanQuestions(category, questions); err != nil {
		return nil, err
	}
	return questions, nil
}

// syncChoiceIDs derives choiceIds and correctChoiceId from the embedded choices.
func syncChoiceIDs(q *model.PlanQuestion) {
	q.ChoiceIDs = make([]string, 0, len(q.Choices))
	q.CorrectChoiceID = ""
	for _, c := range q.Choices {
		q.ChoiceIDs = append(q.ChoiceIDs, c.ChoiceID)
		if c.IsCorrect {
			q.CorrectChoiceID = c.ChoiceID
		}
	}
}

// validatePlanQuestions checks the rules a plan must satisfy before it can be
// stored or pushed: non-sentence questions carry exactly two choices, sentence
// questions at least two, and every question exactly one correct choice.
func validatePlanQuestions(category model.Category, questions []model.PlanQuestion) error {
	if len(questions) == 0 {
		return util.NewValidationError("", util.FieldError{Field: "questions", Message: "at least one question is required"})
	}
	var fields []util.FieldError
	add := func(i int, field, msg string) {
		fields = append(fields, util.FieldError{Field: fmt.Sprintf("questions[%d]%s", i, field), Message: msg})
	}
	seen := make(map[string]bool, len(questions))
	for i, q := range questions {
		if seen[q.QuestionID] {
			add(i, ".questionId", fmt.Sprintf("duplicate question id %q", q.QuestionID))
		}
		seen[q.QuestionID] = true

		if !q.Source.Valid() {
			add(i, ".source", fmt.Sprintf("unknown source %q", q.Source))
		}
		if !category.Allows(q.QuestionType) {
			add(i, ".questionType", fmt.Sprintf("%s is not allowed for %s", q.QuestionType, category))
		}
		if q.QuestionText == "" && q.QuestionImage == "" {
			add(i, "", "questionText or questionImage is required")
		}

		correct := 0
		for ci, c := range q.Choices {
			if c.OptionText == "" && c.SoundText == "" {
				add(i, fmt.Sprintf(".choices[%d]", ci), "optionText or soundText is required")
			}
			if c.IsCorrect {
				correct++
			}
		}
		if q.QuestionType == model.Sentence {
			if len(q.Choices) < 2 {
				add(i, ".choices", "sentence questions need at least 2 choices")
			}
		} else if len(q.Choices) != 2 {
			add(i, ".choices", fmt.Sprintf("exactly 2 choices are required, got %d", len(q.Choices)))
		}
		if correct != 1 {
			add(i, ".choices", fmt.Sprintf("exactly one choice must be correct, got %d", correct))
		}
	}
	if len(fields) > 0 {
		return util.NewValidationError("", fields...)
	}
	return nil
}
