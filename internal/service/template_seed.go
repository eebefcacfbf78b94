package service

import (
	"context"
	"fmt"
	"strings"

	"literacy_backend/internal/model"

	"gopkg.in/yaml.v3"
)

// TemplateSeed is the file format read by scripts/seed_templates.go.
type TemplateSeed struct {
	QuestionTemplates []QuestionTemplateRequest `yaml:"questionTemplates"`
	ChoiceTemplates   []ChoiceTemplateRequest   `yaml:"choiceTemplates"`
	SentenceTemplates []SentenceTemplateRequest `yaml:"sentenceTemplates"`
}

type SeedSummary struct {
	QuestionsAdded int `json:"questionsAdded"`
	ChoicesAdded   int `json:"choicesAdded"`
	SentencesAdded int `json:"sentencesAdded"`
	Skipped        int `json:"skipped"`
}

func ParseTemplateSeed(data []byte) (*TemplateSeed, error) {
	var seed TemplateSeed
	if err := yaml.Unmarshal(data, &seed); err != nil {
		return nil, fmt.Errorf("parse template seed: %w", err)
	}
	return &seed, nil
}

func seedKey(parts ...string) string {
	for i, p := range parts {
		parts[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return strings.Join(parts, "|")
}

// SeedTemplates creates every seed entry that has no existing counterpart, so
// running it twice adds nothing the second time. Invalid entries abort the run.
func (s *TemplateService) SeedTemplates(ctx context.Context, seed *TemplateSeed) (*SeedSummary, error) {
	existing, err := s.GetAllTemplates(ctx)
	if err != nil {
		return nil, err
	}
	summary := &SeedSummary{}

	questions := map[string]bool{}
	for _, q := range existing.QuestionTemplates {
		questions[seedKey(string(q.Category), string(q.QuestionType), q.TemplateText)] = true
	}
	for i, req := range seed.QuestionTemplates {
		category, err := model.NormalizeCategory(req.Category)
		if err != nil {
			return summary, fmt.Errorf("questionTemplates[%d]: %w", i, err)
		}
		key := seedKey(string(category), req.QuestionType, req.TemplateText)
		if questions[key] {
			summary.Skipped++
			continue
		}
		if _, err := s.CreateQuestionTemplate(ctx, req, nil); err != nil {
			return summary, fmt.Errorf("questionTemplates[%d]: %w", i, err)
		}
		questions[key] = true
		summary.QuestionsAdded++
	}

	choices := map[string]bool{}
	for _, c := range existing.ChoiceTemplates {
		choices[seedKey(c.ChoiceType, c.ChoiceValue, c.SoundText)] = true
	}
	for i, req := range seed.ChoiceTemplates {
		key := seedKey(req.ChoiceType, req.ChoiceValue, req.SoundText)
		if choices[key] {
			summary.Skipped++
			continue
		}
		if _, err := s.CreateChoiceTemplate(ctx, req); err != nil {
			return summary, fmt.Errorf("choiceTemplates[%d]: %w", i, err)
		}
		choices[key] = true
		summary.ChoicesAdded++
	}

	sentences := map[string]bool{}
	for _, t := range existing.SentenceTemplates {
		sentences[seedKey(t.Title, string(t.ReadingLevel))] = true
	}
	for i, req := range seed.SentenceTemplates {
		level, err := model.NormalizeReadingLevel(req.ReadingLevel)
		if err != nil {
			return summary, fmt.Errorf("sentenceTemplates[%d]: %w", i, err)
		}
		key := seedKey(req.Title, string(level))
		if sentences[key] {
			summary.Skipped++
			continue
		}
		if _, err := s.CreateSentenceTemplate(ctx, req); err != nil {
			return summary, fmt.Errorf("sentenceTemplates[%d]: %w", i, err)
		}
		sentences[key] = true
		summary.SentencesAdded++
	}
	return summary, nil
}
