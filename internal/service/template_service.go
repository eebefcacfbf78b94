package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"literacy_backend/internal/model"
	"literacy_backend/internal/repository"
	"literacy_backend/internal/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TemplateService struct {
	Repo TemplateStore
}

func NewTemplateService(repo TemplateStore) *TemplateService {
	return &TemplateService{Repo: repo}
}

type QuestionTemplateRequest struct {
	Category              string   `json:"category" yaml:"category" binding:"required"`
	QuestionType          string   `json:"questionType" yaml:"questionType" binding:"required"`
	TemplateText          string   `json:"templateText" yaml:"templateText" binding:"required"`
	ApplicableChoiceTypes []string `json:"applicableChoiceTypes" yaml:"applicableChoiceTypes"`
	CorrectChoiceType     string   `json:"correctChoiceType" yaml:"correctChoiceType"`
	IsActive              *bool    `json:"isActive" yaml:"isActive"`
}

type ChoiceTemplateRequest struct {
	ChoiceType  string `json:"choiceType" yaml:"choiceType" binding:"required"`
	ChoiceValue string `json:"choiceValue" yaml:"choiceValue"`
	SoundText   string `json:"soundText" yaml:"soundText"`
	IsActive    *bool  `json:"isActive" yaml:"isActive"`
}

type SentencePageRequest struct {
	PageNumber int    `json:"pageNumber" yaml:"pageNumber"`
	Text       string `json:"text" yaml:"text"`
	Image      string `json:"image" yaml:"image"`
}

type SentenceQuestionRequest struct {
	QuestionNumber        int      `json:"questionNumber" yaml:"questionNumber"`
	QuestionText          string   `json:"questionText" yaml:"questionText"`
	SentenceCorrectAnswer string   `json:"sentenceCorrectAnswer" yaml:"sentenceCorrectAnswer"`
	SentenceOptionAnswers []string `json:"sentenceOptionAnswers" yaml:"sentenceOptionAnswers"`
}

type SentenceTemplateRequest struct {
	Title             string                    `json:"title" yaml:"title" binding:"required"`
	Category          string                    `json:"category" yaml:"category"`
	ReadingLevel      string                    `json:"readingLevel" yaml:"readingLevel" binding:"required"`
	SentenceText      []SentencePageRequest     `json:"sentenceText" yaml:"sentenceText"`
	SentenceQuestions []SentenceQuestionRequest `json:"sentenceQuestions" yaml:"sentenceQuestions"`
	IsActive          *bool                     `json:"isActive" yaml:"isActive"`
}

// AllTemplates is the payload of GET /templates/all.
type AllTemplates struct {
	QuestionTemplates []model.TemplateQuestion `json:"questionTemplates"`
	ChoiceTemplates   []model.TemplateChoice   `json:"choiceTemplates"`
	SentenceTemplates []model.SentenceTemplate `json:"sentenceTemplates"`
}

func templateNotFound(kind string, err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s template not found", util.ErrNotFound, kind)
	}
	return err
}

func boolOr(p *bool, def bool) bool {
	if p == nil {
		return def
	}
	return *p
}

// Question templates

func (s *TemplateService) ListQuestionTemplates(ctx context.Context, category string) ([]model.TemplateQuestion, error) {
	var c model.Category
	if category != "" {
		var err error
		if c, err = model.NormalizeCategory(category); err != nil {
			return nil, util.Validationf("invalid category %q", category)
		}
	}
	return s.Repo.ListQuestions(ctx, c)
}

func (s *TemplateService) buildQuestionTemplate(req QuestionTemplateRequest, q *model.TemplateQuestion) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	var fields []util.FieldError
	category, err := model.NormalizeCategory(req.Category)
	if err != nil {
		fields = append(fields, util.FieldError{Field: "category", Message: fmt.Sprintf("unknown category %q", req.Category)})
	}
	qt, err := model.ParseQuestionType(req.QuestionType)
	if err != nil {
		fields = append(fields, util.FieldError{Field: "questionType", Message: fmt.Sprintf("unknown question type %q", req.QuestionType)})
	} else if category != "" && !category.Allows(qt) {
		fields = append(fields, util.FieldError{Field: "questionType", Message: fmt.Sprintf("%s is not allowed for %s", qt, category)})
	}
	if len(req.ApplicableChoiceTypes) == 0 && qt != model.Sentence {
		fields = append(fields, util.FieldError{Field: "applicableChoiceTypes", Message: "at least one choice type is required"})
	}
	for _, ct := range req.ApplicableChoiceTypes {
		if qt != "" && !qt.Allows(ct) {
			fields = append(fields, util.FieldError{Field: "applicableChoiceTypes", Message: fmt.Sprintf("%s is not allowed for %s", ct, qt)})
		}
	}
	if req.CorrectChoiceType != "" && !contains(req.ApplicableChoiceTypes, req.CorrectChoiceType) {
		fields = append(fields, util.FieldError{Field: "correctChoiceType", Message: "must be one of applicableChoiceTypes"})
	}
	if len(fields) > 0 {
		return util.NewValidationError("", fields...)
	}

	q.Category = category
	q.QuestionType = qt
	q.TemplateText = strings.TrimSpace(req.TemplateText)
	q.ApplicableChoiceTypes = req.ApplicableChoiceTypes
	q.CorrectChoiceType = req.CorrectChoiceType
	q.IsActive = boolOr(req.IsActive, true)
	return nil
}

func (s *TemplateService) CreateQuestionTemplate(ctx context.Context, req QuestionTemplateRequest, createdBy *primitive.ObjectID) (*model.TemplateQuestion, error) {
	q := &model.TemplateQuestion{CreatedBy: createdBy}
	if err := s.buildQuestionTemplate(req, q); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateQuestion(ctx, q); err != nil {
		return nil, err
	}
	return q, nil
}

func (s *TemplateService) UpdateQuestionTemplate(ctx context.Context, id string, req QuestionTemplateRequest) (*model.TemplateQuestion, error) {
	oid, err := parseObjectID("id", id)
	if err != nil {
		return nil, err
	}
	q, err := s.Repo.FindQuestion(ctx, oid)
	if err != nil {
		return nil, templateNotFound("question", err)
	}
	if err := s.buildQuestionTemplate(req, q); err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateQuestion(ctx, q); err != nil {
		return nil, templateNotFound("question", err)
	}
	return q, nil
}

func (s *TemplateService) DeleteQuestionTemplate(ctx context.Context, id string) error {
	oid, err := parseObjectID("id", id)
	if err != nil {
		return err
	}
	return templateNotFound("question", s.Repo.DeleteQuestion(ctx, oid))
}

// Choice templates

func (s *TemplateService) ListChoiceTemplates(ctx context.Context, choiceTypes []string) ([]model.TemplateChoice, error) {
	var filtered []string
	for _, ct := range choiceTypes {
		if ct = strings.TrimSpace(ct); ct != "" {
			filtered = append(filtered, ct)
		}
	}
	return s.Repo.ListChoices(ctx, filtered)
}

func (s *TemplateService) buildChoiceTemplate(req ChoiceTemplateRequest, c *model.TemplateChoice) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	if !model.IsKnownChoiceType(req.ChoiceType) {
		return util.NewValidationError("", util.FieldError{Field: "choiceType", Message: fmt.Sprintf("unknown choice type %q", req.ChoiceType)})
	}
	value := strings.TrimSpace(req.ChoiceValue)
	sound := strings.TrimSpace(req.SoundText)
	if value == "" && sound == "" {
		return util.Validationf("either choiceValue or soundText is required")
	}
	c.ChoiceType = req.ChoiceType
	c.ChoiceValue = value
	c.SoundText = sound
	c.IsActive = boolOr(req.IsActive, true)
	return nil
}

func (s *TemplateService) CreateChoiceTemplate(ctx context.Context, req ChoiceTemplateRequest) (*model.TemplateChoice, error) {
	c := &model.TemplateChoice{}
	if err := s.buildChoiceTemplate(req, c); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateChoice(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *TemplateService) UpdateChoiceTemplate(ctx context.Context, id string, req ChoiceTemplateRequest) (*model.TemplateChoice, error) {
	oid, err := parseObjectID("id", id)
	if err != nil {
		return nil, err
	}
	c, err := s.Repo.FindChoice(ctx, oid)
	if err != nil {
		return nil, templateNotFound("choice", err)
	}
	if err := s.buildChoiceTemplate(req, c); err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateChoice(ctx, c); err != nil {
		return nil, templateNotFound("choice", err)
	}
	return c, nil
}

func (s *TemplateService) DeleteChoiceTemplate(ctx context.Context, id string) error {
	oid, err := parseObjectID("id", id)
	if err != nil {
		return err
	}
	return templateNotFound("choice", s.Repo.DeleteChoice(ctx, oid))
}

// Sentence templates

func (s *TemplateService) ListSentenceTemplates(ctx context.Context, readingLevel string) ([]model.SentenceTemplate, error) {
	var level model.ReadingLevel
	if readingLevel != "" {
		var err error
		if level, err = model.NormalizeReadingLevel(readingLevel); err != nil {
			return nil, util.Validationf("invalid readingLevel %q", readingLevel)
		}
	}
	return s.Repo.ListSentences(ctx, level)
}

func (s *TemplateService) buildSentenceTemplate(req SentenceTemplateRequest, t *model.SentenceTemplate) error {
	if err := validateStruct(req); err != nil {
		return err
	}
	var fields []util.FieldError
	level, err := model.NormalizeReadingLevel(req.ReadingLevel)
	if err != nil {
		fields = append(fields, util.FieldError{Field: "readingLevel", Message: fmt.Sprintf("unknown reading level %q", req.ReadingLevel)})
	}
	category := model.ReadingComprehension
	if req.Category != "" {
		if category, err = model.NormalizeCategory(req.Category); err != nil {
			fields = append(fields, util.FieldError{Field: "category", Message: fmt.Sprintf("unknown category %q", req.Category)})
		}
	}
	if len(req.SentenceText) == 0 {
		fields = append(fields, util.FieldError{Field: "sentenceText", Message: "at least one page is required"})
	}
	if len(req.SentenceQuestions) == 0 {
		fields = append(fields, util.FieldError{Field: "sentenceQuestions", Message: "at least one question is required"})
	}

	pages := make([]model.SentencePage, 0, len(req.SentenceText))
	for i, p := range req.SentenceText {
		if strings.TrimSpace(p.Text) == "" {
			fields = append(fields, util.FieldError{Field: fmt.Sprintf("sentenceText[%d].text", i), Message: "page text is required"})
		}
		n := p.PageNumber
		if n <= 0 {
			n = i + 1
		}
		pages = append(pages, model.SentencePage{PageNumber: n, Text: p.Text, Image: util.SanitizeImageURL(p.Image)})
	}
	sort.SliceStable(pages, func(i, j int) bool { return pages[i].PageNumber < pages[j].PageNumber })

	questions := make([]model.SentenceQuestion, 0, len(req.SentenceQuestions))
	for i, q := range req.SentenceQuestions {
		field := fmt.Sprintf("sentenceQuestions[%d]", i)
		if strings.TrimSpace(q.QuestionText) == "" {
			fields = append(fields, util.FieldError{Field: field + ".questionText", Message: "question text is required"})
		}
		if len(q.SentenceOptionAnswers) < 2 {
			fields = append(fields, util.FieldError{Field: field + ".sentenceOptionAnswers", Message: "at least two options are required"})
		}
		if !contains(q.SentenceOptionAnswers, q.SentenceCorrectAnswer) {
			fields = append(fields, util.FieldError{Field: field + ".sentenceCorrectAnswer", Message: "must be one of the options"})
		}
		n := q.QuestionNumber
		if n <= 0 {
			n = i + 1
		}
		questions = append(questions, model.SentenceQuestion{
			QuestionNumber:        n,
			QuestionText:          q.QuestionText,
			SentenceCorrectAnswer: q.SentenceCorrectAnswer,
			SentenceOptionAnswers: q.SentenceOptionAnswers,
		})
	}
	if len(fields) > 0 {
		return util.NewValidationError("", fields...)
	}

	t.Title = strings.TrimSpace(req.Title)
	t.Category = category
	t.ReadingLevel = level
	t.SentenceText = pages
	t.SentenceQuestions = questions
	t.IsActive = boolOr(req.IsActive, true)
	return nil
}

func (s *TemplateService) CreateSentenceTemplate(ctx context.Context, req SentenceTemplateRequest) (*model.SentenceTemplate, error) {
	t := &model.SentenceTemplate{}
	if err := s.buildSentenceTemplate(req, t); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateSentence(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *TemplateService) UpdateSentenceTemplate(ctx context.Context, id string, req SentenceTemplateRequest) (*model.SentenceTemplate, error) {
	oid, err := parseObjectID("id", id)
	if err != nil {
		return nil, err
	}
	t, err := s.Repo.FindSentence(ctx, oid)
	if err != nil {
		return nil, templateNotFound("sentence", err)
	}
	if err := s.buildSentenceTemplate(req, t); err != nil {
		return nil, err
	}
	if err := s.Repo.UpdateSentence(ctx, t); err != nil {
		return nil, templateNotFound("sentence", err)
	}
	return t, nil
}

func (s *TemplateService) DeleteSentenceTemplate(ctx context.Context, id string) error {
	oid, err := parseObjectID("id", id)
	if err != nil {
		return err
	}
	return templateNotFound("sentence", s.Repo.DeleteSentence(ctx, oid))
}

func (s *TemplateService) GetAllTemplates(ctx context.Context) (*AllTemplates, error) {
	questions, err := s.Repo.ListQuestions(ctx, "")
	if err != nil {
		return nil, err
	}
	choices, err := s.Repo.ListChoices(ctx, nil)
	if err != nil {
		return nil, err
	}
	sentences, err := s.Repo.ListSentences(ctx, "")
	if err != nil {
		return nil, err
	}
	return &AllTemplates{QuestionTemplates: questions, ChoiceTemplates: choices, SentenceTemplates: sentences}, nil
}

// ListMainAssessmentQuestions returns the placement questions the wizard can
// copy into a plan.
func (s *TemplateService) ListMainAssessmentQuestions(ctx context.Context, category, readingLevel string) ([]model.MainAssessmentQuestion, error) {
	var c model.Category
	var l model.ReadingLevel
	var err error
	if category != "" {
		if c, err = model.NormalizeCategory(category); err != nil {
			return nil, util.Validationf("invalid category %q", category)
		}
	}
	if readingLevel != "" {
		if l, err = model.NormalizeReadingLevel(readingLevel); err != nil {
			return nil, util.Validationf("invalid readingLevel %q", readingLevel)
		}
	}
	return s.Repo.ListMainAssessment(ctx, c, l)
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
