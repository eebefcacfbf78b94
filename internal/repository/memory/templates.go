package memory

import (
	"context"
	"sort"
	"sync"

	"literacy_backend/internal/model"
	"literacy_backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type TemplateRepository struct {
	mu        sync.RWMutex
	questions map[primitive.ObjectID]*model.TemplateQuestion
	choices   map[primitive.ObjectID]*model.TemplateChoice
	sentences map[primitive.ObjectID]*model.SentenceTemplate
	main      map[primitive.ObjectID]*model.MainAssessmentQuestion
}

func NewTemplateRepository() *TemplateRepository {
	return &TemplateRepository{
		questions: map[primitive.ObjectID]*model.TemplateQuestion{},
		choices:   map[primitive.ObjectID]*model.TemplateChoice{},
		sentences: map[primitive.ObjectID]*model.SentenceTemplate{},
		main:      map[primitive.ObjectID]*model.MainAssessmentQuestion{},
	}
}

func (r *TemplateRepository) ListQuestions(ctx context.Context, category model.Category) ([]model.TemplateQuestion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.TemplateQuestion{}
	for _, q := range r.questions {
		if q.IsActive && (category == "" || q.Category == category) {
			out = append(out, *clone(q))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *TemplateRepository) FindQuestion(ctx context.Context, id primitive.ObjectID) (*model.TemplateQuestion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	q, ok := r.questions[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(q), nil
}

func (r *TemplateRepository) CreateQuestion(ctx context.Context, q *model.TemplateQuestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	q.Touch(now())
	r.questions[q.ID] = clone(q)
	return nil
}

func (r *TemplateRepository) UpdateQuestion(ctx context.Context, q *model.TemplateQuestion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.questions[q.ID]; !ok {
		return repository.ErrNotFound
	}
	q.UpdatedAt = now()
	r.questions[q.ID] = clone(q)
	return nil
}

func (r *TemplateRepository) DeleteQuestion(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.questions[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.questions, id)
	return nil
}

func (r *TemplateRepository) ListChoices(ctx context.Context, choiceTypes []string) ([]model.TemplateChoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	want := map[string]bool{}
	for _, ct := range choiceTypes {
		want[ct] = true
	}
	out := []model.TemplateChoice{}
	for _, c := range r.choices {
		if c.IsActive && (len(want) == 0 || want[c.ChoiceType]) {
			out = append(out, *clone(c))
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].ChoiceType != out[j].ChoiceType {
			return out[i].ChoiceType < out[j].ChoiceType
		}
		return out[i].ChoiceValue < out[j].ChoiceValue
	})
	return out, nil
}

func (r *TemplateRepository) FindChoice(ctx context.Context, id primitive.ObjectID) (*model.TemplateChoice, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.choices[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(c), nil
}

func (r *TemplateRepository) CreateChoice(ctx context.Context, c *model.TemplateChoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c.Touch(now())
	r.choices[c.ID] = clone(c)
	return nil
}

func (r *TemplateRepository) UpdateChoice(ctx context.Context, c *model.TemplateChoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.choices[c.ID]; !ok {
		return repository.ErrNotFound
	}
	c.UpdatedAt = now()
	r.choices[c.ID] = clone(c)
	return nil
}

func (r *TemplateRepository) DeleteChoice(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.choices[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.choices, id)
	return nil
}

func (r *TemplateRepository) ListSentences(ctx context.Context, level model.ReadingLevel) ([]model.SentenceTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.SentenceTemplate{}
	for _, s := range r.sentences {
		if s.IsActive && (level == "" || s.ReadingLevel == level) {
			out = append(out, *clone(s))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *TemplateRepository) FindSentence(ctx context.Context, id primitive.ObjectID) (*model.SentenceTemplate, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sentences[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(s), nil
}

func (r *TemplateRepository) CreateSentence(ctx context.Context, s *model.SentenceTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s.Touch(now())
	r.sentences[s.ID] = clone(s)
	return nil
}

func (r *TemplateRepository) UpdateSentence(ctx context.Context, s *model.SentenceTemplate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sentences[s.ID]; !ok {
		return repository.ErrNotFound
	}
	s.UpdatedAt = now()
	r.sentences[s.ID] = clone(s)
	return nil
}

func (r *TemplateRepository) DeleteSentence(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sentences[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.sentences, id)
	return nil
}

// AddMainAssessment seeds the read-only placement question bank.
func (r *TemplateRepository) AddMainAssessment(q *model.MainAssessmentQuestion) {
	r.mu.Lock()
	defer r.mu.Unlock()
	q.Touch(now())
	r.main[q.ID] = clone(q)
}

func (r *TemplateRepository) ListMainAssessment(ctx context.Context, category model.Category, level model.ReadingLevel) ([]model.MainAssessmentQuestion, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.MainAssessmentQuestion{}
	for _, q := range r.main {
		if !q.IsActive {
			continue
		}
		if (category == "" || q.Category == category) && (level == "" || q.ReadingLevel == level) {
			out = append(out, *clone(q))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Order < out[j].Order })
	return out, nil
}
