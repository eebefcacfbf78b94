package memory

import (
	"context"
	"sync"
	"time"

	"literacy_backend/internal/model"
	"literacy_backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type InterventionRepository struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]*model.InterventionPlan
}

func NewInterventionRepository() *InterventionRepository {
	return &InterventionRepository{items: map[primitive.ObjectID]*model.InterventionPlan{}}
}

func (r *InterventionRepository) Create(ctx context.Context, p *model.InterventionPlan) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.Touch(now())
	if _, ok := r.items[p.ID]; ok {
		return ErrDuplicateKey
	}
	r.items[p.ID] = clone(p)
	return nil
}

// Put stores p as is, for seeding legacy documents.
func (r *InterventionRepository) Put(p *model.InterventionPlan) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p.Touch(now())
	r.items[p.ID] = clone(p)
}

func (r *InterventionRepository) FindByID(ctx context.Context, id primitive.ObjectID) (*model.InterventionPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.items[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(p), nil
}

func (r *InterventionRepository) FindByStudent(ctx context.Context, studentID primitive.ObjectID) ([]model.InterventionPlan, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.InterventionPlan{}
	for _, p := range r.items {
		if p.StudentID == studentID {
			out = append(out, *clone(p))
		}
	}
	newestFirst(out,
		func(p model.InterventionPlan) time.Time { return p.CreatedAt },
		func(p model.InterventionPlan) primitive.ObjectID { return p.ID },
	)
	return out, nil
}

func (r *InterventionRepository) FindLatestByStudentAndCategory(ctx context.Context, studentID primitive.ObjectID, category model.Category) (*model.InterventionPlan, error) {
	plans, err := r.FindByStudent(ctx, studentID)
	if err != nil {
		return nil, err
	}
	for i := range plans {
		if plans[i].Category == category {
			return &plans[i], nil
		}
	}
	return nil, repository.ErrNotFound
}

// statusIn treats a missing status as draft, like the Mongo filter.
func statusIn(cur model.PlanStatus, from []model.PlanStatus) bool {
	if cur == "" {
		cur = model.PlanDraft
	}
	for _, f := range from {
		if cur == f {
			return true
		}
	}
	return false
}

func (r *InterventionRepository) UpdateDraft(ctx context.Context, p *model.InterventionPlan) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[p.ID]
	if !ok || !statusIn(cur.Status, []model.PlanStatus{model.PlanDraft}) {
		return false, nil
	}
	p.UpdatedAt = now()
	r.items[p.ID] = clone(p)
	return true, nil
}

func (r *InterventionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.items, id)
	return nil
}

func (r *InterventionRepository) TransitionStatus(ctx context.Context, id primitive.ObjectID, from []model.PlanStatus, to model.PlanStatus, pushedAt *time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok || !statusIn(p.Status, from) {
		return false, nil
	}
	p.Status = to
	p.UpdatedAt = now()
	if pushedAt != nil {
		t := pushedAt.UTC().Truncate(time.Millisecond)
		p.PushedAt = &t
	}
	return true, nil
}

func (r *InterventionRepository) LinkPrescriptiveAnalysis(ctx context.Context, id, analysisID primitive.ObjectID) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok || p.PrescriptiveAnalysisID != nil {
		return false, nil
	}
	p.PrescriptiveAnalysisID = &analysisID
	p.UpdatedAt = now()
	return true, nil
}

func (r *InterventionRepository) FillChoiceDescriptions(ctx context.Context, id primitive.ObjectID, qt model.QuestionType, isCorrect bool, description string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[id]
	if !ok {
		return false, nil
	}
	changed := false
	for qi := range p.Questions {
		q := &p.Questions[qi]
		if q.QuestionType != qt {
			continue
		}
		for ci := range q.Choices {
			if q.Choices[ci].IsCorrect == isCorrect && q.Choices[ci].Description == "" {
				q.Choices[ci].Description = description
				changed = true
			}
		}
	}
	if changed {
		p.UpdatedAt = now()
	}
	return changed, nil
}

func (r *InterventionRepository) SetStudentNumberIfMissing(ctx context.Context, id primitive.ObjectID, studentNumber string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.items[id]; ok && p.StudentNumber == "" {
		p.StudentNumber = studentNumber
		p.UpdatedAt = now()
	}
	return nil
}

// ForEach walks a snapshot so fn may write back to the repository.
func (r *InterventionRepository) ForEach(ctx context.Context, fn func(p *model.InterventionPlan) error) error {
	r.mu.RLock()
	snapshot := make([]*model.InterventionPlan, 0, len(r.items))
	for _, p := range r.items {
		snapshot = append(snapshot, clone(p))
	}
	r.mu.RUnlock()

	for _, p := range snapshot {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(p); err != nil {
			return err
		}
	}
	return nil
}
