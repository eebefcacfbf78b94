package memory

import (
	"context"
	"sync"
	"time"

	"literacy_backend/internal/model"
	"literacy_backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ProgressRepository struct {
	mu    sync.Mutex
	items map[primitive.ObjectID]*model.InterventionProgress // keyed by plan id

	// FailCreate, when set, is returned by Create.
	FailCreate error
}

func NewProgressRepository() *ProgressRepository {
	return &ProgressRepository{items: map[primitive.ObjectID]*model.InterventionProgress{}}
}

func (r *ProgressRepository) Create(ctx context.Context, p *model.InterventionProgress) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.FailCreate != nil {
		return r.FailCreate
	}
	if _, ok := r.items[p.InterventionPlanID]; ok {
		return ErrDuplicateKey
	}
	p.Touch(now())
	r.items[p.InterventionPlanID] = clone(p)
	return nil
}

func (r *ProgressRepository) FindByPlan(ctx context.Context, planID primitive.ObjectID) (*model.InterventionProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[planID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return clone(p), nil
}

func (r *ProgressRepository) DeleteByPlan(ctx context.Context, planID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.items[planID]; !ok {
		return 0, nil
	}
	delete(r.items, planID)
	return 1, nil
}

func (r *ProgressRepository) SyncWithPlan(ctx context.Context, planID, studentID primitive.ObjectID, total int) (*model.InterventionProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[planID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.StudentID = studentID
	p.TotalActivities = total
	p.UpdatedAt = now()
	return clone(p), nil
}

func (r *ProgressRepository) IncrementCounters(ctx context.Context, planID primitive.ObjectID, correct bool, at time.Time) (*model.InterventionProgress, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.items[planID]
	if !ok {
		return nil, repository.ErrNotFound
	}
	p.CompletedActivities++
	if correct {
		p.CorrectAnswers++
	} else {
		p.IncorrectAnswers++
	}
	t := at.UTC().Truncate(time.Millisecond)
	p.LastActivity = &t
	p.UpdatedAt = t
	return clone(p), nil
}

func (r *ProgressRepository) SaveDerived(ctx context.Context, p *model.InterventionProgress) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cur, ok := r.items[p.InterventionPlanID]
	if !ok || cur.ID != p.ID ||
		cur.CompletedActivities != p.CompletedActivities ||
		cur.CorrectAnswers != p.CorrectAnswers ||
		cur.IncorrectAnswers != p.IncorrectAnswers ||
		cur.TotalActivities != p.TotalActivities {
		return false, nil
	}
	cur.PercentComplete = p.PercentComplete
	cur.PercentCorrect = p.PercentCorrect
	cur.PassedThreshold = p.PassedThreshold
	return true, nil
}

type ResponseRepository struct {
	mu    sync.RWMutex
	items []*model.InterventionResponse
}

func NewResponseRepository() *ResponseRepository {
	return &ResponseRepository{}
}

func (r *ResponseRepository) Create(ctx context.Context, resp *model.InterventionResponse) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	resp.Touch(now())
	r.items = append(r.items, clone(resp))
	return nil
}

func (r *ResponseRepository) ListByPlan(ctx context.Context, planID primitive.ObjectID) ([]model.InterventionResponse, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.InterventionResponse{}
	for _, resp := range r.items {
		if resp.InterventionPlanID == planID {
			out = append(out, *clone(resp))
		}
	}
	return out, nil
}

func (r *ResponseRepository) DeleteByPlan(ctx context.Context, planID primitive.ObjectID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.items[:0]
	var removed int64
	for _, resp := range r.items {
		if resp.InterventionPlanID == planID {
			removed++
			continue
		}
		kept = append(kept, resp)
	}
	r.items = kept
	return removed, nil
}
