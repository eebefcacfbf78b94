package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"literacy_backend/internal/model"
	"literacy_backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type CategoryResultRepository struct {
	mu    sync.RWMutex
	items []*model.CategoryResult
}

func NewCategoryResultRepository() *CategoryResultRepository {
	return &CategoryResultRepository{}
}

// Add seeds a result as the assessment app would have written it.
func (r *CategoryResultRepository) Add(res *model.CategoryResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if res.ID.IsZero() {
		res.ID = primitive.NewObjectID()
	}
	r.items = append(r.items, clone(res))
}

// legacyKey compares legacy studentId values the way the database does:
// numbers match across widths, strings only match strings.
func legacyKey(v interface{}) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return "oid:" + id.Hex()
	case string:
		return "str:" + id
	case int32, int64, int:
		return fmt.Sprintf("num:%d", id)
	case float64:
		return fmt.Sprintf("num:%g", id)
	case nil:
		return ""
	default:
		return fmt.Sprintf("%T:%v", v, v)
	}
}

func matchesStudent(res *model.CategoryResult, keys repository.StudentKeys) bool {
	if !keys.ObjectID.IsZero() && res.StudentObjectID != nil && *res.StudentObjectID == keys.ObjectID {
		return true
	}
	got := legacyKey(res.StudentID)
	if got == "" {
		return false
	}
	for _, v := range keys.LegacyValues() {
		if legacyKey(v) == got {
			return true
		}
	}
	return false
}

func (r *CategoryResultRepository) ListByStudent(ctx context.Context, keys repository.StudentKeys) ([]model.CategoryResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.CategoryResult{}
	for _, res := range r.items {
		if matchesStudent(res, keys) {
			out = append(out, *clone(res))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].AssessmentDate.After(out[j].AssessmentDate) })
	return out, nil
}

func (r *CategoryResultRepository) ListMissingObjectID(ctx context.Context) ([]model.CategoryResult, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.CategoryResult{}
	for _, res := range r.items {
		if res.StudentObjectID == nil && res.StudentID != nil {
			out = append(out, *clone(res))
		}
	}
	return out, nil
}

func (r *CategoryResultRepository) SetStudentObjectID(ctx context.Context, id, studentID primitive.ObjectID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, res := range r.items {
		if res.ID == id {
			sid := studentID
			res.StudentObjectID = &sid
			return nil
		}
	}
	return repository.ErrNotFound
}

type PrescriptiveAnalysisRepository struct {
	mu    sync.RWMutex
	items map[primitive.ObjectID]*model.PrescriptiveAnalysis
}

func NewPrescriptiveAnalysisRepository() *PrescriptiveAnalysisRepository {
	return &PrescriptiveAnalysisRepository{items: map[primitive.ObjectID]*model.PrescriptiveAnalysis{}}
}

func (r *PrescriptiveAnalysisRepository) FindByStudentAndCategory(ctx context.Context, studentID primitive.ObjectID, category model.Category) (*model.PrescriptiveAnalysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, pa := range r.items {
		if pa.StudentID != studentID {
			continue
		}
		if c, err := model.NormalizeCategory(string(pa.CategoryID)); err == nil && c == category {
			return clone(pa), nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *PrescriptiveAnalysisRepository) ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]model.PrescriptiveAnalysis, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := []model.PrescriptiveAnalysis{}
	for _, pa := range r.items {
		if pa.StudentID == studentID {
			out = append(out, *clone(pa))
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CategoryID < out[j].CategoryID })
	return out, nil
}

func (r *PrescriptiveAnalysisRepository) Upsert(ctx context.Context, pa *model.PrescriptiveAnalysis) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, cur := range r.items {
		if cur.StudentID == pa.StudentID && cur.CategoryID == pa.CategoryID {
			pa.ID = id
			pa.CreatedAt = cur.CreatedAt
			pa.CreatedBy = cur.CreatedBy
			pa.UpdatedAt = now()
			r.items[id] = clone(pa)
			return nil
		}
	}
	pa.Touch(now())
	r.items[pa.ID] = clone(pa)
	return nil
}
