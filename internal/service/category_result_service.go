package service

import (
	"context"
	"fmt"
	"sort"
	"strconv"

	"literacy_backend/internal/model"
	"literacy_backend/internal/util"
	"literacy_backend/pkg/logger"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"
)

type CategoryResultService struct {
	Results  CategoryResultStore
	Identity *IdentityService
}

func NewCategoryResultService(results CategoryResultStore, identity *IdentityService) *CategoryResultService {
	return &CategoryResultService{Results: results, Identity: identity}
}

// FindLatest returns the newest result for the student that scored the category.
func (s *CategoryResultService) FindLatest(ctx context.Context, ref StudentRef, category model.Category) (*model.CategoryResult, error) {
	results, err := s.Results.ListByStudent(ctx, ref.Keys())
	if err != nil {
		return nil, err
	}
	sortNewestFirst(results)
	for i := range results {
		if results[i].FindCategory(category) != nil {
			return &results[i], nil
		}
	}
	return nil, fmt.Errorf("%w: no category result for %s", util.ErrNotFound, category)
}

func (s *CategoryResultService) ListByStudent(ctx context.Context, candidate string) ([]model.CategoryResult, error) {
	ref, err := s.Identity.ResolveStudentReference(ctx, candidate)
	if err != nil {
		return nil, err
	}
	results, err := s.Results.ListByStudent(ctx, ref.Keys())
	if err != nil {
		return nil, err
	}
	sortNewestFirst(results)
	return results, nil
}

// WeakCategory is a category the student scored below the threshold on.
type WeakCategory struct {
	Category         model.Category     `json:"category"`
	Score            float64            `json:"score"`
	TotalQuestions   int                `json:"totalQuestions"`
	CorrectAnswers   int                `json:"correctAnswers"`
	CategoryResultID primitive.ObjectID `json:"categoryResultId"`
}

// WeakCategories looks at each category's most recent score and keeps those
// under threshold, in the fixed category order.
func (s *CategoryResultService) WeakCategories(ctx context.Context, candidate string, threshold float64) ([]WeakCategory, error) {
	if threshold <= 0 {
		threshold = model.DefaultCategoryPassingThreshold
	}
	results, err := s.ListByStudent(ctx, candidate)
	if err != nil {
		return nil, err
	}
	weak := []WeakCategory{}
	for _, c := range model.Categories {
		for i := range results {
			score := results[i].FindCategory(c)
			if score == nil {
				continue
			}
			if score.Score < threshold {
				weak = append(weak, WeakCategory{
					Category:         c,
					Score:            score.Score,
					TotalQuestions:   score.TotalQuestions,
					CorrectAnswers:   score.CorrectAnswers,
					CategoryResultID: results[i].ID,
				})
			}
			break
		}
	}
	return weak, nil
}

type MigrationSummary struct {
	Scanned    int `json:"scanned"`
	Migrated   int `json:"migrated"`
	Unresolved int `json:"unresolved"`
}

// MigrateStudentObjectIDs stamps studentObjectId on results that only carry the
// legacy studentId. The legacy field is left in place.
func (s *CategoryResultService) MigrateStudentObjectIDs(ctx context.Context) (*MigrationSummary, error) {
	pending, err := s.Results.ListMissingObjectID(ctx)
	if err != nil {
		return nil, err
	}
	summary := &MigrationSummary{Scanned: len(pending)}
	for _, r := range pending {
		raw := legacyStudentID(r.StudentID)
		ref, err := s.Identity.ResolveStudentReference(ctx, raw)
		if err != nil {
			return summary, err
		}
		if !ref.Found {
			summary.Unresolved++
			logger.Log.Warn("category result student unresolved",
				zap.String("resultId", r.ID.Hex()),
				zap.String("studentId", raw),
			)
			continue
		}
		if err := s.Results.SetStudentObjectID(ctx, r.ID, ref.ID); err != nil {
			return summary, err
		}
		summary.Migrated++
	}
	logger.Log.Info("category results migrated",
		zap.Int("scanned", summary.Scanned),
		zap.Int("migrated", summary.Migrated),
		zap.Int("unresolved", summary.Unresolved),
	)
	return summary, nil
}

func legacyStudentID(v interface{}) string {
	switch id := v.(type) {
	case primitive.ObjectID:
		return id.Hex()
	case string:
		return id
	case int32:
		return strconv.FormatInt(int64(id), 10)
	case int64:
		return strconv.FormatInt(id, 10)
	case int:
		return strconv.Itoa(id)
	case float64:
		return strconv.FormatFloat(id, 'f', -1, 64)
	case nil:
		return ""
	default:
		return fmt.Sprint(id)
	}
}

func sortNewestFirst(results []model.CategoryResult) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].AssessmentDate.After(results[j].AssessmentDate)
	})
}
