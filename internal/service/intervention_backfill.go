package service

import (
	"context"

	"literacy_backend/internal/model"
	"literacy_backend/pkg/logger"

	"go.uber.org/zap"
)

type BackfillSummary struct {
	TotalInterventions           int `json:"totalInterventions"`
	UpdatedCount                 int `json:"updatedCount"`
	PrescriptiveLinksAddedCount  int `json:"prescriptiveLinksAddedCount"`
	ChoiceDescriptionsAddedCount int `json:"choiceDescriptionsAddedCount"`
}

// UpdateExistingInterventions repairs legacy plans: it links missing
// prescriptive analyses and fills missing choice descriptions. Only the
// repaired fields are written, each guarded on still being missing, so
// concurrent status changes survive and a second run is a no-op.
func (s *InterventionService) UpdateExistingInterventions(ctx context.Context) (*BackfillSummary, error) {
	summary := &BackfillSummary{}
	err := s.Plans.ForEach(ctx, func(plan *model.InterventionPlan) error {
		summary.TotalInterventions++
		changed := false

		if plan.PrescriptiveAnalysisID == nil && s.linkPrescriptiveAnalysis(ctx, plan) {
			ok, err := s.Plans.LinkPrescriptiveAnalysis(ctx, plan.ID, *plan.PrescriptiveAnalysisID)
			if err != nil {
				return err
			}
			if ok {
				summary.PrescriptiveLinksAddedCount++
				changed = true
			}
		}

		for key, n := range missingDescriptions(plan.Questions) {
			ok, err := s.Plans.FillChoiceDescriptions(ctx, plan.ID, key.questionType, key.isCorrect,
				model.DefaultFeedback(key.questionType, key.isCorrect))
			if err != nil {
				return err
			}
			if ok {
				summary.ChoiceDescriptionsAddedCount += n
				changed = true
			}
		}

		if changed {
			summary.UpdatedCount++
		}
		return nil
	})
	if err != nil {
		return summary, err
	}
	logger.Log.Info("intervention backfill finished",
		zap.Int("total", summary.TotalInterventions),
		zap.Int("updated", summary.UpdatedCount),
		zap.Int("links", summary.PrescriptiveLinksAddedCount),
		zap.Int("descriptions", summary.ChoiceDescriptionsAddedCount),
	)
	return summary, nil
}

type feedbackKey struct {
	questionType model.QuestionType
	isCorrect    bool
}

// missingDescriptions counts choices without a description, grouped by the
// default feedback they would receive.
func missingDescriptions(questions []model.PlanQuestion) map[feedbackKey]int {
	out := map[feedbackKey]int{}
	for _, q := range questions {
		for _, c := range q.Choices {
			if c.Description == "" {
				out[feedbackKey{q.QuestionType, c.IsCorrect}]++
			}
		}
	}
	return out
}
