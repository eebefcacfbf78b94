package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"literacy_backend/internal/model"
	"literacy_backend/internal/repository"
	"literacy_backend/internal/util"
	"literacy_backend/pkg/logger"
	"literacy_backend/pkg/monitoring"
	"literacy_backend/pkg/tracing"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

type InterventionService struct {
	Plans     InterventionStore
	Progress  ProgressStore
	Responses ResponseStore
	Analyses  PrescriptiveAnalysisStore
	Results   *CategoryResultService
	Identity  *IdentityService
	Users     UserStore
	Tx        repository.TxRunner

	DefaultPassThreshold int
	Now                  func() time.Time
}

func NewInterventionService(
	plans InterventionStore,
	progress ProgressStore,
	responses ResponseStore,
	analyses PrescriptiveAnalysisStore,
	results *CategoryResultService,
	identity *IdentityService,
	tx repository.TxRunner,
	defaultPassThreshold int,
) *InterventionService {
	if defaultPassThreshold <= 0 {
		defaultPassThreshold = model.DefaultPassThreshold
	}
	return &InterventionService{
		Plans:                plans,
		Progress:             progress,
		Responses:            responses,
		Analyses:             analyses,
		Results:              results,
		Identity:             identity,
		Users:                identity.Users,
		Tx:                   tx,
		DefaultPassThreshold: defaultPassThreshold,
		Now:                  time.Now,
	}
}

type CreateInterventionRequest struct {
	StudentID              string            `json:"studentId" binding:"required"`
	Name                   string            `json:"name"`
	Description            string            `json:"description"`
	Category               string            `json:"category" binding:"required"`
	ReadingLevel           string            `json:"readingLevel"`
	PassThreshold          *int              `json:"passThreshold"`
	PrescriptiveAnalysisID string            `json:"prescriptiveAnalysisId"`
	Questions              []QuestionRequest `json:"questions"`
}

// UpdateInterventionRequest is a partial update; nil fields are left alone.
type UpdateInterventionRequest struct {
	StudentID     *string            `json:"studentId"`
	Name          *string            `json:"name"`
	Description   *string            `json:"description"`
	Category      *string            `json:"category"`
	ReadingLevel  *string            `json:"readingLevel"`
	PassThreshold *int               `json:"passThreshold"`
	Questions     *[]QuestionRequest `json:"questions"`
}

// InterventionDetail is a plan together with its progress row.
type InterventionDetail struct {
	*model.InterventionPlan
	Progress *model.InterventionProgress `json:"progress"`
}

type ExistingCheck struct {
	Exists       bool                    `json:"exists"`
	Intervention *model.InterventionPlan `json:"intervention,omitempty"`
}

func planNotFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return util.ErrPlanNotFound
	}
	return err
}

func (s *InterventionService) passThreshold(v *int) (int, error) {
	if v == nil {
		return s.DefaultPassThreshold, nil
	}
	if *v < 1 || *v > 100 {
		return 0, util.NewValidationError("", util.FieldError{Field: "passThreshold", Message: "must be between 1 and 100"})
	}
	return *v, nil
}

func (s *InterventionService) loadPlan(ctx context.Context, id string) (*model.InterventionPlan, error) {
	oid, err := parseObjectID("interventionId", id)
	if err != nil {
		return nil, err
	}
	plan, err := s.Plans.FindByID(ctx, oid)
	if err != nil {
		return nil, planNotFound(err)
	}
	return plan, nil
}

// CreateIntervention stores a new draft plan and its progress row together.
func (s *InterventionService) CreateIntervention(ctx context.Context, req CreateInterventionRequest, createdBy *primitive.ObjectID) (detail *InterventionDetail, err error) {
	ctx, span := tracing.StartSpan(ctx, "InterventionService.CreateIntervention")
	defer func() { tracing.EndSpan(span, err) }()

	if err := validateStruct(req); err != nil {
		return nil, err
	}
	category, err := model.NormalizeCategory(req.Category)
	if err != nil {
		return nil, util.NewValidationError("", util.FieldError{Field: "category", Message: fmt.Sprintf("unknown category %q", req.Category)})
	}
	var level model.ReadingLevel
	if req.ReadingLevel != "" {
		if level, err = model.NormalizeReadingLevel(req.ReadingLevel); err != nil {
			return nil, util.NewValidationError("", util.FieldError{Field: "readingLevel", Message: fmt.Sprintf("unknown reading level %q", req.ReadingLevel)})
		}
	}
	threshold, err := s.passThreshold(req.PassThreshold)
	if err != nil {
		return nil, err
	}
	analysisID, err := parseOptionalObjectID("prescriptiveAnalysisId", req.PrescriptiveAnalysisID)
	if err != nil {
		return nil, err
	}
	questions, err := buildQuestions(category, req.Questions)
	if err != nil {
		return nil, err
	}
	ref, err := s.Identity.RequireStudent(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(attribute.String("student.id", ref.ID.Hex()), attribute.String("category", string(category)))

	plan := &model.InterventionPlan{
		StudentID:              ref.ID,
		StudentNumber:          ref.NumberID,
		Name:                   strings.TrimSpace(req.Name),
		Description:            strings.TrimSpace(req.Description),
		Category:               category,
		ReadingLevel:           level,
		PassThreshold:          threshold,
		PrescriptiveAnalysisID: analysisID,
		Status:                 model.PlanDraft,
		Questions:              questions,
		CreatedBy:              createdBy,
	}
	if plan.Name == "" {
		plan.Name = fmt.Sprintf("%s Intervention", category)
	}
	s.linkCategoryResult(ctx, ref, plan)
	if plan.PrescriptiveAnalysisID == nil {
		s.linkPrescriptiveAnalysis(ctx, plan)
	}

	progress := &model.InterventionProgress{
		StudentID:       ref.ID,
		TotalActivities: len(questions),
	}
	progress.Recompute(threshold)

	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.Plans.Create(ctx, plan); err != nil {
			return err
		}
		progress.InterventionPlanID = plan.ID
		if err := s.Progress.Create(ctx, progress); err != nil {
			if !s.Tx.Atomic() {
				// no transaction to roll back; undo the plan by hand
				if derr := s.Plans.Delete(ctx, plan.ID); derr != nil {
					logger.Log.Error("failed to remove plan after progress creation failed",
						zap.String("planId", plan.ID.Hex()), zap.Error(derr))
				}
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	monitoring.PlansCreated.WithLabelValues(category.MachineName()).Inc()
	logger.Log.Info("intervention created",
		zap.String("planId", plan.ID.Hex()),
		zap.String("studentId", plan.StudentID.Hex()),
		zap.String("category", string(category)),
		zap.Int("questions", len(questions)),
	)
	return &InterventionDetail{InterventionPlan: plan, Progress: progress}, nil
}

// linkCategoryResult points the plan at the newest category result for the
// same student and category. Failures only get logged.
func (s *InterventionService) linkCategoryResult(ctx context.Context, ref StudentRef, plan *model.InterventionPlan) {
	if s.Results == nil {
		return
	}
	result, err := s.Results.FindLatest(ctx, ref, plan.Category)
	if err != nil {
		if !errors.Is(err, util.ErrNotFound) {
			logger.Log.Warn("category result lookup failed", zap.String("studentId", ref.ID.Hex()), zap.Error(err))
		}
		return
	}
	id := result.ID
	plan.CategoryResultID = &id
}

func (s *InterventionService) linkPrescriptiveAnalysis(ctx context.Context, plan *model.InterventionPlan) bool {
	if s.Analyses == nil {
		return false
	}
	pa, err := s.Analyses.FindByStudentAndCategory(ctx, plan.StudentID, plan.Category)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Log.Warn("prescriptive analysis lookup failed", zap.String("planId", plan.ID.Hex()), zap.Error(err))
		}
		return false
	}
	id := pa.ID
	plan.PrescriptiveAnalysisID = &id
	return true
}

// GetInterventionsByStudent lists a student's plans. An unknown student yields
// an empty list.
func (s *InterventionService) GetInterventionsByStudent(ctx context.Context, candidate string) ([]model.InterventionPlan, error) {
	ref, err := s.Identity.ResolveStudentReference(ctx, candidate)
	if err != nil {
		return nil, err
	}
	if ref.ID.IsZero() {
		return []model.InterventionPlan{}, nil
	}
	plans, err := s.Plans.FindByStudent(ctx, ref.ID)
	if err != nil {
		return nil, err
	}
	if plans == nil {
		plans = []model.InterventionPlan{}
	}
	return plans, nil
}

func (s *InterventionService) GetInterventionByID(ctx context.Context, id string) (*InterventionDetail, error) {
	plan, err := s.loadPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	progress, err := s.Progress.FindByPlan(ctx, plan.ID)
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}
	return &InterventionDetail{InterventionPlan: plan, Progress: progress}, nil
}

// CheckExistingIntervention reports whether the student already has a plan for
// the category. Object ids and idNumbers of the same student give the same answer.
func (s *InterventionService) CheckExistingIntervention(ctx context.Context, candidate, category string) (*ExistingCheck, error) {
	if strings.TrimSpace(candidate) == "" {
		return nil, util.NewValidationError("", util.FieldError{Field: "studentId", Message: "is required"})
	}
	c, err := model.NormalizeCategory(category)
	if err != nil {
		return nil, util.NewValidationError("", util.FieldError{Field: "category", Message: fmt.Sprintf("unknown category %q", category)})
	}
	ref, err := s.Identity.ResolveStudentReference(ctx, candidate)
	if err != nil {
		return nil, err
	}
	if ref.ID.IsZero() {
		return &ExistingCheck{}, nil
	}
	plan, err := s.Plans.FindLatestByStudentAndCategory(ctx, ref.ID, c)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &ExistingCheck{}, nil
		}
		return nil, err
	}
	return &ExistingCheck{Exists: true, Intervention: plan}, nil
}

// UpdateIntervention applies a partial update to a draft plan. Active and
// completed plans are locked.
func (s *InterventionService) UpdateIntervention(ctx context.Context, id string, req UpdateInterventionRequest) (detail *InterventionDetail, err error) {
	ctx, span := tracing.StartSpan(ctx, "InterventionService.UpdateIntervention", attribute.String("plan.id", id))
	defer func() { tracing.EndSpan(span, err) }()

	plan, err := s.loadPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	if !plan.Editable() {
		return nil, util.ErrPlanLocked
	}

	if req.StudentID != nil {
		ref, err := s.Identity.RequireStudent(ctx, *req.StudentID)
		if err != nil {
			return nil, err
		}
		plan.StudentID = ref.ID
		plan.StudentNumber = ref.NumberID
	}
	if req.Name != nil {
		plan.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		plan.Description = strings.TrimSpace(*req.Description)
	}
	if req.Category != nil {
		c, err := model.NormalizeCategory(*req.Category)
		if err != nil {
			return nil, util.NewValidationError("", util.FieldError{Field: "category", Message: fmt.Sprintf("unknown category %q", *req.Category)})
		}
		plan.Category = c
	}
	if req.ReadingLevel != nil {
		plan.ReadingLevel = ""
		if *req.ReadingLevel != "" {
			level, err := model.NormalizeReadingLevel(*req.ReadingLevel)
			if err != nil {
				return nil, util.NewValidationError("", util.FieldError{Field: "readingLevel", Message: fmt.Sprintf("unknown reading level %q", *req.ReadingLevel)})
			}
			plan.ReadingLevel = level
		}
	}
	if req.PassThreshold != nil {
		t, err := s.passThreshold(req.PassThreshold)
		if err != nil {
			return nil, err
		}
		plan.PassThreshold = t
	}
	if req.Questions != nil {
		questions, err := buildQuestions(plan.Category, *req.Questions)
		if err != nil {
			return nil, err
		}
		plan.Questions = questions
	} else {
		model.FillMissingDescriptions(plan.Questions)
		if err := validatePlanQuestions(plan.Category, plan.Questions); err != nil {
			return nil, err
		}
	}
	if plan.Status == "" {
		plan.Status = model.PlanDraft
	}

	var progress *model.InterventionProgress
	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		ok, err := s.Plans.UpdateDraft(ctx, plan)
		if err != nil {
			return err
		}
		if !ok {
			// activated or removed since it was loaded
			if _, ferr := s.Plans.FindByID(ctx, plan.ID); ferr != nil {
				return planNotFound(ferr)
			}
			return util.ErrPlanLocked
		}
		progress, err = s.syncProgress(ctx, plan)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &InterventionDetail{InterventionPlan: plan, Progress: progress}, nil
}

// syncProgress keeps totalActivities equal to the plan's question count and
// rederives the percentages. A missing progress row is recreated.
func (s *InterventionService) syncProgress(ctx context.Context, plan *model.InterventionPlan) (*model.InterventionProgress, error) {
	progress, err := s.Progress.SyncWithPlan(ctx, plan.ID, plan.StudentID, len(plan.Questions))
	if errors.Is(err, repository.ErrNotFound) {
		progress = &model.InterventionProgress{
			StudentID:          plan.StudentID,
			InterventionPlanID: plan.ID,
			TotalActivities:    len(plan.Questions),
		}
		progress.Recompute(s.thresholdOf(plan))
		return progress, s.Progress.Create(ctx, progress)
	}
	if err != nil {
		return nil, err
	}
	progress.Recompute(s.thresholdOf(plan))
	if _, err := s.Progress.SaveDerived(ctx, progress); err != nil {
		return nil, err
	}
	return progress, nil
}

func (s *InterventionService) thresholdOf(plan *model.InterventionPlan) int {
	if plan.PassThreshold > 0 {
		return plan.PassThreshold
	}
	return s.DefaultPassThreshold
}

// DeleteIntervention removes the plan, then its progress and responses.
func (s *InterventionService) DeleteIntervention(ctx context.Context, id string) error {
	oid, err := parseObjectID("interventionId", id)
	if err != nil {
		return err
	}
	var progressRemoved, responsesRemoved int64
	err = s.Tx.WithTransaction(ctx, func(ctx context.Context) error {
		if err := s.Plans.Delete(ctx, oid); err != nil {
			return planNotFound(err)
		}
		var err error
		if progressRemoved, err = s.Progress.DeleteByPlan(ctx, oid); err != nil {
			return err
		}
		responsesRemoved, err = s.Responses.DeleteByPlan(ctx, oid)
		return err
	})
	if err != nil {
		return err
	}
	logger.Log.Info("intervention deleted",
		zap.String("planId", id),
		zap.Int64("progressRemoved", progressRemoved),
		zap.Int64("responsesRemoved", responsesRemoved),
	)
	return nil
}

// ActivateIntervention moves a draft to active. Activating an active plan is a
// no-op; a completed plan cannot be reactivated.
func (s *InterventionService) ActivateIntervention(ctx context.Context, id string) (*model.InterventionPlan, error) {
	oid, err := parseObjectID("interventionId", id)
	if err != nil {
		return nil, err
	}
	ok, err := s.Plans.TransitionStatus(ctx, oid, []model.PlanStatus{model.PlanDraft}, model.PlanActive, nil)
	if err != nil {
		return nil, err
	}
	plan, err := s.Plans.FindByID(ctx, oid)
	if err != nil {
		return nil, planNotFound(err)
	}
	if ok {
		monitoring.PlanTransitions.WithLabelValues(string(model.PlanActive)).Inc()
		return plan, nil
	}
	if plan.Status == model.PlanActive {
		return plan, nil
	}
	return nil, fmt.Errorf("%w: cannot activate a %s intervention", util.ErrInvalidTransition, plan.Status)
}

// PushIntervention revalidates the plan, activates it and stamps pushedAt so the
// mobile app picks it up.
func (s *InterventionService) PushIntervention(ctx context.Context, id string) (plan *model.InterventionPlan, err error) {
	ctx, span := tracing.StartSpan(ctx, "InterventionService.PushIntervention", attribute.String("plan.id", id))
	defer func() { tracing.EndSpan(span, err) }()

	plan, err = s.loadPlan(ctx, id)
	if err != nil {
		return nil, err
	}
	if plan.Status == model.PlanCompleted {
		return nil, fmt.Errorf("%w: cannot push a completed intervention", util.ErrInvalidTransition)
	}
	if err := validatePlanQuestions(plan.Category, plan.Questions); err != nil {
		return nil, err
	}

	now := s.Now()
	ok, err := s.Plans.TransitionStatus(ctx, plan.ID, []model.PlanStatus{model.PlanDraft, model.PlanActive}, model.PlanActive, &now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: intervention changed while pushing", util.ErrInvalidTransition)
	}
	if plan.Status != model.PlanActive {
		monitoring.PlanTransitions.WithLabelValues(string(model.PlanActive)).Inc()
	}
	plan.Status = model.PlanActive
	plan.PushedAt = &now
	logger.Log.Info("intervention pushed", zap.String("planId", plan.ID.Hex()), zap.String("studentId", plan.StudentID.Hex()))
	return plan, nil
}
