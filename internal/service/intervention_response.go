package service

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"literacy_backend/internal/model"
	"literacy_backend/internal/repository"
	"literacy_backend/internal/util"
	"literacy_backend/pkg/logger"
	"literacy_backend/pkg/monitoring"
	"literacy_backend/pkg/tracing"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// derived fields are retried this many times when concurrent responses keep
// moving the counters underneath us
const maxDerivedWrites = 3

type RecordResponseRequest struct {
	InterventionPlanID string `json:"interventionPlanId" binding:"required"`
	StudentID          string `json:"studentId"`
	QuestionID         string `json:"questionId" binding:"required"`
	ChoiceID           string `json:"choiceId"`
	OptionText         string `json:"optionText"`
	TimeSpentSeconds   int    `json:"timeSpentSeconds" binding:"min=0"`
}

type RecordResponseResult struct {
	Response   *model.InterventionResponse `json:"response"`
	Progress   *model.InterventionProgress `json:"progress"`
	PlanStatus model.PlanStatus            `json:"planStatus"`
}

// RecordResponse stores a student's answer and advances the plan's progress.
// Correctness comes from the stored choice, never from the client. When
// progress reaches 100% the plan is completed.
func (s *InterventionService) RecordResponse(ctx context.Context, req RecordResponseRequest) (result *RecordResponseResult, err error) {
	ctx, span := tracing.StartSpan(ctx, "InterventionService.RecordResponse",
		attribute.String("plan.id", req.InterventionPlanID),
		attribute.String("question.id", req.QuestionID),
	)
	defer func() { tracing.EndSpan(span, err) }()

	if err := validateStruct(req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.ChoiceID) == "" && strings.TrimSpace(req.OptionText) == "" {
		return nil, util.NewValidationError("", util.FieldError{Field: "choiceId", Message: "choiceId or optionText is required"})
	}

	plan, err := s.loadPlan(ctx, req.InterventionPlanID)
	if err != nil {
		return nil, err
	}
	if plan.Status == model.PlanCompleted {
		return nil, util.ErrPlanCompleted
	}
	if req.StudentID != "" {
		ref, err := s.Identity.RequireStudent(ctx, req.StudentID)
		if err != nil {
			return nil, err
		}
		if ref.ID != plan.StudentID {
			return nil, util.ErrPermissionDenied
		}
	}

	question := plan.FindQuestion(req.QuestionID)
	if question == nil {
		return nil, util.ErrQuestionNotFound
	}
	choice := question.FindChoice(strings.TrimSpace(req.ChoiceID), strings.TrimSpace(req.OptionText))
	if choice == nil {
		return nil, util.ErrChoiceNotFound
	}

	studentNumber := s.studentNumberFor(ctx, plan)
	now := s.Now()
	description := choice.Description
	if description == "" {
		description = model.DefaultFeedback(question.QuestionType, choice.IsCorrect)
	}
	resp := &model.InterventionResponse{
		InterventionPlanID: plan.ID,
		StudentID:          plan.StudentID,
		StudentNumber:      studentNumber,
		QuestionID:         question.QuestionID,
		SelectedChoiceID:   choice.ChoiceID,
		SelectedOptionText: choice.OptionText,
		IsCorrect:          choice.IsCorrect,
		Description:        description,
		TimeSpentSeconds:   req.TimeSpentSeconds,
		AnsweredAt:         now,
	}
	if err := s.Responses.Create(ctx, resp); err != nil {
		return nil, err
	}

	progress, err := s.advanceProgress(ctx, plan, choice.IsCorrect)
	if err != nil {
		return nil, err
	}
	monitoring.ResponsesRecorded.WithLabelValues(strconv.FormatBool(choice.IsCorrect)).Inc()

	status := plan.Status
	if progress.PercentComplete >= 100 {
		ok, err := s.Plans.TransitionStatus(ctx, plan.ID, []model.PlanStatus{model.PlanDraft, model.PlanActive}, model.PlanCompleted, nil)
		if err != nil {
			return nil, err
		}
		if ok {
			monitoring.PlanTransitions.WithLabelValues(string(model.PlanCompleted)).Inc()
			logger.Log.Info("intervention completed",
				zap.String("planId", plan.ID.Hex()),
				zap.Int("percentCorrect", progress.PercentCorrect),
				zap.Bool("passedThreshold", progress.PassedThreshold),
			)
		}
		status = model.PlanCompleted
	}
	return &RecordResponseResult{Response: resp, Progress: progress, PlanStatus: status}, nil
}

// studentNumberFor returns the plan's cached idNumber, filling it from the user
// record when the plan predates the field.
func (s *InterventionService) studentNumberFor(ctx context.Context, plan *model.InterventionPlan) string {
	if plan.StudentNumber != "" {
		return plan.StudentNumber
	}
	u, err := s.Users.FindByID(ctx, plan.StudentID)
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			logger.Log.Warn("student lookup failed", zap.String("studentId", plan.StudentID.Hex()), zap.Error(err))
		}
		return ""
	}
	if u.IDNumber == "" {
		return ""
	}
	if err := s.Plans.SetStudentNumberIfMissing(ctx, plan.ID, u.IDNumber); err != nil {
		logger.Log.Warn("failed to cache student number on plan", zap.String("planId", plan.ID.Hex()), zap.Error(err))
	}
	plan.StudentNumber = u.IDNumber
	return u.IDNumber
}

// advanceProgress increments the counters atomically and then writes the
// derived percentages, retrying if another response moved the counters first.
func (s *InterventionService) advanceProgress(ctx context.Context, plan *model.InterventionPlan, correct bool) (*model.InterventionProgress, error) {
	now := s.Now()
	progress, err := s.Progress.IncrementCounters(ctx, plan.ID, correct, now)
	if errors.Is(err, repository.ErrNotFound) {
		// legacy plan without a progress row
		cerr := s.Progress.Create(ctx, &model.InterventionProgress{
			StudentID:          plan.StudentID,
			InterventionPlanID: plan.ID,
			TotalActivities:    len(plan.Questions),
		})
		if cerr != nil {
			logger.Log.Warn("progress create raced", zap.String("planId", plan.ID.Hex()), zap.Error(cerr))
		}
		progress, err = s.Progress.IncrementCounters(ctx, plan.ID, correct, now)
	}
	if err != nil {
		return nil, err
	}

	threshold := s.thresholdOf(plan)
	for attempt := 0; ; attempt++ {
		progress.Recompute(threshold)
		saved, err := s.Progress.SaveDerived(ctx, progress)
		if err != nil {
			return nil, err
		}
		if saved || attempt+1 >= maxDerivedWrites {
			return progress, nil
		}
		if progress, err = s.Progress.FindByPlan(ctx, plan.ID); err != nil {
			return nil, err
		}
	}
}
