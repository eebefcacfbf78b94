package service

import (
	"context"
	"errors"
	"fmt"

	"literacy_backend/internal/model"
	"literacy_backend/internal/repository"
	"literacy_backend/internal/util"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type PrescriptiveAnalysisService struct {
	Analyses PrescriptiveAnalysisStore
	Identity *IdentityService
}

func NewPrescriptiveAnalysisService(analyses PrescriptiveAnalysisStore, identity *IdentityService) *PrescriptiveAnalysisService {
	return &PrescriptiveAnalysisService{Analyses: analyses, Identity: identity}
}

type UpsertAnalysisRequest struct {
	StudentID       string `json:"studentId" binding:"required"`
	Category        string `json:"category" binding:"required"`
	ReadingLevel    string `json:"readingLevel"`
	Strengths       string `json:"strengths"`
	Weaknesses      string `json:"weaknesses"`
	Recommendations string `json:"recommendations"`
}

func (s *PrescriptiveAnalysisService) FindByStudentAndCategory(ctx context.Context, candidate, category string) (*model.PrescriptiveAnalysis, error) {
	c, err := model.NormalizeCategory(category)
	if err != nil {
		return nil, util.Validationf("invalid category %q", category)
	}
	ref, err := s.Identity.ResolveStudentReference(ctx, candidate)
	if err != nil {
		return nil, err
	}
	if ref.ID.IsZero() {
		return nil, util.ErrStudentNotFound
	}
	pa, err := s.Analyses.FindByStudentAndCategory(ctx, ref.ID, c)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Errorf("%w: no prescriptive analysis for %s", util.ErrNotFound, c)
	}
	return pa, err
}

func (s *PrescriptiveAnalysisService) ListByStudent(ctx context.Context, candidate string) ([]model.PrescriptiveAnalysis, error) {
	ref, err := s.Identity.ResolveStudentReference(ctx, candidate)
	if err != nil {
		return nil, err
	}
	if ref.ID.IsZero() {
		return []model.PrescriptiveAnalysis{}, nil
	}
	return s.Analyses.ListByStudent(ctx, ref.ID)
}

func (s *PrescriptiveAnalysisService) Upsert(ctx context.Context, req UpsertAnalysisRequest, createdBy *primitive.ObjectID) (*model.PrescriptiveAnalysis, error) {
	if err := validateStruct(req); err != nil {
		return nil, err
	}
	c, err := model.NormalizeCategory(req.Category)
	if err != nil {
		return nil, util.Validationf("invalid category %q", req.Category)
	}
	var level model.ReadingLevel
	if req.ReadingLevel != "" {
		if level, err = model.NormalizeReadingLevel(req.ReadingLevel); err != nil {
			return nil, util.Validationf("invalid readingLevel %q", req.ReadingLevel)
		}
	}
	ref, err := s.Identity.RequireStudent(ctx, req.StudentID)
	if err != nil {
		return nil, err
	}
	pa := &model.PrescriptiveAnalysis{
		StudentID:       ref.ID,
		CategoryID:      c,
		ReadingLevel:    level,
		Strengths:       req.Strengths,
		Weaknesses:      req.Weaknesses,
		Recommendations: req.Recommendations,
		CreatedBy:       createdBy,
	}
	if err := s.Analyses.Upsert(ctx, pa); err != nil {
		return nil, err
	}
	return pa, nil
}
