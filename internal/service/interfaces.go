package service

import (
	"context"
	"time"

	"literacy_backend/internal/model"
	"literacy_backend/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Stores consumed by the services. The Mongo repositories in internal/repository
// satisfy them, as do the in-memory ones in internal/repository/memory.

type UserStore interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	FindByIDNumber(ctx context.Context, idNumber string) (*model.User, error)
	FindByName(ctx context.Context, firstName, lastName string) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
}

type TemplateStore interface {
	ListQuestions(ctx context.Context, category model.Category) ([]model.TemplateQuestion, error)
	FindQuestion(ctx context.Context, id primitive.ObjectID) (*model.TemplateQuestion, error)
	CreateQuestion(ctx context.Context, q *model.TemplateQuestion) error
	UpdateQuestion(ctx context.Context, q *model.TemplateQuestion) error
	DeleteQuestion(ctx context.Context, id primitive.ObjectID) error

	ListChoices(ctx context.Context, choiceTypes []string) ([]model.TemplateChoice, error)
	FindChoice(ctx context.Context, id primitive.ObjectID) (*model.TemplateChoice, error)
	CreateChoice(ctx context.Context, c *model.TemplateChoice) error
	UpdateChoice(ctx context.Context, c *model.TemplateChoice) error
	DeleteChoice(ctx context.Context, id primitive.ObjectID) error

	ListSentences(ctx context.Context, level model.ReadingLevel) ([]model.SentenceTemplate, error)
	FindSentence(ctx context.Context, id primitive.ObjectID) (*model.SentenceTemplate, error)
	CreateSentence(ctx context.Context, s *model.SentenceTemplate) error
	UpdateSentence(ctx context.Context, s *model.SentenceTemplate) error
	DeleteSentence(ctx context.Context, id primitive.ObjectID) error

	ListMainAssessment(ctx context.Context, category model.Category, level model.ReadingLevel) ([]model.MainAssessmentQuestion, error)
}

type InterventionStore interface {
	Create(ctx context.Context, p *model.InterventionPlan) error
	FindByID(ctx context.Context, id primitive.ObjectID) (*model.InterventionPlan, error)
	FindByStudent(ctx context.Context, studentID primitive.ObjectID) ([]model.InterventionPlan, error)
	FindLatestByStudentAndCategory(ctx context.Context, studentID primitive.ObjectID, category model.Category) (*model.InterventionPlan, error)
	UpdateDraft(ctx context.Context, p *model.InterventionPlan) (bool, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	TransitionStatus(ctx context.Context, id primitive.ObjectID, from []model.PlanStatus, to model.PlanStatus, pushedAt *time.Time) (bool, error)
	SetStudentNumberIfMissing(ctx context.Context, id primitive.ObjectID, studentNumber string) error
	LinkPrescriptiveAnalysis(ctx context.Context, id, analysisID primitive.ObjectID) (bool, error)
	FillChoiceDescriptions(ctx context.Context, id primitive.ObjectID, qt model.QuestionType, isCorrect bool, description string) (bool, error)
	ForEach(ctx context.Context, fn func(p *model.InterventionPlan) error) error
}

type ProgressStore interface {
	Create(ctx context.Context, p *model.InterventionProgress) error
	FindByPlan(ctx context.Context, planID primitive.ObjectID) (*model.InterventionProgress, error)
	DeleteByPlan(ctx context.Context, planID primitive.ObjectID) (int64, error)
	SyncWithPlan(ctx context.Context, planID, studentID primitive.ObjectID, total int) (*model.InterventionProgress, error)
	IncrementCounters(ctx context.Context, planID primitive.ObjectID, correct bool, at time.Time) (*model.InterventionProgress, error)
	SaveDerived(ctx context.Context, p *model.InterventionProgress) (bool, error)
}

type ResponseStore interface {
	Create(ctx context.Context, r *model.InterventionResponse) error
	ListByPlan(ctx context.Context, planID primitive.ObjectID) ([]model.InterventionResponse, error)
	DeleteByPlan(ctx context.Context, planID primitive.ObjectID) (int64, error)
}

type CategoryResultStore interface {
	ListByStudent(ctx context.Context, keys repository.StudentKeys) ([]model.CategoryResult, error)
	ListMissingObjectID(ctx context.Context) ([]model.CategoryResult, error)
	SetStudentObjectID(ctx context.Context, id, studentID primitive.ObjectID) error
}

type PrescriptiveAnalysisStore interface {
	FindByStudentAndCategory(ctx context.Context, studentID primitive.ObjectID, category model.Category) (*model.PrescriptiveAnalysis, error)
	ListByStudent(ctx context.Context, studentID primitive.ObjectID) ([]model.PrescriptiveAnalysis, error)
	Upsert(ctx context.Context, pa *model.PrescriptiveAnalysis) error
}
