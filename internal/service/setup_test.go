package service

import (
	"context"
	"testing"
	"time"

	"literacy_backend/internal/model"
	"literacy_backend/internal/repository/memory"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type fixture struct {
	users     *memory.UserRepository
	templates *memory.TemplateRepository
	plans     *memory.InterventionRepository
	progress  *memory.ProgressRepository
	responses *memory.ResponseRepository
	results   *memory.CategoryResultRepository
	analyses  *memory.PrescriptiveAnalysisRepository

	identity      *IdentityService
	resultsSvc    *CategoryResultService
	analysesSvc   *PrescriptiveAnalysisService
	interventions *InterventionService
	templatesSvc  *TemplateService

	now time.Time
}

func setup(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		users:     memory.NewUserRepository(),
		templates: memory.NewTemplateRepository(),
		plans:     memory.NewInterventionRepository(),
		progress:  memory.NewProgressRepository(),
		responses: memory.NewResponseRepository(),
		results:   memory.NewCategoryResultRepository(),
		analyses:  memory.NewPrescriptiveAnalysisRepository(),
		now:       time.Date(2024, 6, 3, 8, 30, 0, 0, time.UTC),
	}
	f.identity = NewIdentityService(f.users, nil)
	f.resultsSvc = NewCategoryResultService(f.results, f.identity)
	f.analysesSvc = NewPrescriptiveAnalysisService(f.analyses, f.identity)
	f.templatesSvc = NewTemplateService(f.templates)
	f.interventions = NewInterventionService(
		f.plans, f.progress, f.responses, f.analyses,
		f.resultsSvc, f.identity, &memory.TxRunner{}, 75,
	)
	f.interventions.Now = func() time.Time { return f.now }
	return f
}

func createStudent(t *testing.T, f *fixture, idNumber, first, last string) *model.User {
	t.Helper()
	u := &model.User{IDNumber: idNumber, FirstName: first, LastName: last, Role: model.Student}
	if err := f.users.Create(context.Background(), u); err != nil {
		t.Fatalf("createStudent() failed: %v", err)
	}
	return u
}

// letterQuestion is a two-choice patinig question with "A" correct.
func letterQuestion(text string) QuestionRequest {
	return QuestionRequest{
		QuestionType: "patinig",
		QuestionText: text,
		Choices: []ChoiceRequest{
			{OptionText: "A", IsCorrect: true},
			{OptionText: "E"},
		},
	}
}

func createPlan(t *testing.T, f *fixture, student *model.User, questions ...QuestionRequest) *InterventionDetail {
	t.Helper()
	if len(questions) == 0 {
		questions = []QuestionRequest{letterQuestion("Anong titik ito?")}
	}
	detail, err := f.interventions.CreateIntervention(context.Background(), CreateInterventionRequest{
		StudentID:    student.ID.Hex(),
		Category:     "alphabet_knowledge",
		ReadingLevel: "Low Emerging",
		Questions:    questions,
	}, nil)
	if err != nil {
		t.Fatalf("createPlan() failed: %v", err)
	}
	return detail
}

func oidPtr(id primitive.ObjectID) *primitive.ObjectID {
	return &id
}
