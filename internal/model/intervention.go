package model

import (
	"math"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultPassThreshold = 75

type PlanStatus string

const (
	PlanDraft     PlanStatus = "draft"
	PlanActive    PlanStatus = "active"
	PlanCompleted PlanStatus = "completed"
)

type QuestionSource string

const (
	SourceMainAssessment   QuestionSource = "main_assessment"
	SourceTemplateQuestion QuestionSource = "template_question"
	SourceCustom           QuestionSource = "custom"
	SourceSentenceTemplate QuestionSource = "sentence_template"
)

func (s QuestionSource) Valid() bool {
	switch s {
	case SourceMainAssessment, SourceTemplateQuestion, SourceCustom, SourceSentenceTemplate:
		return true
	}
	return false
}

// PlanChoice is the denormalized snapshot of an answer option inside a plan.
type PlanChoice struct {
	ChoiceID    string `bson:"choiceId,omitempty" json:"choiceId,omitempty"`
	OptionText  string `bson:"optionText" json:"optionText"`
	IsCorrect   bool   `bson:"isCorrect" json:"isCorrect"`
	Description string `bson:"description" json:"description"`
	SoundText   string `bson:"soundText,omitempty" json:"soundText,omitempty"`
}

// PlanQuestion embeds everything the mobile client needs to render one activity.
type PlanQuestion struct {
	QuestionID       string         `bson:"questionId" json:"questionId"`
	Source           QuestionSource `bson:"source" json:"source"`
	SourceQuestionID string         `bson:"sourceQuestionId,omitempty" json:"sourceQuestionId,omitempty"`
	QuestionType     QuestionType   `bson:"questionType" json:"questionType"`
	QuestionText     string         `bson:"questionText" json:"questionText"`
	QuestionImage    string         `bson:"questionImage,omitempty" json:"questionImage,omitempty"`
	QuestionValue    string         `bson:"questionValue,omitempty" json:"questionValue,omitempty"`
	ChoiceIDs        []string       `bson:"choiceIds" json:"choiceIds"`
	CorrectChoiceID  string         `bson:"correctChoiceId,omitempty" json:"correctChoiceId,omitempty"`
	Choices          []PlanChoice   `bson:"choices" json:"choices"`
	SentenceText     []SentencePage `bson:"sentenceText,omitempty" json:"sentenceText,omitempty"`
}

// CorrectChoice returns the choice flagged correct, if any.
func (q *PlanQuestion) CorrectChoice() *PlanChoice {
	for i := range q.Choices {
		if q.Choices[i].IsCorrect {
			return &q.Choices[i]
		}
	}
	return nil
}

// FindChoice matches by choiceId first and then by option text.
func (q *PlanQuestion) FindChoice(choiceID, optionText string) *PlanChoice {
	if choiceID != "" {
		for i := range q.Choices {
			if q.Choices[i].ChoiceID == choiceID {
				return &q.Choices[i]
			}
		}
	}
	if optionText != "" {
		for i := range q.Choices {
			if q.Choices[i].OptionText == optionText {
				return &q.Choices[i]
			}
		}
	}
	return nil
}

// InterventionPlan is stored in intervention_assessment.
// swagger:model
type InterventionPlan struct {
	BaseModel              `bson:",inline"`
	StudentID              primitive.ObjectID  `bson:"studentId" json:"studentId"`
	StudentNumber          string              `bson:"studentNumber,omitempty" json:"studentNumber,omitempty"`
	Name                   string              `bson:"name,omitempty" json:"name,omitempty"`
	Description            string              `bson:"description,omitempty" json:"description,omitempty"`
	Category               Category            `bson:"category" json:"category"`
	ReadingLevel           ReadingLevel        `bson:"readingLevel,omitempty" json:"readingLevel,omitempty"`
	PassThreshold          int                 `bson:"passThreshold" json:"passThreshold"`
	PrescriptiveAnalysisID *primitive.ObjectID `bson:"prescriptiveAnalysisId" json:"prescriptiveAnalysisId"`
	CategoryResultID       *primitive.ObjectID `bson:"categoryResultId" json:"categoryResultId"`
	Status                 PlanStatus          `bson:"status" json:"status"`
	Questions              []PlanQuestion      `bson:"questions" json:"questions"`
	PushedAt               *time.Time          `bson:"pushedAt,omitempty" json:"pushedAt,omitempty"`
	CreatedBy              *primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
}

func (p *InterventionPlan) FindQuestion(questionID string) *PlanQuestion {
	for i := range p.Questions {
		if p.Questions[i].QuestionID == questionID {
			return &p.Questions[i]
		}
	}
	return nil
}

// Editable reports whether teachers may still change the plan.
func (p *InterventionPlan) Editable() bool {
	return p.Status == "" || p.Status == PlanDraft
}

// InterventionProgress is stored in intervention_progress, one per plan.
// swagger:model
type InterventionProgress struct {
	BaseModel           `bson:",inline"`
	StudentID           primitive.ObjectID `bson:"studentId" json:"studentId"`
	InterventionPlanID  primitive.ObjectID `bson:"interventionPlanId" json:"interventionPlanId"`
	CompletedActivities int                `bson:"completedActivities" json:"completedActivities"`
	TotalActivities     int                `bson:"totalActivities" json:"totalActivities"`
	CorrectAnswers      int                `bson:"correctAnswers" json:"correctAnswers"`
	IncorrectAnswers    int                `bson:"incorrectAnswers" json:"incorrectAnswers"`
	PercentComplete     int                `bson:"percentComplete" json:"percentComplete"`
	PercentCorrect      int                `bson:"percentCorrect" json:"percentCorrect"`
	PassedThreshold     bool               `bson:"passedThreshold" json:"passedThreshold"`
	LastActivity        *time.Time         `bson:"lastActivity,omitempty" json:"lastActivity,omitempty"`
}

// Recompute derives the percentages and the pass flag from the counters.
func (p *InterventionProgress) Recompute(passThreshold int) {
	p.PercentComplete = 0
	if p.TotalActivities > 0 {
		p.PercentComplete = roundPercent(p.CompletedActivities, p.TotalActivities)
		if p.PercentComplete > 100 {
			p.PercentComplete = 100
		}
	}
	p.PercentCorrect = 0
	if answered := p.CorrectAnswers + p.IncorrectAnswers; answered > 0 {
		p.PercentCorrect = roundPercent(p.CorrectAnswers, answered)
	}
	p.PassedThreshold = p.PercentCorrect >= passThreshold
}

// roundPercent rounds half up, matching Math.round on non-negative values.
func roundPercent(part, whole int) int {
	return int(math.Floor(float64(part)*100/float64(whole) + 0.5))
}

// InterventionResponse is one recorded student answer (intervention_responses).
// swagger:model
type InterventionResponse struct {
	BaseModel          `bson:",inline"`
	InterventionPlanID primitive.ObjectID `bson:"interventionPlanId" json:"interventionPlanId"`
	StudentID          primitive.ObjectID `bson:"studentId" json:"studentId"`
	StudentNumber      string             `bson:"studentNumber,omitempty" json:"studentNumber,omitempty"`
	QuestionID         string             `bson:"questionId" json:"questionId"`
	SelectedChoiceID   string             `bson:"selectedChoiceId,omitempty" json:"selectedChoiceId,omitempty"`
	SelectedOptionText string             `bson:"selectedOptionText" json:"selectedOptionText"`
	IsCorrect          bool               `bson:"isCorrect" json:"isCorrect"`
	Description        string             `bson:"description,omitempty" json:"description,omitempty"`
	TimeSpentSeconds   int                `bson:"timeSpentSeconds,omitempty" json:"timeSpentSeconds,omitempty"`
	AnsweredAt         time.Time          `bson:"answeredAt" json:"answeredAt"`
}
