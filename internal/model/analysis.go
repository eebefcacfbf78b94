package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const DefaultCategoryPassingThreshold = 75

type CategoryScore struct {
	CategoryName     string  `bson:"categoryName" json:"categoryName"`
	TotalQuestions   int     `bson:"totalQuestions" json:"totalQuestions"`
	CorrectAnswers   int     `bson:"correctAnswers" json:"correctAnswers"`
	Score            float64 `bson:"score" json:"score"`
	IsPassed         bool    `bson:"isPassed" json:"isPassed"`
	PassingThreshold float64 `bson:"passingThreshold" json:"passingThreshold"`
}

// CategoryResult is a per-assessment snapshot (category_results). StudentID is
// the legacy reference and may hold an ObjectId hex, an idNumber string or a
// number; StudentObjectID is the migrated canonical reference.
// swagger:model
type CategoryResult struct {
	ID              primitive.ObjectID  `bson:"_id,omitempty" json:"_id"`
	StudentID       interface{}         `bson:"studentId,omitempty" json:"studentId,omitempty"`
	StudentObjectID *primitive.ObjectID `bson:"studentObjectId,omitempty" json:"studentObjectId,omitempty"`
	Categories      []CategoryScore     `bson:"categories" json:"categories"`
	ReadingLevel    string              `bson:"readingLevel,omitempty" json:"readingLevel,omitempty"`
	AssessmentDate  time.Time           `bson:"assessmentDate" json:"assessmentDate"`
	AssessmentType  string              `bson:"assessmentType,omitempty" json:"assessmentType,omitempty"`
	CreatedAt       time.Time           `bson:"createdAt,omitempty" json:"createdAt,omitempty"`
}

// FindCategory matches category names in either human or machine form.
func (r *CategoryResult) FindCategory(c Category) *CategoryScore {
	for i := range r.Categories {
		if got, err := NormalizeCategory(r.Categories[i].CategoryName); err == nil && got == c {
			return &r.Categories[i]
		}
	}
	return nil
}

// PrescriptiveAnalysis is the teacher-facing narrative for one student and category.
// swagger:model
type PrescriptiveAnalysis struct {
	BaseModel       `bson:",inline"`
	StudentID       primitive.ObjectID  `bson:"studentId" json:"studentId"`
	CategoryID      Category            `bson:"categoryId" json:"categoryId"`
	ReadingLevel    ReadingLevel        `bson:"readingLevel,omitempty" json:"readingLevel,omitempty"`
	Strengths       string              `bson:"strengths" json:"strengths"`
	Weaknesses      string              `bson:"weaknesses" json:"weaknesses"`
	Recommendations string              `bson:"recommendations" json:"recommendations"`
	CreatedBy       *primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
}
