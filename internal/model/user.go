package model

import (
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type UserRole string

const (
	Student UserRole = "student"
	Parent  UserRole = "parent"
	Teacher UserRole = "teacher"
	Admin   UserRole = "admin"
)

// swagger:model User
type User struct {
	BaseModel              `bson:",inline"`
	IDNumber               string              `bson:"idNumber,omitempty" json:"idNumber,omitempty"`
	FirstName              string              `bson:"firstName" json:"firstName"`
	MiddleName             string              `bson:"middleName,omitempty" json:"middleName,omitempty"`
	LastName               string              `bson:"lastName" json:"lastName"`
	Role                   UserRole            `bson:"role" json:"role"`
	ReadingLevel           ReadingLevel        `bson:"readingLevel,omitempty" json:"readingLevel,omitempty"`
	ReadingPercentage      float64             `bson:"readingPercentage" json:"readingPercentage"`
	PreAssessmentCompleted bool                `bson:"preAssessmentCompleted" json:"preAssessmentCompleted"`
	ParentID               *primitive.ObjectID `bson:"parentId,omitempty" json:"parentId,omitempty"`
	GradeLevel             string              `bson:"gradeLevel,omitempty" json:"gradeLevel,omitempty"`
	Section                string              `bson:"section,omitempty" json:"section,omitempty"`
}

func (u *User) FullName() string {
	parts := []string{u.FirstName}
	if u.MiddleName != "" {
		parts = append(parts, u.MiddleName)
	}
	parts = append(parts, u.LastName)
	return strings.Join(parts, " ")
}
