package model

import "go.mongodb.org/mongo-driver/bson/primitive"

// TemplateQuestion is a reusable question stem (templates_questions).
// swagger:model
type TemplateQuestion struct {
	BaseModel             `bson:",inline"`
	Category              Category            `bson:"category" json:"category"`
	QuestionType          QuestionType        `bson:"questionType" json:"questionType"`
	TemplateText          string              `bson:"templateText" json:"templateText"`
	ApplicableChoiceTypes []string            `bson:"applicableChoiceTypes" json:"applicableChoiceTypes"`
	CorrectChoiceType     string              `bson:"correctChoiceType,omitempty" json:"correctChoiceType,omitempty"`
	IsActive              bool                `bson:"isActive" json:"isActive"`
	CreatedBy             *primitive.ObjectID `bson:"createdBy,omitempty" json:"createdBy,omitempty"`
}

// TemplateChoice is an answer option (templates_choices).
// swagger:model
type TemplateChoice struct {
	BaseModel   `bson:",inline"`
	ChoiceType  string `bson:"choiceType" json:"choiceType"`
	ChoiceValue string `bson:"choiceValue,omitempty" json:"choiceValue,omitempty"`
	SoundText   string `bson:"soundText,omitempty" json:"soundText,omitempty"`
	IsActive    bool   `bson:"isActive" json:"isActive"`
}

type SentencePage struct {
	PageNumber int    `bson:"pageNumber" json:"pageNumber"`
	Text       string `bson:"text" json:"text"`
	Image      string `bson:"image,omitempty" json:"image,omitempty"`
}

type SentenceQuestion struct {
	QuestionNumber        int      `bson:"questionNumber" json:"questionNumber"`
	QuestionText          string   `bson:"questionText" json:"questionText"`
	SentenceCorrectAnswer string   `bson:"sentenceCorrectAnswer" json:"sentenceCorrectAnswer"`
	SentenceOptionAnswers []string `bson:"sentenceOptionAnswers" json:"sentenceOptionAnswers"`
}

// SentenceTemplate is a reading-comprehension passage (sentence_templates).
// swagger:model
type SentenceTemplate struct {
	BaseModel         `bson:",inline"`
	Title             string             `bson:"title" json:"title"`
	Category          Category           `bson:"category" json:"category"`
	ReadingLevel      ReadingLevel       `bson:"readingLevel" json:"readingLevel"`
	SentenceText      []SentencePage     `bson:"sentenceText" json:"sentenceText"`
	SentenceQuestions []SentenceQuestion `bson:"sentenceQuestions" json:"sentenceQuestions"`
	IsActive          bool               `bson:"isActive" json:"isActive"`
}

type MainAssessmentChoice struct {
	OptionID    string `bson:"optionId" json:"optionId"`
	OptionText  string `bson:"optionText" json:"optionText"`
	IsCorrect   bool   `bson:"isCorrect" json:"isCorrect"`
	Description string `bson:"description,omitempty" json:"description,omitempty"`
}

// MainAssessmentQuestion is a question of the placement assessment (main_assessment).
// swagger:model
type MainAssessmentQuestion struct {
	BaseModel     `bson:",inline"`
	Category      Category               `bson:"category" json:"category"`
	ReadingLevel  ReadingLevel           `bson:"readingLevel" json:"readingLevel"`
	QuestionType  QuestionType           `bson:"questionType" json:"questionType"`
	QuestionText  string                 `bson:"questionText" json:"questionText"`
	QuestionImage string                 `bson:"questionImage,omitempty" json:"questionImage,omitempty"`
	QuestionValue string                 `bson:"questionValue,omitempty" json:"questionValue,omitempty"`
	ChoiceOptions []MainAssessmentChoice `bson:"choiceOptions" json:"choiceOptions"`
	Order         int                    `bson:"order" json:"order"`
	IsActive      bool                   `bson:"isActive" json:"isActive"`
}
