package model

import (
	"errors"
	"strings"
)

var (
	ErrUnknownCategory     = errors.New("unknown category")
	ErrUnknownReadingLevel = errors.New("unknown reading level")
	ErrUnknownQuestionType = errors.New("unknown question type")
)

// Category is one of the five literacy skill domains, stored in its human form.
type Category string

const (
	AlphabetKnowledge     Category = "Alphabet Knowledge"
	PhonologicalAwareness Category = "Phonological Awareness"
	WordRecognition       Category = "Word Recognition"
	Decoding              Category = "Decoding"
	ReadingComprehension  Category = "Reading Comprehension"
)

var Categories = []Category{
	AlphabetKnowledge,
	PhonologicalAwareness,
	WordRecognition,
	Decoding,
	ReadingComprehension,
}

var categoryMachineNames = map[Category]string{
	AlphabetKnowledge:     "alphabet_knowledge",
	PhonologicalAwareness: "phonological_awareness",
	WordRecognition:       "word_recognition",
	Decoding:              "decoding",
	ReadingComprehension:  "reading_comprehension",
}

// MachineName returns the snake_case form, e.g. "alphabet_knowledge".
func (c Category) MachineName() string {
	return categoryMachineNames[c]
}

// NormalizeCategory accepts either "Alphabet Knowledge" or "alphabet_knowledge"
// and returns the human form. Anything outside the enum is rejected.
func NormalizeCategory(raw string) (Category, error) {
	key := normalizeKey(raw)
	for _, c := range Categories {
		if key == normalizeKey(string(c)) || key == c.MachineName() {
			return c, nil
		}
	}
	return "", ErrUnknownCategory
}

// ReadingLevel follows the CRLA reading profile bands.
type ReadingLevel string

const (
	LowEmerging   ReadingLevel = "Low Emerging"
	HighEmerging  ReadingLevel = "High Emerging"
	Developing    ReadingLevel = "Developing"
	Transitioning ReadingLevel = "Transitioning"
	AtGradeLevel  ReadingLevel = "At Grade Level"
)

var ReadingLevels = []ReadingLevel{
	LowEmerging,
	HighEmerging,
	Developing,
	Transitioning,
	AtGradeLevel,
}

func NormalizeReadingLevel(raw string) (ReadingLevel, error) {
	key := normalizeKey(raw)
	for _, l := range ReadingLevels {
		if key == normalizeKey(string(l)) {
			return l, nil
		}
	}
	return "", ErrUnknownReadingLevel
}

// normalizeKey folds "Low Emerging", "low_emerging" and "low-emerging" into one key.
func normalizeKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	s = strings.NewReplacer(" ", "_", "-", "_").Replace(s)
	return s
}

type QuestionType string

const (
	Patinig    QuestionType = "patinig"
	Katinig    QuestionType = "katinig"
	Malapantig QuestionType = "malapantig"
	Word       QuestionType = "word"
	Sentence   QuestionType = "sentence"
)

func ParseQuestionType(raw string) (QuestionType, error) {
	qt := QuestionType(strings.ToLower(strings.TrimSpace(raw)))
	if _, ok := questionTypeChoiceTypes[qt]; !ok {
		return "", ErrUnknownQuestionType
	}
	return qt, nil
}

var categoryQuestionTypes = map[Category][]QuestionType{
	AlphabetKnowledge:     {Patinig, Katinig},
	PhonologicalAwareness: {Patinig, Katinig, Malapantig},
	WordRecognition:       {Word},
	Decoding:              {Malapantig, Word},
	ReadingComprehension:  {Sentence},
}

var questionTypeChoiceTypes = map[QuestionType][]string{
	Patinig:    {"patinigBigLetter", "patinigSmallLetter", "patinigSound"},
	Katinig:    {"katinigBigLetter", "katinigSmallLetter", "katinigSound"},
	Malapantig: {"malapantigText", "malapantigSound"},
	Word:       {"wordText", "wordSound"},
	Sentence:   {},
}

// QuestionTypesFor lists the question types allowed under a category.
func QuestionTypesFor(c Category) []QuestionType {
	return categoryQuestionTypes[c]
}

// ChoiceTypesFor lists the choice-type tags allowed for a question type.
func ChoiceTypesFor(qt QuestionType) []string {
	return questionTypeChoiceTypes[qt]
}

func (c Category) Allows(qt QuestionType) bool {
	for _, t := range categoryQuestionTypes[c] {
		if t == qt {
			return true
		}
	}
	return false
}

func (qt QuestionType) Allows(choiceType string) bool {
	for _, t := range questionTypeChoiceTypes[qt] {
		if t == choiceType {
			return true
		}
	}
	return false
}

// IsKnownChoiceType reports whether the tag belongs to any question type.
func IsKnownChoiceType(choiceType string) bool {
	for _, tags := range questionTypeChoiceTypes {
		for _, t := range tags {
			if t == choiceType {
				return true
			}
		}
	}
	return false
}
