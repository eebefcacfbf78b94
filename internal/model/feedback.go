package model

type feedbackPair struct {
	correct   string
	incorrect string
}

var defaultFeedback = map[QuestionType]feedbackPair{
	Patinig: {
		correct:   "Magaling! Tama ang napili mong patinig.",
		incorrect: "Subukan muli. Pakinggan ang tunog ng patinig.",
	},
	Katinig: {
		correct:   "Magaling! Tama ang napili mong katinig.",
		incorrect: "Subukan muli. Pakinggan ang tunog ng katinig.",
	},
	Malapantig: {
		correct:   "Magaling! Tama ang pagbasa mo sa pantig.",
		incorrect: "Subukan muli. Basahin nang dahan-dahan ang bawat pantig.",
	},
	Word: {
		correct:   "Magaling! Nabasa mo nang tama ang salita.",
		incorrect: "Subukan muli. Tingnan nang mabuti ang mga titik ng salita.",
	},
	Sentence: {
		correct:   "Magaling! Naunawaan mo ang iyong binasa.",
		incorrect: "Subukan muli. Balikan ang kuwento at hanapin ang sagot.",
	},
}

var fallbackFeedback = feedbackPair{
	correct:   "Tama ang iyong sagot!",
	incorrect: "Hindi tama ang sagot. Subukan muli.",
}

// DefaultFeedback returns the fixed feedback text shown when a choice has no
// description of its own.
func DefaultFeedback(qt QuestionType, isCorrect bool) string {
	pair, ok := defaultFeedback[qt]
	if !ok {
		pair = fallbackFeedback
	}
	if isCorrect {
		return pair.correct
	}
	return pair.incorrect
}

// FillMissingDescriptions sets a default description on every choice that lacks
// one and returns how many were added.
func FillMissingDescriptions(questions []PlanQuestion) int {
	added := 0
	for qi := range questions {
		q := &questions[qi]
		for ci := range q.Choices {
			if q.Choices[ci].Description == "" {
				q.Choices[ci].Description = DefaultFeedback(q.QuestionType, q.Choices[ci].IsCorrect)
				added++
			}
		}
	}
	return added
}
