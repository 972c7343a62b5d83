package models

import "sort"

// Question kinds. One document shape covers all seven; the kind field
// decides which answer-definition fields are meaningful.
const (
	QuestionMultipleChoice = "multiple_choice"
	QuestionMultipleAnswer = "multiple_answer"
	QuestionTrueFalse      = "true_false"
	QuestionText           = "text"
	QuestionFillBlank      = "fill_blank"
	QuestionMatching       = "matching"
	QuestionOrdering       = "ordering"
)

const (
	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"
)

type Option struct {
	ID      string `bson:"id" json:"id"`
	Text    string `bson:"text" json:"text"`
	Correct bool   `bson:"correct" json:"correct,omitempty"`
}

type MatchPair struct {
	Left  string `bson:"left" json:"left"`
	Right string `bson:"right" json:"right"`
}

type Question struct {
	ID            string   `bson:"id" json:"id"`
	Kind          string   `bson:"kind" json:"kind"`
	Text          string   `bson:"text" json:"text"`
	Points        int      `bson:"points" json:"points"`
	PartialCredit bool     `bson:"partial_credit" json:"partial_credit"`
	Difficulty    string   `bson:"difficulty" json:"difficulty"`
	Required      bool     `bson:"required" json:"required"`
	Explanation   string   `bson:"explanation" json:"explanation,omitempty"`

	// multiple_choice, multiple_answer, true_false
	Options []Option `bson:"options,omitempty" json:"options,omitempty"`
	// text, fill_blank
	AcceptedAnswers []string `bson:"accepted_answers,omitempty" json:"accepted_answers,omitempty"`
	CaseSensitive   bool     `bson:"case_sensitive,omitempty" json:"case_sensitive,omitempty"`
	// matching
	Pairs []MatchPair `bson:"pairs,omitempty" json:"pairs,omitempty"`
	// ordering
	CorrectOrder []string `bson:"correct_order,omitempty" json:"correct_order,omitempty"`
}

// CorrectOptionIDs returns the IDs of options flagged correct.
func (q *Question) CorrectOptionIDs() []string {
	var ids []string
	for _, o := range q.Options {
		if o.Correct {
			ids = append(ids, o.ID)
		}
	}
	return ids
}

// Sanitized strips the answer definition so the question can be served to a
// learner without leaking the key. Matching pairs survive with the rights
// detached from their lefts (sorted), so the items are visible but the
// pairing is not.
func (q Question) Sanitized() Question {
	opts := make([]Option, len(q.Options))
	for i, o := range q.Options {
		opts[i] = Option{ID: o.ID, Text: o.Text}
	}
	q.Options = opts
	if len(q.Pairs) > 0 {
		rights := make([]string, len(q.Pairs))
		for i, p := range q.Pairs {
			rights[i] = p.Right
		}
		sort.Strings(rights)
		pairs := make([]MatchPair, len(q.Pairs))
		for i, p := range q.Pairs {
			pairs[i] = MatchPair{Left: p.Left, Right: rights[i]}
		}
		q.Pairs = pairs
	}
	q.AcceptedAnswers = nil
	q.CorrectOrder = nil
	q.Explanation = ""
	return q
}
