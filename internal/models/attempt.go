package models

import "time"

// Attempt lifecycle. in_progress is the only non-terminal state.
const (
	AttemptInProgress = "in_progress"
	AttemptCompleted  = "completed"
	AttemptTimedOut   = "timed_out"
	AttemptAbandoned  = "abandoned"
)

// Answer is the learner's submission for one question. Exactly one of the
// payload fields is populated, matching the question kind.
type Answer struct {
	QuestionID        string      `bson:"question_id" json:"question_id"`
	SelectedOptionIDs []string    `bson:"selected_option_ids,omitempty" json:"selected_option_ids,omitempty"`
	TextAnswer        string      `bson:"text_answer,omitempty" json:"text_answer,omitempty"`
	Matches           []MatchPair `bson:"matches,omitempty" json:"matches,omitempty"`
	OrderedIDs        []string    `bson:"ordered_ids,omitempty" json:"ordered_ids,omitempty"`

	// Filled in at submit time by the evaluator.
	IsCorrect          bool `bson:"is_correct" json:"is_correct"`
	IsPartiallyCorrect bool `bson:"is_partially_correct" json:"is_partially_correct"`
	PointsEarned       int  `bson:"points_earned" json:"points_earned"`
}

type BreakdownEntry struct {
	Attempted    int `bson:"attempted" json:"attempted"`
	Correct      int `bson:"correct" json:"correct"`
	PointsEarned int `bson:"points_earned" json:"points_earned"`
}

type AttemptSummary struct {
	Correct          int                       `bson:"correct" json:"correct"`
	PartiallyCorrect int                       `bson:"partially_correct" json:"partially_correct"`
	Incorrect        int                       `bson:"incorrect" json:"incorrect"`
	Unanswered       int                       `bson:"unanswered" json:"unanswered"`
	ByKind           map[string]BreakdownEntry `bson:"by_kind" json:"by_kind"`
	ByDifficulty     map[string]BreakdownEntry `bson:"by_difficulty" json:"by_difficulty"`
}

type QuizAttempt struct {
	ID            string     `bson:"_id,omitempty" json:"id"`
	QuizID        string     `bson:"quiz_id" json:"quiz_id"`
	UserID        string     `bson:"user_id" json:"user_id"`
	AttemptNumber int        `bson:"attempt_number" json:"attempt_number"`
	Status        string     `bson:"status" json:"status"`
	StartedAt     time.Time  `bson:"started_at" json:"started_at"`
	ExpiresAt     *time.Time `bson:"expires_at,omitempty" json:"expires_at,omitempty"`
	CompletedAt   *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`

	// Presentation order captured at start, after any shuffling.
	QuestionOrder []string `bson:"question_order" json:"question_order"`
	Answers       []Answer `bson:"answers" json:"answers"`

	Score      int            `bson:"score" json:"score"`
	MaxScore   int            `bson:"max_score" json:"max_score"`
	Percentage int            `bson:"percentage" json:"percentage"`
	Passed     bool           `bson:"passed" json:"passed"`
	Summary    AttemptSummary `bson:"summary" json:"summary"`

	// Rewards are granted at most once per attempt; the flag is the guard.
	TokensEarned   int  `bson:"tokens_earned" json:"tokens_earned"`
	XPEarned       int  `bson:"xp_earned" json:"xp_earned"`
	RewardsGranted bool `bson:"rewards_granted" json:"rewards_granted"`
}

// IsTerminal reports whether the attempt can no longer change state.
func (a *QuizAttempt) IsTerminal() bool {
	return a.Status != AttemptInProgress
}

// AnswerFor returns the buffered answer for a question, or nil.
func (a *QuizAttempt) AnswerFor(questionID string) *Answer {
	for i := range a.Answers {
		if a.Answers[i].QuestionID == questionID {
			return &a.Answers[i]
		}
	}
	return nil
}

// UpsertAnswer replaces the buffered answer for the same question or appends
// a new one. Evaluation fields on the incoming answer are ignored.
func (a *QuizAttempt) UpsertAnswer(ans Answer) {
	ans.IsCorrect = false
	ans.IsPartiallyCorrect = false
	ans.PointsEarned = 0
	for i := range a.Answers {
		if a.Answers[i].QuestionID == ans.QuestionID {
			a.Answers[i] = ans
			return
		}
	}
	a.Answers = append(a.Answers, ans)
}
