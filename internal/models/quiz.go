package models

import "time"

const (
	QuizKindPre      = "pre_quiz"
	QuizKindPost     = "post_quiz"
	QuizKindPractice = "practice"
	QuizKindFinal    = "final"
)

const (
	FeedbackImmediate   = "immediate"
	FeedbackAfterSubmit = "after_submit"
	FeedbackNever       = "never"
)

// PreQuizBehavior applies to pre_quiz kind only.
type PreQuizBehavior struct {
	ShowContentOnFail bool `bson:"show_content_on_fail" json:"show_content_on_fail"`
	BypassOnSuccess   bool `bson:"bypass_on_success" json:"bypass_on_success"`
}

// PostQuizBehavior applies to post_quiz kind only.
type PostQuizBehavior struct {
	RequirePassToComplete bool `bson:"require_pass_to_complete" json:"require_pass_to_complete"`
	UnlockNextOnPass      bool `bson:"unlock_next_on_pass" json:"unlock_next_on_pass"`
}

type QuizSettings struct {
	TimeLimitMinutes int              `bson:"time_limit_minutes" json:"time_limit_minutes"`
	MaxAttempts      int              `bson:"max_attempts" json:"max_attempts"` // 0 = unlimited
	CooldownMinutes  int              `bson:"cooldown_minutes" json:"cooldown_minutes"`
	PassingScore     int              `bson:"passing_score" json:"passing_score"` // percentage
	ShuffleQuestions bool             `bson:"shuffle_questions" json:"shuffle_questions"`
	ShuffleOptions   bool             `bson:"shuffle_options" json:"shuffle_options"`
	FeedbackTiming   string           `bson:"feedback_timing" json:"feedback_timing"`
	PreQuiz          PreQuizBehavior  `bson:"pre_quiz" json:"pre_quiz"`
	PostQuiz         PostQuizBehavior `bson:"post_quiz" json:"post_quiz"`
}

// Quiz definitions are owned by the admin service and read-only here;
// attempts against them are owned by this service.
type Quiz struct {
	ID                string       `bson:"_id,omitempty" json:"id"`
	LessonID          string       `bson:"lesson_id" json:"lesson_id"`
	Title             string       `bson:"title" json:"title"`
	Kind              string       `bson:"kind" json:"kind"`
	Published         bool         `bson:"published" json:"published"`
	Questions         []Question   `bson:"questions" json:"questions"`
	Settings          QuizSettings `bson:"settings" json:"settings"`
	TokenReward       int          `bson:"token_reward" json:"token_reward"`
	XPReward          int          `bson:"xp_reward" json:"xp_reward"`
	PerfectScoreBonus int          `bson:"perfect_score_bonus" json:"perfect_score_bonus"`
	CreatedAt         time.Time    `bson:"created_at" json:"created_at"`
	UpdatedAt         time.Time    `bson:"updated_at" json:"updated_at"`
}

// TotalPoints is always derived from the current question list.
func (q *Quiz) TotalPoints() int {
	total := 0
	for i := range q.Questions {
		total += q.Questions[i].Points
	}
	return total
}

// QuestionByID looks a question up in the definition.
func (q *Quiz) QuestionByID(id string) *Question {
	for i := range q.Questions {
		if q.Questions[i].ID == id {
			return &q.Questions[i]
		}
	}
	return nil
}

// Sanitized returns a copy safe to serve to learners.
func (q Quiz) Sanitized() Quiz {
	questions := make([]Question, len(q.Questions))
	for i, question := range q.Questions {
		questions[i] = question.Sanitized()
	}
	q.Questions = questions
	return q
}
