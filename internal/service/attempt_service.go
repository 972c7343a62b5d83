package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/mongo"

	"progress-service/internal/evaluator"
	"progress-service/internal/models"
	"progress-service/internal/rewards"
)

// Reasons an attempt may not start. These are policy outcomes, not errors.
const (
	ReasonNotAvailable      = "not_available"
	ReasonAttemptInProgress = "attempt_in_progress"
	ReasonAttemptLimit      = "attempt_limit_reached"
	ReasonCooldown          = "cooldown"
)

type StartEligibility struct {
	CanStart     bool       `json:"can_start"`
	Reason       string     `json:"reason,omitempty"`
	AttemptsUsed int        `json:"attempts_used"`
	MaxAttempts  int        `json:"max_attempts"`
	RetryAt      *time.Time `json:"retry_at,omitempty"`
}

// AttemptService runs the quiz attempt state machine:
// in_progress -> completed | timed_out | abandoned.
type AttemptService struct {
	Attempts AttemptStore
	Quizzes  QuizStore
	Ledger   rewards.Ledger
	Settings SettingsClient
}

func NewAttemptService(attempts AttemptStore, quizzes QuizStore, ledger rewards.Ledger, settings SettingsClient) *AttemptService {
	return &AttemptService{Attempts: attempts, Quizzes: quizzes, Ledger: ledger, Settings: settings}
}

func (s *AttemptService) GetAttempt(ctx context.Context, userID, attemptID string) (*models.QuizAttempt, error) {
	attempt, err := s.Attempts.FindByID(ctx, attemptID)
	if err == mongo.ErrNoDocuments {
		return nil, ErrAttemptNotFound
	}
	if err != nil {
		return nil, err
	}
	if attempt.UserID != userID {
		return nil, ErrForbidden
	}
	return attempt, nil
}

func (s *AttemptService) ListAttempts(ctx context.Context, userID string) ([]models.QuizAttempt, error) {
	return s.Attempts.FindByUser(ctx, userID)
}

// CanStart reports whether the learner may open a new attempt right now.
func (s *AttemptService) CanStart(ctx context.Context, userID, quizID string) (*StartEligibility, error) {
	quiz, err := s.Quizzes.FindByID(ctx, quizID)
	if err == mongo.ErrNoDocuments {
		return nil, ErrQuizNotFound
	}
	if err != nil {
		return nil, err
	}
	eligibility, _, err := s.eligibility(ctx, userID, quiz)
	return eligibility, err
}

func (s *AttemptService) eligibility(ctx context.Context, userID string, quiz *models.Quiz) (*StartEligibility, []models.QuizAttempt, error) {
	el := &StartEligibility{MaxAttempts: quiz.Settings.MaxAttempts}
	if !quiz.Published {
		el.Reason = ReasonNotAvailable
		return el, nil, nil
	}

	open, err := s.Attempts.FindInProgress(ctx, userID, quiz.ID)
	if err != nil {
		return nil, nil, err
	}
	if open != nil {
		el.Reason = ReasonAttemptInProgress
		return el, nil, nil
	}

	attempts, err := s.Attempts.FindByUserAndQuiz(ctx, userID, quiz.ID)
	if err != nil {
		return nil, nil, err
	}
	var completed []models.QuizAttempt
	for _, a := range attempts {
		if a.Status == models.AttemptCompleted {
			completed = append(completed, a)
		}
	}
	el.AttemptsUsed = len(completed)

	if quiz.Settings.MaxAttempts > 0 && len(completed) >= quiz.Settings.MaxAttempts {
		el.Reason = ReasonAttemptLimit
		return el, completed, nil
	}

	if quiz.Settings.CooldownMinutes > 0 && len(completed) > 0 {
		last := completed[len(completed)-1]
		if last.CompletedAt != nil {
			retryAt := last.CompletedAt.Add(time.Duration(quiz.Settings.CooldownMinutes) * time.Minute)
			if time.Now().Before(retryAt) {
				el.Reason = ReasonCooldown
				el.RetryAt = &retryAt
				return el, completed, nil
			}
		}
	}

	el.CanStart = true
	return el, completed, nil
}

// Start opens a new attempt. When policy forbids it, the eligibility result
// comes back with a reason and no attempt; that is not an error.
func (s *AttemptService) Start(ctx context.Context, userID, quizID string) (*models.QuizAttempt, *StartEligibility, error) {
	quiz, err := s.Quizzes.FindByID(ctx, quizID)
	if err == mongo.ErrNoDocuments {
		return nil, nil, ErrQuizNotFound
	}
	if err != nil {
		return nil, nil, err
	}

	eligibility, completed, err := s.eligibility(ctx, userID, quiz)
	if err != nil {
		return nil, nil, err
	}
	if !eligibility.CanStart {
		return nil, eligibility, nil
	}

	now := time.Now()
	order := make([]string, len(quiz.Questions))
	for i := range quiz.Questions {
		order[i] = quiz.Questions[i].ID
	}
	if quiz.Settings.ShuffleQuestions {
		rand.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	attempt := &models.QuizAttempt{
		ID:            uuid.NewString(),
		QuizID:        quiz.ID,
		UserID:        userID,
		AttemptNumber: len(completed) + 1,
		Status:        models.AttemptInProgress,
		StartedAt:     now,
		QuestionOrder: order,
		MaxScore:      quiz.TotalPoints(),
	}
	if quiz.Settings.TimeLimitMinutes > 0 {
		expires := now.Add(time.Duration(quiz.Settings.TimeLimitMinutes) * time.Minute)
		attempt.ExpiresAt = &expires
	}

	if err := s.Attempts.Create(ctx, attempt); err != nil {
		return nil, nil, err
	}
	return attempt, eligibility, nil
}

// SaveProgress buffers answers into an open attempt without evaluating
// them. Repeated saves for the same question overwrite the previous answer.
func (s *AttemptService) SaveProgress(ctx context.Context, userID, attemptID string, answers []models.Answer) (*models.QuizAttempt, error) {
	attempt, err := s.GetAttempt(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.IsTerminal() {
		return nil, ErrNotInProgress
	}
	for _, a := range answers {
		attempt.UpsertAnswer(a)
	}
	if err := s.Attempts.Replace(ctx, attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

// Submit evaluates the attempt and completes it. Retrying a completed
// attempt fails with ErrAlreadyCompleted instead of re-scoring; a submit
// past the deadline moves the attempt to timed_out and fails.
func (s *AttemptService) Submit(ctx context.Context, userID, attemptID string) (*models.QuizAttempt, error) {
	attempt, err := s.GetAttempt(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.Status == models.AttemptCompleted {
		return nil, ErrAlreadyCompleted
	}
	if attempt.IsTerminal() {
		return nil, ErrNotInProgress
	}

	now := time.Now()
	if attempt.ExpiresAt != nil && now.After(*attempt.ExpiresAt) {
		attempt.Status = models.AttemptTimedOut
		if err := s.Attempts.Replace(ctx, attempt); err != nil {
			return nil, err
		}
		return nil, ErrAttemptExpired
	}

	quiz, err := s.Quizzes.FindByID(ctx, attempt.QuizID)
	if err == mongo.ErrNoDocuments {
		return nil, ErrQuizNotFound
	}
	if err != nil {
		return nil, err
	}

	s.score(attempt, quiz)
	attempt.Status = models.AttemptCompleted
	attempt.CompletedAt = &now

	grant := !attempt.RewardsGranted
	if grant {
		tokens, xp := s.attemptReward(ctx, attempt, quiz)
		attempt.TokensEarned = tokens
		attempt.XPEarned = xp
		attempt.RewardsGranted = true
	}

	if err := s.Attempts.Replace(ctx, attempt); err != nil {
		return nil, err
	}

	// Ledger write happens after the attempt is durable; a failed grant is
	// logged, never surfaced.
	if grant && (attempt.TokensEarned > 0 || attempt.XPEarned > 0) {
		_, err := s.Ledger.Grant(ctx, rewards.GrantRequest{
			UserID:        userID,
			Amount:        attempt.TokensEarned,
			XPAmount:      attempt.XPEarned,
			Type:          rewards.TypeQuiz,
			Description:   fmt.Sprintf("Quiz %q attempt %d: %d%%", quiz.Title, attempt.AttemptNumber, attempt.Percentage),
			ReferenceType: "quiz_attempt",
			ReferenceID:   attempt.ID,
		})
		if err != nil {
			log.Printf("[REWARDS] quiz grant failed for attempt %s: %v", attempt.ID, err)
		}
	}
	return attempt, nil
}

// Abandon closes an open attempt without evaluation or rewards.
func (s *AttemptService) Abandon(ctx context.Context, userID, attemptID string) (*models.QuizAttempt, error) {
	attempt, err := s.GetAttempt(ctx, userID, attemptID)
	if err != nil {
		return nil, err
	}
	if attempt.IsTerminal() {
		return nil, ErrNotInProgress
	}
	now := time.Now()
	attempt.Status = models.AttemptAbandoned
	attempt.CompletedAt = &now
	if err := s.Attempts.Replace(ctx, attempt); err != nil {
		return nil, err
	}
	return attempt, nil
}

func (s *AttemptService) score(attempt *models.QuizAttempt, quiz *models.Quiz) {
	summary := models.AttemptSummary{
		ByKind:       make(map[string]models.BreakdownEntry),
		ByDifficulty: make(map[string]models.BreakdownEntry),
	}
	score := 0
	for i := range quiz.Questions {
		q := &quiz.Questions[i]
		ans := attempt.AnswerFor(q.ID)
		if ans == nil {
			summary.Unanswered++
			continue
		}
		result := evaluator.Evaluate(q, ans)
		ans.IsCorrect = result.IsCorrect
		ans.IsPartiallyCorrect = result.IsPartiallyCorrect
		ans.PointsEarned = result.PointsEarned
		score += result.PointsEarned

		switch {
		case result.IsCorrect:
			summary.Correct++
		case result.IsPartiallyCorrect:
			summary.PartiallyCorrect++
		default:
			summary.Incorrect++
		}

		kind := summary.ByKind[q.Kind]
		kind.Attempted++
		if result.IsCorrect {
			kind.Correct++
		}
		kind.PointsEarned += result.PointsEarned
		summary.ByKind[q.Kind] = kind

		diff := summary.ByDifficulty[q.Difficulty]
		diff.Attempted++
		if result.IsCorrect {
			diff.Correct++
		}
		diff.PointsEarned += result.PointsEarned
		summary.ByDifficulty[q.Difficulty] = diff
	}

	attempt.Score = score
	attempt.MaxScore = quiz.TotalPoints()
	if attempt.MaxScore > 0 {
		attempt.Percentage = int(math.Round(100 * float64(score) / float64(attempt.MaxScore)))
	} else {
		attempt.Percentage = 0
	}
	attempt.Passed = attempt.Percentage >= quiz.Settings.PassingScore
	attempt.Summary = summary
}

func (s *AttemptService) attemptReward(ctx context.Context, attempt *models.QuizAttempt, quiz *models.Quiz) (tokens, xp int) {
	baseTokens := quiz.TokenReward
	baseXP := quiz.XPReward
	if attempt.Percentage == 100 {
		baseTokens += quiz.PerfectScoreBonus
		baseXP += quiz.PerfectScoreBonus
	}
	if baseTokens == 0 && baseXP == 0 {
		return 0, 0
	}
	tokenMult, xpMult, err := s.Settings.LevelMultipliers(ctx, attempt.UserID)
	if err != nil {
		tokenMult, xpMult = 1, 1
	}
	return int(math.Round(float64(baseTokens) * tokenMult)), int(math.Round(float64(baseXP) * xpMult))
}
