package service

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"progress-service/internal/models"
)

// AccessDecision is the gate's answer for one piece of content. A blocked
// decision is a normal response, not an error: locked content is an
// expected, user-facing state.
type AccessDecision struct {
	Allowed bool   `json:"allowed"`
	Blocked bool   `json:"blocked"`
	Reason  string `json:"reason,omitempty"`
	// A pre-quiz detour: the lesson is accessible, but the quiz must be
	// taken before content is shown.
	PreQuizRequired bool   `json:"pre_quiz_required,omitempty"`
	RequiredQuizID  string `json:"required_quiz_id,omitempty"`
	// The learner passed a bypass-on-success pre-quiz and may skip the
	// lesson content.
	CanSkipContent bool `json:"can_skip_content,omitempty"`
}

type DailyLimitStatus struct {
	Limited        bool `json:"limited"`
	CompletedToday int  `json:"completed_today"`
	MaxDaily       int  `json:"max_daily"`
	// Remaining is -1 when the limit is disabled.
	Remaining int `json:"remaining"`
}

// QuizGateStatus summarizes the learner's standing against a lesson's
// pre- or post-quiz.
type QuizGateStatus struct {
	Exists         bool   `json:"exists"`
	QuizID         string `json:"quiz_id,omitempty"`
	Attempted      bool   `json:"attempted"`
	Passed         bool   `json:"passed"`
	BestPercentage int    `json:"best_percentage"`
}

// AccessService decides whether a learner may view or complete content. It
// combines sibling-completion thresholds, quiz gates and the daily limiter.
type AccessService struct {
	Content  ContentStore
	Progress ProgressStore
	Quizzes  QuizStore
	Attempts AttemptStore
	Daily    DailyStore
	Settings SettingsClient
}

func NewAccessService(content ContentStore, progress ProgressStore, quizzes QuizStore, attempts AttemptStore, daily DailyStore, settings SettingsClient) *AccessService {
	return &AccessService{
		Content:  content,
		Progress: progress,
		Quizzes:  quizzes,
		Attempts: attempts,
		Daily:    daily,
		Settings: settings,
	}
}

func allowed() *AccessDecision { return &AccessDecision{Allowed: true} }

func blocked(reason string) *AccessDecision {
	return &AccessDecision{Blocked: true, Reason: reason}
}

// CanAccessTheme passes when the theme has no previous-completion
// requirement, is first in its course, or the preceding theme's progress
// percentage has reached this theme's unlock threshold.
func (s *AccessService) CanAccessTheme(ctx context.Context, userID, themeID string) (*AccessDecision, error) {
	theme, err := s.Content.Theme(ctx, themeID)
	if err == mongo.ErrNoDocuments {
		return nil, ErrThemeNotFound
	}
	if err != nil {
		return nil, err
	}
	if !theme.RequirePreviousCompletion {
		return allowed(), nil
	}

	themes, err := s.Content.ThemesByCourse(ctx, theme.CourseID)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range themes {
		if themes[i].ID == themeID {
			idx = i
			break
		}
	}
	if idx <= 0 {
		return allowed(), nil
	}
	prev := themes[idx-1]

	percentage := 0
	progress, err := s.Progress.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if progress != nil {
		if cp := progress.Course(theme.CourseID); cp != nil {
			if tp := cp.Theme(prev.ID); tp != nil {
				percentage = tp.ProgressPercentage
			}
		}
	}

	threshold := theme.UnlockThreshold()
	if percentage >= threshold {
		return allowed(), nil
	}
	return blocked(fmt.Sprintf("Complete %q first: %d%% required, currently %d%%", prev.Title, threshold, percentage)), nil
}

// CanAccessLesson gates a lesson behind its theme, the preceding lesson's
// completion and post-quiz, and surfaces this lesson's pre-quiz as a
// required detour rather than a hard block.
func (s *AccessService) CanAccessLesson(ctx context.Context, userID, lessonID string) (*AccessDecision, error) {
	lesson, err := s.Content.Lesson(ctx, lessonID)
	if err == mongo.ErrNoDocuments {
		return nil, ErrLessonNotFound
	}
	if err != nil {
		return nil, err
	}
	if lesson.IsPreview {
		return allowed(), nil
	}

	themeDecision, err := s.CanAccessTheme(ctx, userID, lesson.ThemeID)
	if err != nil {
		return nil, err
	}
	if themeDecision.Blocked {
		return themeDecision, nil
	}

	if lesson.RequirePreviousCompletion {
		decision, err := s.checkPreviousLesson(ctx, userID, lesson)
		if err != nil {
			return nil, err
		}
		if decision != nil {
			return decision, nil
		}
	}

	preQuiz, err := s.PreQuizStatus(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}
	decision := allowed()
	if preQuiz.Exists {
		quiz, err := s.Quizzes.FindByLesson(ctx, lessonID, models.QuizKindPre)
		if err != nil {
			return nil, err
		}
		if quiz != nil {
			switch {
			case preQuiz.Passed:
				decision.CanSkipContent = quiz.Settings.PreQuiz.BypassOnSuccess
			case preQuiz.Attempted && quiz.Settings.PreQuiz.ShowContentOnFail:
				// failed the diagnostic, content is shown anyway
			default:
				decision.PreQuizRequired = true
				decision.RequiredQuizID = preQuiz.QuizID
			}
		}
	}
	return decision, nil
}

func (s *AccessService) checkPreviousLesson(ctx context.Context, userID string, lesson *models.Lesson) (*AccessDecision, error) {
	lessons, err := s.Content.LessonsByTheme(ctx, lesson.ThemeID)
	if err != nil {
		return nil, err
	}
	var prev *models.Lesson
	for i := range lessons {
		if lessons[i].ID == lesson.ID {
			break
		}
		prev = &lessons[i]
	}
	if prev == nil {
		return nil, nil
	}

	progress, err := s.Progress.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	completed := false
	if progress != nil {
		if _, _, lp := progress.FindLesson(prev.ID); lp != nil {
			completed = lp.Status == models.StatusCompleted
		}
	}
	if !completed {
		// A passed unlock-next-on-pass post-quiz opens the next lesson even
		// before the preceding lesson itself is marked complete.
		quiz, err := s.Quizzes.FindByLesson(ctx, prev.ID, models.QuizKindPost)
		if err != nil {
			return nil, err
		}
		unlocked := false
		if quiz != nil && quiz.Settings.PostQuiz.UnlockNextOnPass {
			status, err := s.quizStatus(ctx, userID, prev.ID, models.QuizKindPost)
			if err != nil {
				return nil, err
			}
			unlocked = status.Passed
		}
		if !unlocked {
			return blocked(fmt.Sprintf("Complete %q first", prev.Title)), nil
		}
		return nil, nil
	}

	// The preceding lesson's post-quiz, when it requires a pass, must have
	// been passed before this lesson opens.
	satisfied, quizID, err := s.PostQuizSatisfied(ctx, userID, prev.ID)
	if err != nil {
		return nil, err
	}
	if !satisfied {
		d := blocked(fmt.Sprintf("Pass the quiz for %q first", prev.Title))
		d.RequiredQuizID = quizID
		return d, nil
	}
	return nil, nil
}

// PreQuizStatus reports the learner's standing against the lesson's
// pre-quiz, if one exists.
func (s *AccessService) PreQuizStatus(ctx context.Context, userID, lessonID string) (*QuizGateStatus, error) {
	return s.quizStatus(ctx, userID, lessonID, models.QuizKindPre)
}

// PostQuizStatus is the post-quiz counterpart.
func (s *AccessService) PostQuizStatus(ctx context.Context, userID, lessonID string) (*QuizGateStatus, error) {
	return s.quizStatus(ctx, userID, lessonID, models.QuizKindPost)
}

func (s *AccessService) quizStatus(ctx context.Context, userID, lessonID, kind string) (*QuizGateStatus, error) {
	quiz, err := s.Quizzes.FindByLesson(ctx, lessonID, kind)
	if err != nil {
		return nil, err
	}
	status := &QuizGateStatus{}
	if quiz == nil {
		return status, nil
	}
	status.Exists = true
	status.QuizID = quiz.ID

	attempts, err := s.Attempts.FindByUserAndQuiz(ctx, userID, quiz.ID)
	if err != nil {
		return nil, err
	}
	for _, a := range attempts {
		if a.Status != models.AttemptCompleted {
			continue
		}
		status.Attempted = true
		if a.Percentage > status.BestPercentage {
			status.BestPercentage = a.Percentage
		}
		if a.Passed {
			status.Passed = true
		}
	}
	return status, nil
}

// PostQuizSatisfied reports whether the lesson's post-quiz allows
// completion: true when no post-quiz exists, when it does not require a
// pass, or when the learner's best attempt passed.
func (s *AccessService) PostQuizSatisfied(ctx context.Context, userID, lessonID string) (bool, string, error) {
	quiz, err := s.Quizzes.FindByLesson(ctx, lessonID, models.QuizKindPost)
	if err != nil {
		return false, "", err
	}
	if quiz == nil || !quiz.Settings.PostQuiz.RequirePassToComplete {
		return true, "", nil
	}
	status, err := s.quizStatus(ctx, userID, lessonID, models.QuizKindPost)
	if err != nil {
		return false, "", err
	}
	return status.Passed, quiz.ID, nil
}

// CheckDailyLimit compares today's completion count against the configured
// cap. The stored counter is normalized against the current calendar day
// before comparison; stale counts from previous days never block.
func (s *AccessService) CheckDailyLimit(ctx context.Context, userID string) (*DailyLimitStatus, error) {
	max, err := s.Settings.MaxDailyTasks(ctx)
	if err != nil {
		return nil, err
	}
	if max <= 0 {
		return &DailyLimitStatus{Remaining: -1}, nil
	}

	daily, err := s.Daily.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	daily.Normalize(time.Now())

	remaining := max - daily.TasksCompletedToday
	if remaining < 0 {
		remaining = 0
	}
	return &DailyLimitStatus{
		Limited:        daily.TasksCompletedToday >= max,
		CompletedToday: daily.TasksCompletedToday,
		MaxDaily:       max,
		Remaining:      remaining,
	}, nil
}
