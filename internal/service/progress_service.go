package service

import (
	"context"
	"fmt"
	"log"
	"math"
	"time"

	"go.mongodb.org/mongo-driver/mongo"

	"progress-service/internal/models"
	"progress-service/internal/rewards"
)

type NextContent struct {
	CourseID    string `json:"course_id"`
	ThemeID     string `json:"theme_id"`
	LessonID    string `json:"lesson_id"`
	LessonTitle string `json:"lesson_title"`
}

type RewardGrant struct {
	Type   string `json:"type"`
	Tokens int    `json:"tokens"`
	XP     int    `json:"xp"`
}

// CompletionResult is the outcome of a completion request. Daily-limit and
// post-quiz blocks come back here as flags, not as errors.
type CompletionResult struct {
	LessonCompleted   bool          `json:"lesson_completed"`
	AlreadyCompleted  bool          `json:"already_completed"`
	ThemeCompleted    bool          `json:"theme_completed"`
	CourseCompleted   bool          `json:"course_completed"`
	DailyLimitReached bool          `json:"daily_limit_reached"`
	PostQuizRequired  bool          `json:"post_quiz_required"`
	RequiredQuizID    string        `json:"required_quiz_id,omitempty"`
	Message           string        `json:"message,omitempty"`
	CurrentStreak     int           `json:"current_streak"`
	Rewards           []RewardGrant `json:"rewards,omitempty"`
	NextContent       *NextContent  `json:"next_content,omitempty"`
}

// CourseDelta reports a repair pass's before/after per course.
type CourseDelta struct {
	CourseID      string `json:"course_id"`
	OldPercentage int    `json:"old_percentage"`
	NewPercentage int    `json:"new_percentage"`
	OldStatus     string `json:"old_status"`
	NewStatus     string `json:"new_status"`
}

// ProgressService owns the learner's Course -> Theme -> Lesson progress
// tree. Lesson status is ground truth; everything above it is recomputed
// bottom-up on every mutation.
type ProgressService struct {
	Progress ProgressStore
	Daily    DailyStore
	Content  ContentStore
	Quizzes  QuizStore
	Access   *AccessService
	Ledger   rewards.Ledger
	Settings SettingsClient
}

func NewProgressService(progress ProgressStore, daily DailyStore, content ContentStore, quizzes QuizStore, access *AccessService, ledger rewards.Ledger, settings SettingsClient) *ProgressService {
	return &ProgressService{
		Progress: progress,
		Daily:    daily,
		Content:  content,
		Quizzes:  quizzes,
		Access:   access,
		Ledger:   ledger,
		Settings: settings,
	}
}

// Enroll creates the learner's CourseProgress snapshot. Enrolling twice is
// an idempotent no-op returning the existing progress.
func (s *ProgressService) Enroll(ctx context.Context, userID, courseID string) (*models.CourseProgress, bool, error) {
	course, err := s.Content.Course(ctx, courseID)
	if err == mongo.ErrNoDocuments {
		return nil, false, ErrCourseNotFound
	}
	if err != nil {
		return nil, false, err
	}
	if !course.Published {
		return nil, false, ErrCourseNotFound
	}

	progress, err := s.Progress.FindByUser(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	now := time.Now()
	created := false
	if progress == nil {
		progress = &models.UserProgress{UserID: userID, CreatedAt: now}
		created = true
	}
	if existing := progress.Course(courseID); existing != nil {
		return existing, true, nil
	}

	// Snapshot the catalog structure as it exists right now. Content added
	// to the course later is not merged in; Recalculate never changes the
	// snapshot either.
	themes, err := s.Content.ThemesByCourse(ctx, courseID)
	if err != nil {
		return nil, false, err
	}
	cp := models.CourseProgress{
		CourseID:   courseID,
		Status:     models.StatusNotStarted,
		EnrolledAt: now,
	}
	for _, theme := range themes {
		lessons, err := s.Content.LessonsByTheme(ctx, theme.ID)
		if err != nil {
			return nil, false, err
		}
		tp := models.ThemeProgress{ThemeID: theme.ID, Status: models.StatusNotStarted}
		for _, lesson := range lessons {
			tp.Lessons = append(tp.Lessons, models.LessonProgress{
				LessonID: lesson.ID,
				Status:   models.StatusNotStarted,
			})
		}
		cp.Themes = append(cp.Themes, tp)
	}

	progress.Courses = append(progress.Courses, cp)
	progress.UpdatedAt = now
	if created {
		err = s.Progress.Create(ctx, progress)
	} else {
		err = s.Progress.Replace(ctx, progress)
	}
	if err != nil {
		return nil, false, err
	}
	return progress.Course(courseID), false, nil
}

// MarkLessonComplete is the central completion operation. Check order:
// daily limit, post-quiz gate, already-completed idempotence; then the tree
// mutation is persisted in one document write, and only after that do the
// daily counter and the best-effort reward grants move.
func (s *ProgressService) MarkLessonComplete(ctx context.Context, userID, lessonID string) (*CompletionResult, error) {
	limit, err := s.Access.CheckDailyLimit(ctx, userID)
	if err != nil {
		return nil, err
	}
	if limit.Limited {
		return &CompletionResult{
			DailyLimitReached: true,
			Message:           fmt.Sprintf("Daily limit of %d lessons reached, come back tomorrow", limit.MaxDaily),
		}, nil
	}

	lesson, err := s.Content.Lesson(ctx, lessonID)
	if err == mongo.ErrNoDocuments {
		return nil, ErrLessonNotFound
	}
	if err != nil {
		return nil, err
	}

	satisfied, requiredQuizID, err := s.Access.PostQuizSatisfied(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}
	if !satisfied {
		return &CompletionResult{
			PostQuizRequired: true,
			RequiredQuizID:   requiredQuizID,
			Message:          "Pass the lesson quiz to complete this lesson",
		}, nil
	}

	// Freshest read before the idempotence check; no side effect has
	// happened yet if the lesson turns out to be done already.
	progress, err := s.Progress.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		return nil, ErrNotEnrolled
	}
	cp, tp, lp := progress.FindLesson(lessonID)
	if lp == nil {
		return nil, ErrLessonNotTracked
	}

	if lp.Status == models.StatusCompleted {
		next, err := s.NextContent(ctx, lessonID)
		if err != nil {
			log.Printf("[PROGRESS] next content lookup failed for lesson %s: %v", lessonID, err)
		}
		return &CompletionResult{
			LessonCompleted:  true,
			AlreadyCompleted: true,
			CurrentStreak:    progress.CurrentStreak,
			NextContent:      next,
		}, nil
	}

	now := time.Now()
	lp.Status = models.StatusCompleted
	lp.CompletedAt = &now

	themeWasCompleted := tp.Status == models.StatusCompleted
	courseWasCompleted := cp.Status == models.StatusCompleted
	cp.Recompute(now)
	themeCompleted := !themeWasCompleted && tp.Status == models.StatusCompleted
	courseCompleted := !courseWasCompleted && cp.Status == models.StatusCompleted

	progress.TotalLessonsCompleted++
	if courseCompleted {
		progress.TotalCoursesCompleted++
	}
	streakChanged := progress.UpdateStreak(now)
	progress.UpdatedAt = now

	if err := s.Progress.Replace(ctx, progress); err != nil {
		return nil, err
	}

	s.countDailyTask(ctx, userID, now)

	result := &CompletionResult{
		LessonCompleted: true,
		ThemeCompleted:  themeCompleted,
		CourseCompleted: courseCompleted,
		CurrentStreak:   progress.CurrentStreak,
	}
	s.grantCompletionRewards(ctx, userID, lesson, cp, tp, result, streakChanged)

	next, err := s.NextContent(ctx, lessonID)
	if err != nil {
		log.Printf("[PROGRESS] next content lookup failed for lesson %s: %v", lessonID, err)
	} else {
		result.NextContent = next
	}
	return result, nil
}

func (s *ProgressService) countDailyTask(ctx context.Context, userID string, now time.Time) {
	daily, err := s.Daily.FindByUser(ctx, userID)
	if err != nil {
		log.Printf("[PROGRESS] daily counter read failed for user %s: %v", userID, err)
		return
	}
	daily.Increment(now)
	if err := s.Daily.Save(ctx, daily); err != nil {
		log.Printf("[PROGRESS] daily counter write failed for user %s: %v", userID, err)
	}
}

func (s *ProgressService) grantCompletionRewards(ctx context.Context, userID string, lesson *models.Lesson, cp *models.CourseProgress, tp *models.ThemeProgress, result *CompletionResult, streakChanged bool) {
	tokenMult, xpMult, err := s.Settings.LevelMultipliers(ctx, userID)
	if err != nil {
		tokenMult, xpMult = 1, 1
	}

	s.grantQuietly(ctx, result, rewards.GrantRequest{
		UserID:        userID,
		Amount:        scale(lesson.TokenReward, tokenMult),
		XPAmount:      scale(lesson.XPReward, xpMult),
		Type:          rewards.TypeLesson,
		Description:   fmt.Sprintf("Completed lesson %q", lesson.Title),
		ReferenceType: "lesson",
		ReferenceID:   lesson.ID,
	})
	if result.ThemeCompleted {
		s.grantQuietly(ctx, result, rewards.GrantRequest{
			UserID:        userID,
			Amount:        scale(rewards.ThemeBonusTokens, tokenMult),
			XPAmount:      scale(rewards.ThemeBonusXP, xpMult),
			Type:          rewards.TypeTheme,
			Description:   "Theme completed",
			ReferenceType: "theme",
			ReferenceID:   tp.ThemeID,
		})
	}
	if result.CourseCompleted {
		s.grantQuietly(ctx, result, rewards.GrantRequest{
			UserID:        userID,
			Amount:        scale(rewards.CourseBonusTokens, tokenMult),
			XPAmount:      scale(rewards.CourseBonusXP, xpMult),
			Type:          rewards.TypeCourse,
			Description:   "Course completed",
			ReferenceType: "course",
			ReferenceID:   cp.CourseID,
		})
	}
	if streakChanged && result.CurrentStreak > 0 && result.CurrentStreak%rewards.StreakBonusInterval == 0 {
		s.grantQuietly(ctx, result, rewards.GrantRequest{
			UserID:      userID,
			Amount:      scale(rewards.StreakBonusTokens, tokenMult),
			XPAmount:    scale(rewards.StreakBonusXP, xpMult),
			Type:        rewards.TypeStreak,
			Description: fmt.Sprintf("%d-day study streak", result.CurrentStreak),
		})
	}
}

// grantQuietly fires a ledger grant and records it on the result; failures
// are logged and never fail the completion.
func (s *ProgressService) grantQuietly(ctx context.Context, result *CompletionResult, req rewards.GrantRequest) {
	if req.Amount == 0 && req.XPAmount == 0 {
		return
	}
	if _, err := s.Ledger.Grant(ctx, req); err != nil {
		log.Printf("[REWARDS] %s grant failed for user %s: %v", req.Type, req.UserID, err)
		return
	}
	result.Rewards = append(result.Rewards, RewardGrant{Type: req.Type, Tokens: req.Amount, XP: req.XPAmount})
}

func scale(base int, mult float64) int {
	return int(math.Round(float64(base) * mult))
}

// NextContent walks the catalog: next lesson in the theme, else first
// lesson of the next theme, else first lesson of the next published course.
func (s *ProgressService) NextContent(ctx context.Context, lessonID string) (*NextContent, error) {
	lesson, err := s.Content.Lesson(ctx, lessonID)
	if err == mongo.ErrNoDocuments {
		return nil, ErrLessonNotFound
	}
	if err != nil {
		return nil, err
	}

	lessons, err := s.Content.LessonsByTheme(ctx, lesson.ThemeID)
	if err != nil {
		return nil, err
	}
	theme, err := s.Content.Theme(ctx, lesson.ThemeID)
	if err != nil {
		return nil, err
	}
	for i := range lessons {
		if lessons[i].ID == lessonID && i+1 < len(lessons) {
			return nextContentFor(theme.CourseID, &lessons[i+1]), nil
		}
	}

	themes, err := s.Content.ThemesByCourse(ctx, theme.CourseID)
	if err != nil {
		return nil, err
	}
	idx := -1
	for i := range themes {
		if themes[i].ID == theme.ID {
			idx = i
			break
		}
	}
	for i := idx + 1; i >= 0 && i < len(themes); i++ {
		next, err := s.firstLessonOf(ctx, theme.CourseID, themes[i].ID)
		if err != nil {
			return nil, err
		}
		if next != nil {
			return next, nil
		}
	}

	courses, err := s.Content.PublishedCourses(ctx)
	if err != nil {
		return nil, err
	}
	cidx := -1
	for i := range courses {
		if courses[i].ID == theme.CourseID {
			cidx = i
			break
		}
	}
	for i := cidx + 1; i >= 0 && i < len(courses); i++ {
		nextThemes, err := s.Content.ThemesByCourse(ctx, courses[i].ID)
		if err != nil {
			return nil, err
		}
		for j := range nextThemes {
			next, err := s.firstLessonOf(ctx, courses[i].ID, nextThemes[j].ID)
			if err != nil {
				return nil, err
			}
			if next != nil {
				return next, nil
			}
		}
	}
	return nil, nil
}

func (s *ProgressService) firstLessonOf(ctx context.Context, courseID, themeID string) (*NextContent, error) {
	lessons, err := s.Content.LessonsByTheme(ctx, themeID)
	if err != nil {
		return nil, err
	}
	if len(lessons) == 0 {
		return nil, nil
	}
	return nextContentFor(courseID, &lessons[0]), nil
}

func nextContentFor(courseID string, lesson *models.Lesson) *NextContent {
	return &NextContent{
		CourseID:    courseID,
		ThemeID:     lesson.ThemeID,
		LessonID:    lesson.ID,
		LessonTitle: lesson.Title,
	}
}

// GetProgress returns the learner's whole progress document.
func (s *ProgressService) GetProgress(ctx context.Context, userID string) (*models.UserProgress, error) {
	progress, err := s.Progress.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		return nil, ErrNotEnrolled
	}
	return progress, nil
}

func (s *ProgressService) GetCourseProgress(ctx context.Context, userID, courseID string) (*models.CourseProgress, error) {
	progress, err := s.GetProgress(ctx, userID)
	if err != nil {
		return nil, err
	}
	cp := progress.Course(courseID)
	if cp == nil {
		return nil, ErrNotEnrolled
	}
	return cp, nil
}

// Recalculate repairs derived percentages, statuses and global counters
// from ground-truth lesson statuses. Lesson statuses and the enrollment
// snapshot are never touched.
func (s *ProgressService) Recalculate(ctx context.Context, userID string) ([]CourseDelta, error) {
	progress, err := s.Progress.FindByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if progress == nil {
		return nil, ErrNotEnrolled
	}

	now := time.Now()
	deltas := make([]CourseDelta, 0, len(progress.Courses))
	totalLessons := 0
	totalCourses := 0
	for i := range progress.Courses {
		cp := &progress.Courses[i]
		delta := CourseDelta{
			CourseID:      cp.CourseID,
			OldPercentage: cp.ProgressPercentage,
			OldStatus:     cp.Status,
		}
		cp.Recompute(now)
		delta.NewPercentage = cp.ProgressPercentage
		delta.NewStatus = cp.Status
		deltas = append(deltas, delta)

		if cp.Status == models.StatusCompleted {
			totalCourses++
		}
		for j := range cp.Themes {
			for k := range cp.Themes[j].Lessons {
				if cp.Themes[j].Lessons[k].Status == models.StatusCompleted {
					totalLessons++
				}
			}
		}
	}
	progress.TotalLessonsCompleted = totalLessons
	progress.TotalCoursesCompleted = totalCourses
	progress.UpdatedAt = now

	if err := s.Progress.Replace(ctx, progress); err != nil {
		return nil, err
	}
	return deltas, nil
}
