package service

import (
	"context"

	"progress-service/internal/models"
)

// Store interfaces cover exactly what the services call on the Mongo
// repositories; tests substitute in-memory fakes.

type QuizStore interface {
	FindByID(ctx context.Context, id string) (*models.Quiz, error)
	// FindByLesson returns nil, nil when the lesson has no quiz of the kind.
	FindByLesson(ctx context.Context, lessonID, kind string) (*models.Quiz, error)
}

type AttemptStore interface {
	FindByID(ctx context.Context, id string) (*models.QuizAttempt, error)
	// FindInProgress returns nil, nil when no open attempt exists.
	FindInProgress(ctx context.Context, userID, quizID string) (*models.QuizAttempt, error)
	FindByUserAndQuiz(ctx context.Context, userID, quizID string) ([]models.QuizAttempt, error)
	FindByUser(ctx context.Context, userID string) ([]models.QuizAttempt, error)
	Create(ctx context.Context, attempt *models.QuizAttempt) error
	Replace(ctx context.Context, attempt *models.QuizAttempt) error
}

type ProgressStore interface {
	// FindByUser returns nil, nil when the learner has no progress document.
	FindByUser(ctx context.Context, userID string) (*models.UserProgress, error)
	Create(ctx context.Context, progress *models.UserProgress) error
	Replace(ctx context.Context, progress *models.UserProgress) error
}

type DailyStore interface {
	FindByUser(ctx context.Context, userID string) (*models.DailyProgress, error)
	Save(ctx context.Context, daily *models.DailyProgress) error
}

type ContentStore interface {
	Course(ctx context.Context, id string) (*models.Course, error)
	Theme(ctx context.Context, id string) (*models.Theme, error)
	Lesson(ctx context.Context, id string) (*models.Lesson, error)
	PublishedCourses(ctx context.Context) ([]models.Course, error)
	ThemesByCourse(ctx context.Context, courseID string) ([]models.Theme, error)
	LessonsByTheme(ctx context.Context, themeID string) ([]models.Lesson, error)
}

// SettingsClient is the system-settings collaborator (redis-cached).
type SettingsClient interface {
	// MaxDailyTasks returns the daily completion cap; 0 means unlimited.
	MaxDailyTasks(ctx context.Context) (int, error)
	LevelMultipliers(ctx context.Context, userID string) (token, xp float64, err error)
}
