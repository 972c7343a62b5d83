package service

import "errors"

// Hard failures surfaced to the HTTP layer. Policy blocks (daily limit,
// locked content, attempt limits) are not errors; they come back as regular
// responses with a blocked reason.
var (
	ErrQuizNotFound     = errors.New("quiz not found")
	ErrAttemptNotFound  = errors.New("attempt not found")
	ErrCourseNotFound   = errors.New("course not found")
	ErrThemeNotFound    = errors.New("theme not found")
	ErrLessonNotFound   = errors.New("lesson not found")
	ErrNotEnrolled      = errors.New("learner is not enrolled in this course")
	ErrLessonNotTracked = errors.New("lesson is not part of the enrollment snapshot")
	ErrForbidden        = errors.New("attempt belongs to another learner")
	ErrNotInProgress    = errors.New("attempt is not in progress")
	ErrAlreadyCompleted = errors.New("attempt was already completed")
	ErrAttemptExpired   = errors.New("attempt time limit exceeded")
)
