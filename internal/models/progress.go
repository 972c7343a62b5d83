package models

import (
	"math"
	"time"
)

const (
	StatusNotStarted = "not_started"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
)

// LessonProgress is the ground truth of the tree; theme and course
// percentages and statuses are always derived from it.
type LessonProgress struct {
	LessonID    string     `bson:"lesson_id" json:"lesson_id"`
	Status      string     `bson:"status" json:"status"`
	CompletedAt *time.Time `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
}

type ThemeProgress struct {
	ThemeID            string           `bson:"theme_id" json:"theme_id"`
	Status             string           `bson:"status" json:"status"`
	ProgressPercentage int              `bson:"progress_percentage" json:"progress_percentage"`
	CompletedAt        *time.Time       `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	Lessons            []LessonProgress `bson:"lessons" json:"lessons"`
}

type CourseProgress struct {
	CourseID           string          `bson:"course_id" json:"course_id"`
	Status             string          `bson:"status" json:"status"`
	ProgressPercentage int             `bson:"progress_percentage" json:"progress_percentage"`
	EnrolledAt         time.Time       `bson:"enrolled_at" json:"enrolled_at"`
	CompletedAt        *time.Time      `bson:"completed_at,omitempty" json:"completed_at,omitempty"`
	Themes             []ThemeProgress `bson:"themes" json:"themes"`
}

// UserProgress is one document per learner; the whole tree is mutated
// through this aggregate and persisted in a single write.
type UserProgress struct {
	UserID                string           `bson:"_id" json:"user_id"`
	Courses               []CourseProgress `bson:"courses" json:"courses"`
	TotalLessonsCompleted int              `bson:"total_lessons_completed" json:"total_lessons_completed"`
	TotalCoursesCompleted int              `bson:"total_courses_completed" json:"total_courses_completed"`
	CurrentStreak         int              `bson:"current_streak" json:"current_streak"`
	LongestStreak         int              `bson:"longest_streak" json:"longest_streak"`
	LastStudyDate         *time.Time       `bson:"last_study_date,omitempty" json:"last_study_date,omitempty"`
	CreatedAt             time.Time        `bson:"created_at" json:"created_at"`
	UpdatedAt             time.Time        `bson:"updated_at" json:"updated_at"`
}

func roundPercent(completed, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(100 * float64(completed) / float64(total)))
}

// Recompute derives the theme percentage and status from lesson statuses.
// Status only moves forward.
func (tp *ThemeProgress) Recompute(now time.Time) {
	completed := 0
	started := false
	for i := range tp.Lessons {
		switch tp.Lessons[i].Status {
		case StatusCompleted:
			completed++
			started = true
		case StatusInProgress:
			started = true
		}
	}
	tp.ProgressPercentage = roundPercent(completed, len(tp.Lessons))
	if tp.ProgressPercentage == 100 && len(tp.Lessons) > 0 {
		if tp.Status != StatusCompleted {
			tp.Status = StatusCompleted
			t := now
			tp.CompletedAt = &t
		}
	} else if (started || completed > 0) && tp.Status == StatusNotStarted {
		tp.Status = StatusInProgress
	}
}

// Recompute derives the course percentage as the unweighted mean of theme
// percentages and the course status from theme statuses.
func (cp *CourseProgress) Recompute(now time.Time) {
	if len(cp.Themes) == 0 {
		cp.ProgressPercentage = 0
		return
	}
	sum := 0
	allCompleted := true
	anyStarted := false
	for i := range cp.Themes {
		cp.Themes[i].Recompute(now)
		sum += cp.Themes[i].ProgressPercentage
		if cp.Themes[i].Status != StatusCompleted {
			allCompleted = false
		}
		if cp.Themes[i].Status != StatusNotStarted {
			anyStarted = true
		}
	}
	cp.ProgressPercentage = int(math.Round(float64(sum) / float64(len(cp.Themes))))
	if allCompleted {
		if cp.Status != StatusCompleted {
			cp.Status = StatusCompleted
			t := now
			cp.CompletedAt = &t
		}
	} else if anyStarted && cp.Status == StatusNotStarted {
		cp.Status = StatusInProgress
	}
}

// Course returns the learner's progress for a course, or nil when not
// enrolled.
func (up *UserProgress) Course(courseID string) *CourseProgress {
	for i := range up.Courses {
		if up.Courses[i].CourseID == courseID {
			return &up.Courses[i]
		}
	}
	return nil
}

func (cp *CourseProgress) Theme(themeID string) *ThemeProgress {
	for i := range cp.Themes {
		if cp.Themes[i].ThemeID == themeID {
			return &cp.Themes[i]
		}
	}
	return nil
}

func (tp *ThemeProgress) Lesson(lessonID string) *LessonProgress {
	for i := range tp.Lessons {
		if tp.Lessons[i].LessonID == lessonID {
			return &tp.Lessons[i]
		}
	}
	return nil
}

// FindLesson walks the whole tree for a lesson.
func (up *UserProgress) FindLesson(lessonID string) (*CourseProgress, *ThemeProgress, *LessonProgress) {
	for i := range up.Courses {
		for j := range up.Courses[i].Themes {
			if lp := up.Courses[i].Themes[j].Lesson(lessonID); lp != nil {
				return &up.Courses[i], &up.Courses[i].Themes[j], lp
			}
		}
	}
	return nil, nil, nil
}

// midnight truncates an instant to its local calendar day.
func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// SameDay reports whether two instants fall on the same local calendar day.
func SameDay(a, b time.Time) bool {
	return midnight(a).Equal(midnight(b))
}

// UpdateStreak applies the consecutive-study-day rule for a completion at
// now. It returns true when the streak value changed (extended or reset); a
// second completion on the same day leaves it untouched.
func (up *UserProgress) UpdateStreak(now time.Time) bool {
	today := midnight(now)
	changed := false
	switch {
	case up.LastStudyDate == nil:
		up.CurrentStreak = 1
		changed = true
	case SameDay(*up.LastStudyDate, now):
		// already studied today
	case midnight(*up.LastStudyDate).AddDate(0, 0, 1).Equal(today):
		up.CurrentStreak++
		changed = true
	default:
		up.CurrentStreak = 1
		changed = true
	}
	if up.CurrentStreak > up.LongestStreak {
		up.LongestStreak = up.CurrentStreak
	}
	up.LastStudyDate = &today
	return changed
}
