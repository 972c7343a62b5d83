package models

import (
	"testing"
	"time"
)

func themeWith(statuses ...string) ThemeProgress {
	tp := ThemeProgress{ThemeID: "t1", Status: StatusNotStarted}
	for i, s := range statuses {
		tp.Lessons = append(tp.Lessons, LessonProgress{LessonID: string(rune('a' + i)), Status: s})
	}
	return tp
}

func TestThemeRecompute(t *testing.T) {
	now := time.Now()
	testCases := []struct {
		name       string
		statuses   []string
		percentage int
		status     string
	}{
		{"none done", []string{StatusNotStarted, StatusNotStarted}, 0, StatusNotStarted},
		{"half done", []string{StatusCompleted, StatusNotStarted}, 50, StatusInProgress},
		{"one of three", []string{StatusCompleted, StatusNotStarted, StatusNotStarted}, 33, StatusInProgress},
		{"two of three", []string{StatusCompleted, StatusCompleted, StatusNotStarted}, 67, StatusInProgress},
		{"all done", []string{StatusCompleted, StatusCompleted}, 100, StatusCompleted},
		{"started not completed", []string{StatusInProgress, StatusNotStarted}, 0, StatusInProgress},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			tp := themeWith(tc.statuses...)
			tp.Recompute(now)
			if tp.ProgressPercentage != tc.percentage {
				t.Errorf("percentage = %d, want %d", tp.ProgressPercentage, tc.percentage)
			}
			if tp.Status != tc.status {
				t.Errorf("status = %s, want %s", tp.Status, tc.status)
			}
		})
	}
}

func TestThemeCompletedIffHundredPercent(t *testing.T) {
	now := time.Now()
	tp := themeWith(StatusCompleted, StatusCompleted, StatusNotStarted)
	tp.Recompute(now)
	if tp.Status == StatusCompleted {
		t.Fatal("67% theme must not be completed")
	}
	tp.Lessons[2].Status = StatusCompleted
	tp.Recompute(now)
	if tp.Status != StatusCompleted || tp.ProgressPercentage != 100 {
		t.Fatalf("got status=%s pct=%d", tp.Status, tp.ProgressPercentage)
	}
	if tp.CompletedAt == nil {
		t.Fatal("completion timestamp not set")
	}
}

func TestCoursePercentageIsMeanOfThemes(t *testing.T) {
	now := time.Now()
	cp := CourseProgress{
		CourseID: "c1",
		Status:   StatusNotStarted,
		Themes: []ThemeProgress{
			// 2 lessons, both done: 100%
			themeWith(StatusCompleted, StatusCompleted),
			// 3 lessons, none done: 0%
			themeWith(StatusNotStarted, StatusNotStarted, StatusNotStarted),
		},
	}
	cp.Recompute(now)
	// Mean of theme percentages, not weighted by lesson count.
	if cp.ProgressPercentage != 50 {
		t.Errorf("course percentage = %d, want 50", cp.ProgressPercentage)
	}
	if cp.Status != StatusInProgress {
		t.Errorf("course status = %s, want in_progress", cp.Status)
	}

	for i := range cp.Themes[1].Lessons {
		cp.Themes[1].Lessons[i].Status = StatusCompleted
	}
	cp.Recompute(now)
	if cp.ProgressPercentage != 100 || cp.Status != StatusCompleted {
		t.Errorf("got pct=%d status=%s", cp.ProgressPercentage, cp.Status)
	}
}

func TestUpdateStreak(t *testing.T) {
	day := func(d int) time.Time {
		return time.Date(2026, 3, d, 15, 30, 0, 0, time.Local)
	}

	t.Run("first ever completion", func(t *testing.T) {
		up := &UserProgress{}
		if changed := up.UpdateStreak(day(10)); !changed || up.CurrentStreak != 1 {
			t.Errorf("changed=%v streak=%d", changed, up.CurrentStreak)
		}
	})

	t.Run("same day is a no-op", func(t *testing.T) {
		up := &UserProgress{}
		up.UpdateStreak(day(10))
		if changed := up.UpdateStreak(day(10).Add(4 * time.Hour)); changed || up.CurrentStreak != 1 {
			t.Errorf("changed=%v streak=%d", changed, up.CurrentStreak)
		}
	})

	t.Run("next day extends", func(t *testing.T) {
		up := &UserProgress{CurrentStreak: 4, LongestStreak: 4}
		d := day(10)
		up.LastStudyDate = &d
		up.UpdateStreak(day(11))
		if up.CurrentStreak != 5 || up.LongestStreak != 5 {
			t.Errorf("streak=%d longest=%d", up.CurrentStreak, up.LongestStreak)
		}
	})

	t.Run("gap resets to one", func(t *testing.T) {
		up := &UserProgress{CurrentStreak: 4, LongestStreak: 9}
		d := day(10)
		up.LastStudyDate = &d
		up.UpdateStreak(day(12))
		if up.CurrentStreak != 1 {
			t.Errorf("streak = %d, want 1", up.CurrentStreak)
		}
		if up.LongestStreak != 9 {
			t.Errorf("longest = %d, want 9", up.LongestStreak)
		}
	})

	t.Run("late evening to early morning still counts", func(t *testing.T) {
		up := &UserProgress{CurrentStreak: 1}
		d := time.Date(2026, 3, 10, 23, 50, 0, 0, time.Local)
		up.LastStudyDate = &d
		up.UpdateStreak(time.Date(2026, 3, 11, 0, 5, 0, 0, time.Local))
		if up.CurrentStreak != 2 {
			t.Errorf("streak = %d, want 2", up.CurrentStreak)
		}
	})
}

func TestDailyProgressNormalize(t *testing.T) {
	now := time.Date(2026, 3, 11, 9, 0, 0, 0, time.Local)
	yesterday := now.AddDate(0, 0, -1)

	d := &DailyProgress{UserID: "u1", TasksCompletedToday: 3, LastTaskDate: &yesterday}
	if !d.Normalize(now) || d.TasksCompletedToday != 0 {
		t.Errorf("stale counter not reset: %+v", d)
	}

	d = &DailyProgress{UserID: "u1", TasksCompletedToday: 3, LastTaskDate: &now}
	if d.Normalize(now.Add(time.Hour)) || d.TasksCompletedToday != 3 {
		t.Errorf("same-day counter must survive: %+v", d)
	}

	d = &DailyProgress{UserID: "u1", TasksCompletedToday: 2, LastTaskDate: &yesterday}
	d.Increment(now)
	if d.TasksCompletedToday != 1 {
		t.Errorf("increment after rollover = %d, want 1", d.TasksCompletedToday)
	}
}
