package models

import "time"

// DailyProgress caps lesson completions per calendar day. The counter is
// only meaningful for "today": every read normalizes it against the stored
// date before use, so no scheduled reset job exists.
type DailyProgress struct {
	UserID              string     `bson:"_id" json:"user_id"`
	TasksCompletedToday int        `bson:"tasks_completed_today" json:"tasks_completed_today"`
	LastTaskDate        *time.Time `bson:"last_task_date,omitempty" json:"last_task_date,omitempty"`
}

// Normalize resets the counter when the stored date is not today's local
// calendar day. Returns true when a reset happened.
func (d *DailyProgress) Normalize(now time.Time) bool {
	if d.LastTaskDate == nil || SameDay(*d.LastTaskDate, now) {
		return false
	}
	d.TasksCompletedToday = 0
	d.LastTaskDate = nil
	return true
}

// Increment counts one completion for today.
func (d *DailyProgress) Increment(now time.Time) {
	d.Normalize(now)
	d.TasksCompletedToday++
	t := now
	d.LastTaskDate = &t
}
