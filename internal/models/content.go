package models

import "time"

// Catalog documents are owned by the admin content service; this service
// reads them and never writes.

type Course struct {
	ID          string    `bson:"_id,omitempty" json:"id"`
	Title       string    `bson:"title" json:"title"`
	Description string    `bson:"description" json:"description"`
	Order       int       `bson:"order" json:"order"`
	Published   bool      `bson:"published" json:"published"`
	CreatedAt   time.Time `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time `bson:"updated_at" json:"updated_at"`
}

type Theme struct {
	ID                         string `bson:"_id,omitempty" json:"id"`
	CourseID                   string `bson:"course_id" json:"course_id"`
	Title                      string `bson:"title" json:"title"`
	Order                      int    `bson:"order" json:"order"`
	RequirePreviousCompletion  bool   `bson:"require_previous_completion" json:"require_previous_completion"`
	UnlockThresholdPercentage  int    `bson:"unlock_threshold_percentage" json:"unlock_threshold_percentage"`
}

// UnlockThreshold returns the configured threshold, defaulting to 100 when
// the catalog document carries no value.
func (t *Theme) UnlockThreshold() int {
	if t.UnlockThresholdPercentage <= 0 {
		return 100
	}
	return t.UnlockThresholdPercentage
}

type Lesson struct {
	ID                        string `bson:"_id,omitempty" json:"id"`
	ThemeID                   string `bson:"theme_id" json:"theme_id"`
	Title                     string `bson:"title" json:"title"`
	Order                     int    `bson:"order" json:"order"`
	IsPreview                 bool   `bson:"is_preview" json:"is_preview"`
	RequirePreviousCompletion bool   `bson:"require_previous_completion" json:"require_previous_completion"`
	TokenReward               int    `bson:"token_reward" json:"token_reward"`
	XPReward                  int    `bson:"xp_reward" json:"xp_reward"`
}
