package rewards

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"progress-service/internal/event"
)

// Transaction types understood by the billing service.
const (
	TypeLesson = "lesson_completion"
	TypeTheme  = "theme_completion"
	TypeCourse = "course_completion"
	TypeStreak = "streak_bonus"
	TypeQuiz   = "quiz_reward"
)

// Fixed bonus amounts per completion tier.
const (
	ThemeBonusTokens  = 50
	ThemeBonusXP      = 100
	CourseBonusTokens = 200
	CourseBonusXP     = 500
	StreakBonusTokens = 30
	StreakBonusXP     = 60
)

// StreakBonusInterval grants the streak bonus on every Nth consecutive day.
const StreakBonusInterval = 3

type GrantRequest struct {
	UserID        string `json:"user_id"`
	Amount        int    `json:"amount"`
	XPAmount      int    `json:"xp_amount"`
	Type          string `json:"type"`
	Description   string `json:"description"`
	ReferenceType string `json:"reference_type"`
	ReferenceID   string `json:"reference_id"`
}

type Transaction struct {
	ID            string    `json:"id"`
	UserID        string    `json:"user_id"`
	Amount        int       `json:"amount"`
	XPAmount      int       `json:"xp_amount"`
	Type          string    `json:"type"`
	Description   string    `json:"description"`
	ReferenceType string    `json:"reference_type"`
	ReferenceID   string    `json:"reference_id"`
	CreatedAt     time.Time `json:"created_at"`
}

// Ledger grants token/XP rewards. Implementations must be safe to call on a
// completion path whose success does not depend on the grant landing.
type Ledger interface {
	Grant(ctx context.Context, req GrantRequest) (*Transaction, error)
}

// AMQPLedger hands grants to the billing service over the topic exchange.
// The transaction record is assembled locally; the billing consumer is the
// system of record for balances.
type AMQPLedger struct {
	Publisher *event.EventPublisher
}

func NewAMQPLedger(publisher *event.EventPublisher) *AMQPLedger {
	return &AMQPLedger{Publisher: publisher}
}

func (l *AMQPLedger) Grant(ctx context.Context, req GrantRequest) (*Transaction, error) {
	tx := &Transaction{
		ID:            uuid.NewString(),
		UserID:        req.UserID,
		Amount:        req.Amount,
		XPAmount:      req.XPAmount,
		Type:          req.Type,
		Description:   req.Description,
		ReferenceType: req.ReferenceType,
		ReferenceID:   req.ReferenceID,
		CreatedAt:     time.Now(),
	}
	if err := l.Publisher.Publish("reward.grant", tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// NopLedger is used when RabbitMQ is not configured; grants are logged and
// dropped.
type NopLedger struct{}

func (NopLedger) Grant(ctx context.Context, req GrantRequest) (*Transaction, error) {
	log.Printf("[REWARDS] no ledger configured, dropping grant %s %d tokens for user %s", req.Type, req.Amount, req.UserID)
	return &Transaction{
		ID:        uuid.NewString(),
		UserID:    req.UserID,
		Amount:    req.Amount,
		XPAmount:  req.XPAmount,
		Type:      req.Type,
		CreatedAt: time.Now(),
	}, nil
}
