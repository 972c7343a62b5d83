package repository

import (
	"context"

	"progress-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AttemptRepository struct {
	Col *mongo.Collection
}

func NewAttemptRepository(db *mongo.Database) *AttemptRepository {
	return &AttemptRepository{Col: db.Collection("quiz_attempts")}
}

func (r *AttemptRepository) FindByID(ctx context.Context, id string) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	err := r.Col.FindOne(ctx, bson.M{"_id": id}).Decode(&attempt)
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

// FindInProgress returns the learner's open attempt for a quiz, or nil when
// there is none. At most one can exist.
func (r *AttemptRepository) FindInProgress(ctx context.Context, userID, quizID string) (*models.QuizAttempt, error) {
	var attempt models.QuizAttempt
	err := r.Col.FindOne(ctx, bson.M{
		"user_id": userID,
		"quiz_id": quizID,
		"status":  models.AttemptInProgress,
	}).Decode(&attempt)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *AttemptRepository) FindByUserAndQuiz(ctx context.Context, userID, quizID string) ([]models.QuizAttempt, error) {
	opts := options.Find().SetSort(bson.D{{Key: "attempt_number", Value: 1}})
	cur, err := r.Col.Find(ctx, bson.M{"user_id": userID, "quiz_id": quizID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var attempts []models.QuizAttempt
	for cur.Next(ctx) {
		var a models.QuizAttempt
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, cur.Err()
}

func (r *AttemptRepository) FindByUser(ctx context.Context, userID string) ([]models.QuizAttempt, error) {
	opts := options.Find().SetSort(bson.D{{Key: "started_at", Value: -1}})
	cur, err := r.Col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var attempts []models.QuizAttempt
	for cur.Next(ctx) {
		var a models.QuizAttempt
		if err := cur.Decode(&a); err != nil {
			return nil, err
		}
		attempts = append(attempts, a)
	}
	return attempts, cur.Err()
}

func (r *AttemptRepository) Create(ctx context.Context, attempt *models.QuizAttempt) error {
	_, err := r.Col.InsertOne(ctx, attempt)
	return err
}

// Replace writes the whole attempt document back in one atomic update.
func (r *AttemptRepository) Replace(ctx context.Context, attempt *models.QuizAttempt) error {
	_, err := r.Col.ReplaceOne(ctx, bson.M{"_id": attempt.ID}, attempt)
	return err
}
