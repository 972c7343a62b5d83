package repository

import (
	"context"

	"progress-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ProgressRepository owns the one-document-per-learner progress aggregate.
// The whole tree is replaced in a single atomic write; the store offers no
// multi-document transactions and the service never needs them.
type ProgressRepository struct {
	Col *mongo.Collection
}

func NewProgressRepository(db *mongo.Database) *ProgressRepository {
	return &ProgressRepository{Col: db.Collection("user_progress")}
}

// FindByUser returns the learner's progress document, or nil when the
// learner has never enrolled in anything.
func (r *ProgressRepository) FindByUser(ctx context.Context, userID string) (*models.UserProgress, error) {
	var progress models.UserProgress
	err := r.Col.FindOne(ctx, bson.M{"_id": userID}).Decode(&progress)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &progress, nil
}

func (r *ProgressRepository) Create(ctx context.Context, progress *models.UserProgress) error {
	_, err := r.Col.InsertOne(ctx, progress)
	return err
}

func (r *ProgressRepository) Replace(ctx context.Context, progress *models.UserProgress) error {
	_, err := r.Col.ReplaceOne(ctx, bson.M{"_id": progress.UserID}, progress)
	return err
}
