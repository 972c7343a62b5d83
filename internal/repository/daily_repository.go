package repository

import (
	"context"

	"progress-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type DailyRepository struct {
	Col *mongo.Collection
}

func NewDailyRepository(db *mongo.Database) *DailyRepository {
	return &DailyRepository{Col: db.Collection("daily_progress")}
}

// FindByUser returns the learner's daily counter, zero-valued when absent.
func (r *DailyRepository) FindByUser(ctx context.Context, userID string) (*models.DailyProgress, error) {
	var daily models.DailyProgress
	err := r.Col.FindOne(ctx, bson.M{"_id": userID}).Decode(&daily)
	if err == mongo.ErrNoDocuments {
		return &models.DailyProgress{UserID: userID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &daily, nil
}

func (r *DailyRepository) Save(ctx context.Context, daily *models.DailyProgress) error {
	opts := options.Replace().SetUpsert(true)
	_, err := r.Col.ReplaceOne(ctx, bson.M{"_id": daily.UserID}, daily, opts)
	return err
}
