package repository

import (
	"context"
	"time"

	"feedback-backend/internal/database"
	"feedback-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type CommentRepo struct {
	collection *mongo.Collection
}

func NewCommentRepo(db *database.Mongo) *CommentRepo {
	return &CommentRepo{
		collection: db.Collection("comments"),
	}
}

func (r *CommentRepo) Create(ctx context.Context, c *models.Comment) error {
	c.CreatedAt = time.Now()
	result, err := r.collection.InsertOne(ctx, c)
	if err != nil {
		return classify(err)
	}
	c.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

// ListByFeedback returns the thread oldest first.
func (r *CommentRepo) ListByFeedback(ctx context.Context, feedbackID bson.ObjectID) ([]models.Comment, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"feedback_id": feedbackID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, classify(err)
	}
	var out []models.Comment
	if err := cursor.All(ctx, &out); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (r *CommentRepo) DeleteByFeedback(ctx context.Context, feedbackID bson.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"feedback_id": feedbackID})
	if err != nil {
		return 0, classify(err)
	}
	return result.DeletedCount, nil
}

// EnsureIndexes creates necessary indexes for the comments collection
func (r *CommentRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "feedback_id", Value: 1}, {Key: "created_at", Value: 1}},
	})
	return err
}
