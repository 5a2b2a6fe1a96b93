package repository

import (
	"context"
	"time"

	"feedback-backend/internal/apperr"
	"feedback-backend/internal/database"
	"feedback-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

type FeedbackRepo struct {
	collection *mongo.Collection
}

func NewFeedbackRepo(db *database.Mongo) *FeedbackRepo {
	return &FeedbackRepo{
		collection: db.Collection("feedbacks"),
	}
}

func (r *FeedbackRepo) Create(ctx context.Context, feedback *models.Feedback) error {
	feedback.CreatedAt = time.Now()
	feedback.UpdatedAt = feedback.CreatedAt
	result, err := r.collection.InsertOne(ctx, feedback)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict("feedback with this idempotency key already exists")
		}
		return classify(err)
	}
	feedback.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func (r *FeedbackRepo) FindByID(ctx context.Context, id bson.ObjectID) (*models.Feedback, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

// FindByIdempotencyKey checks if feedback with this key already exists (duplicate prevention)
func (r *FeedbackRepo) FindByIdempotencyKey(ctx context.Context, managerID bson.ObjectID, key string) (*models.Feedback, error) {
	return r.findOne(ctx, bson.M{"manager_id": managerID, "idempotency_key": key})
}

func (r *FeedbackRepo) findOne(ctx context.Context, filter bson.M) (*models.Feedback, error) {
	var feedback models.Feedback
	err := r.collection.FindOne(ctx, filter).Decode(&feedback)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, classify(err)
	}
	return &feedback, nil
}

// Update overwrites the editable fields of feedback.
func (r *FeedbackRepo) Update(ctx context.Context, feedback *models.Feedback) error {
	feedback.UpdatedAt = time.Now()
	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": feedback.ID}, bson.M{
		"$set": bson.M{
			"strengths":    feedback.Strengths,
			"improvements": feedback.Improvements,
			"sentiment":    feedback.Sentiment,
			"updated_at":   feedback.UpdatedAt,
		},
	})
	if err != nil {
		return classify(err)
	}
	if result.MatchedCount == 0 {
		return apperr.NotFound("feedback not found")
	}
	return nil
}

func (r *FeedbackRepo) Delete(ctx context.Context, id bson.ObjectID) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, classify(err)
	}
	return result.DeletedCount > 0, nil
}

// List returns matching feedback, newest first.
func (r *FeedbackRepo) List(ctx context.Context, filter models.FeedbackFilter) ([]models.Feedback, error) {
	cursor, err := r.collection.Find(ctx, feedbackFilter(filter), options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, classify(err)
	}
	var out []models.Feedback
	if err := cursor.All(ctx, &out); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (r *FeedbackRepo) CountBySentiment(ctx context.Context, filter models.FeedbackFilter) (map[models.Sentiment]int64, error) {
	pipeline := mongo.Pipeline{
		{{Key: "$match", Value: feedbackFilter(filter)}},
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$sentiment"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := r.collection.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, classify(err)
	}
	var rows []struct {
		Sentiment models.Sentiment `bson:"_id"`
		Count     int64            `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, classify(err)
	}
	counts := make(map[models.Sentiment]int64, len(rows))
	for _, row := range rows {
		counts[row.Sentiment] = row.Count
	}
	return counts, nil
}

func feedbackFilter(f models.FeedbackFilter) bson.M {
	filter := bson.M{}
	if !f.ManagerID.IsZero() {
		filter["manager_id"] = f.ManagerID
	}
	if !f.EmployeeID.IsZero() {
		filter["employee_id"] = f.EmployeeID
	}
	return filter
}

// EnsureIndexes creates necessary indexes for the feedbacks collection
func (r *FeedbackRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "manager_id", Value: 1}, {Key: "idempotency_key", Value: 1}},
			Options: options.Index().SetUnique(true).
				SetPartialFilterExpression(bson.M{"idempotency_key": bson.M{"$exists": true}}),
		},
		{
			Keys: bson.D{{Key: "manager_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "employee_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
