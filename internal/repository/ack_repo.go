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

type AckRepo struct {
	collection *mongo.Collection
}

func NewAckRepo(db *database.Mongo) *AckRepo {
	return &AckRepo{
		collection: db.Collection("acknowledgements"),
	}
}

// Acknowledge upserts the (feedback, employee) marker and reports whether this
// call created it. Losing a concurrent upsert race surfaces as a duplicate key
// error, which is the same outcome as a repeat.
func (r *AckRepo) Acknowledge(ctx context.Context, ack *models.Acknowledgement) (*models.Acknowledgement, bool, error) {
	key := bson.M{"feedback_id": ack.FeedbackID, "employee_id": ack.EmployeeID}
	result, err := r.collection.UpdateOne(ctx, key,
		bson.M{"$setOnInsert": bson.M{
			"manager_id": ack.ManagerID,
			"created_at": time.Now(),
		}},
		options.UpdateOne().SetUpsert(true),
	)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return nil, false, classify(err)
	}
	created := err == nil && result.UpsertedCount == 1

	var stored models.Acknowledgement
	if err := r.collection.FindOne(ctx, key).Decode(&stored); err != nil {
		return nil, false, classify(err)
	}
	return &stored, created, nil
}

func (r *AckRepo) ListByFeedback(ctx context.Context, feedbackID bson.ObjectID) ([]models.Acknowledgement, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"feedback_id": feedbackID},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, classify(err)
	}
	var out []models.Acknowledgement
	if err := cursor.All(ctx, &out); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// AcknowledgedSet returns which of feedbackIDs carry at least one acknowledgement.
func (r *AckRepo) AcknowledgedSet(ctx context.Context, feedbackIDs []bson.ObjectID) (map[bson.ObjectID]bool, error) {
	set := make(map[bson.ObjectID]bool)
	if len(feedbackIDs) == 0 {
		return set, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"feedback_id": bson.M{"$in": feedbackIDs}},
		options.Find().SetProjection(bson.M{"feedback_id": 1}))
	if err != nil {
		return nil, classify(err)
	}
	var rows []models.Acknowledgement
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, classify(err)
	}
	for _, row := range rows {
		set[row.FeedbackID] = true
	}
	return set, nil
}

func (r *AckRepo) Count(ctx context.Context, filter models.AckFilter) (int64, error) {
	f := bson.M{}
	if !filter.ManagerID.IsZero() {
		f["manager_id"] = filter.ManagerID
	}
	if !filter.EmployeeID.IsZero() {
		f["employee_id"] = filter.EmployeeID
	}
	n, err := r.collection.CountDocuments(ctx, f)
	return n, classify(err)
}

func (r *AckRepo) DeleteByFeedback(ctx context.Context, feedbackID bson.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"feedback_id": feedbackID})
	if err != nil {
		return 0, classify(err)
	}
	return result.DeletedCount, nil
}

// EnsureIndexes creates necessary indexes for the acknowledgements collection
func (r *AckRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "feedback_id", Value: 1}, {Key: "employee_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "employee_id", Value: 1}},
		},
		{
			Keys: bson.D{{Key: "manager_id", Value: 1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
