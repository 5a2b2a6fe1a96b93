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

type RequestRepo struct {
	collection *mongo.Collection
}

func NewRequestRepo(db *database.Mongo) *RequestRepo {
	return &RequestRepo{
		collection: db.Collection("feedback_requests"),
	}
}

func (r *RequestRepo) Create(ctx context.Context, req *models.FeedbackRequest) error {
	req.CreatedAt = time.Now()
	result, err := r.collection.InsertOne(ctx, req)
	if err != nil {
		return classify(err)
	}
	req.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func (r *RequestRepo) FindByID(ctx context.Context, id bson.ObjectID) (*models.FeedbackRequest, error) {
	var req models.FeedbackRequest
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, classify(err)
	}
	return &req, nil
}

func (r *RequestRepo) ListByTarget(ctx context.Context, managerID bson.ObjectID) ([]models.FeedbackRequest, error) {
	return r.find(ctx, bson.M{"target_manager_id": managerID})
}

func (r *RequestRepo) ListByRequester(ctx context.Context, requesterID bson.ObjectID) ([]models.FeedbackRequest, error) {
	return r.find(ctx, bson.M{"requester_id": requesterID})
}

func (r *RequestRepo) find(ctx context.Context, filter bson.M) ([]models.FeedbackRequest, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, classify(err)
	}
	var out []models.FeedbackRequest
	if err := cursor.All(ctx, &out); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// Transition moves a request from one status to another only if it is still in
// from. It reports false when another writer got there first.
func (r *RequestRepo) Transition(ctx context.Context, id bson.ObjectID, from, to models.RequestStatus, at time.Time) (bool, error) {
	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id, "status": from},
		bson.M{"$set": bson.M{"status": to, "resolved_at": at}},
	)
	if err != nil {
		return false, classify(err)
	}
	return result.MatchedCount == 1, nil
}

// EnsureIndexes creates necessary indexes for the feedback_requests collection
func (r *RequestRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys: bson.D{{Key: "target_manager_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
		{
			Keys: bson.D{{Key: "requester_id", Value: 1}, {Key: "created_at", Value: -1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
