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

type SessionRepo struct {
	collection *mongo.Collection
}

func NewSessionRepo(db *database.Mongo) *SessionRepo {
	return &SessionRepo{
		collection: db.Collection("sessions"),
	}
}

func (r *SessionRepo) Create(ctx context.Context, s *models.Session) error {
	s.CreatedAt = time.Now()
	result, err := r.collection.InsertOne(ctx, s)
	if err != nil {
		return classify(err)
	}
	s.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func (r *SessionRepo) FindByTokenID(ctx context.Context, tokenID string) (*models.Session, error) {
	var s models.Session
	err := r.collection.FindOne(ctx, bson.M{"token_id": tokenID}).Decode(&s)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, classify(err)
	}
	return &s, nil
}

func (r *SessionRepo) Revoke(ctx context.Context, tokenID string) error {
	_, err := r.collection.UpdateOne(ctx, bson.M{"token_id": tokenID}, bson.M{
		"$set": bson.M{"revoked": true},
	})
	return classify(err)
}

// EnsureIndexes creates necessary indexes for the sessions collection
func (r *SessionRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "token_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "user_id", Value: 1}},
		},
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0), // TTL: expired sessions are dropped by Mongo
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
