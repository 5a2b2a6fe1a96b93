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

type TagRepo struct {
	collection *mongo.Collection
}

func NewTagRepo(db *database.Mongo) *TagRepo {
	return &TagRepo{
		collection: db.Collection("tags"),
	}
}

func (r *TagRepo) Create(ctx context.Context, tag *models.Tag) error {
	tag.CreatedAt = time.Now()
	result, err := r.collection.InsertOne(ctx, tag)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict("tag %q already exists on this feedback", tag.TagName)
		}
		return classify(err)
	}
	tag.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func (r *TagRepo) FindByID(ctx context.Context, id bson.ObjectID) (*models.Tag, error) {
	var tag models.Tag
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&tag)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, classify(err)
	}
	return &tag, nil
}

// ListByFeedback returns tags for any of feedbackIDs, oldest first.
func (r *TagRepo) ListByFeedback(ctx context.Context, feedbackIDs ...bson.ObjectID) ([]models.Tag, error) {
	if len(feedbackIDs) == 0 {
		return nil, nil
	}
	cursor, err := r.collection.Find(ctx, bson.M{"feedback_id": bson.M{"$in": feedbackIDs}},
		options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, classify(err)
	}
	var out []models.Tag
	if err := cursor.All(ctx, &out); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

func (r *TagRepo) Delete(ctx context.Context, id bson.ObjectID) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, classify(err)
	}
	return result.DeletedCount > 0, nil
}

func (r *TagRepo) DeleteByFeedback(ctx context.Context, feedbackID bson.ObjectID) (int64, error) {
	result, err := r.collection.DeleteMany(ctx, bson.M{"feedback_id": feedbackID})
	if err != nil {
		return 0, classify(err)
	}
	return result.DeletedCount, nil
}

// EnsureIndexes creates necessary indexes for the tags collection
func (r *TagRepo) EnsureIndexes(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "feedback_id", Value: 1}, {Key: "name_key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	return err
}
