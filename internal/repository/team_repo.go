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

type TeamRepo struct {
	collection *mongo.Collection
}

func NewTeamRepo(db *database.Mongo) *TeamRepo {
	return &TeamRepo{
		collection: db.Collection("team_memberships"),
	}
}

// Add inserts a membership. The unique employee index makes a second team for
// the same employee a conflict.
func (r *TeamRepo) Add(ctx context.Context, m *models.TeamMembership) error {
	m.CreatedAt = time.Now()
	result, err := r.collection.InsertOne(ctx, m)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return apperr.Conflict("employee is already on a team")
		}
		return classify(err)
	}
	m.ID = result.InsertedID.(bson.ObjectID)
	return nil
}

func (r *TeamRepo) Remove(ctx context.Context, managerID, employeeID bson.ObjectID) (bool, error) {
	result, err := r.collection.DeleteOne(ctx, bson.M{"manager_id": managerID, "employee_id": employeeID})
	if err != nil {
		return false, classify(err)
	}
	return result.DeletedCount > 0, nil
}

func (r *TeamRepo) FindByEmployee(ctx context.Context, employeeID bson.ObjectID) (*models.TeamMembership, error) {
	var m models.TeamMembership
	err := r.collection.FindOne(ctx, bson.M{"employee_id": employeeID}).Decode(&m)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, classify(err)
	}
	return &m, nil
}

func (r *TeamRepo) ListByManager(ctx context.Context, managerID bson.ObjectID) ([]models.TeamMembership, error) {
	return r.find(ctx, bson.M{"manager_id": managerID})
}

func (r *TeamRepo) ListAll(ctx context.Context) ([]models.TeamMembership, error) {
	return r.find(ctx, bson.M{})
}

func (r *TeamRepo) find(ctx context.Context, filter bson.M) ([]models.TeamMembership, error) {
	cursor, err := r.collection.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}}))
	if err != nil {
		return nil, classify(err)
	}
	var out []models.TeamMembership
	if err := cursor.All(ctx, &out); err != nil {
		return nil, classify(err)
	}
	return out, nil
}

// EnsureIndexes creates necessary indexes for the team_memberships collection
func (r *TeamRepo) EnsureIndexes(ctx context.Context) error {
	indexes := []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "employee_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys: bson.D{{Key: "manager_id", Value: 1}},
		},
	}
	_, err := r.collection.Indexes().CreateMany(ctx, indexes)
	return err
}
