package workflow

import (
	"context"

	"feedback-backend/internal/apperr"
	"feedback-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// ManagerStats aggregates the feedback managerID has written.
func (s *Service) ManagerStats(ctx context.Context, actor Actor, managerID bson.ObjectID) (*models.Stats, error) {
	if actor.UserID != managerID {
		return nil, apperr.Authorization("you can only view your own statistics")
	}
	return s.stats(ctx, models.FeedbackFilter{ManagerID: managerID}, models.AckFilter{ManagerID: managerID})
}

// EmployeeStats aggregates the feedback employeeID has received. The employee
// and their current manager may view it.
func (s *Service) EmployeeStats(ctx context.Context, actor Actor, employeeID bson.ObjectID) (*models.Stats, error) {
	if actor.UserID != employeeID {
		ok, err := s.managesEmployee(ctx, actor, employeeID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, apperr.Authorization("you are not allowed to view this employee's statistics")
		}
	}
	return s.stats(ctx, models.FeedbackFilter{EmployeeID: employeeID}, models.AckFilter{EmployeeID: employeeID})
}

func (s *Service) stats(ctx context.Context, fbFilter models.FeedbackFilter, ackFilter models.AckFilter) (*models.Stats, error) {
	counts, err := s.stores.Feedback.CountBySentiment(ctx, fbFilter)
	if err != nil {
		return nil, err
	}
	acked, err := s.stores.Acks.Count(ctx, ackFilter)
	if err != nil {
		return nil, err
	}
	return models.NewStats(counts, acked), nil
}
