package memstore

import (
	"context"
	"time"

	"feedback-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type RequestRepo struct{ s *Store }

func (r *RequestRepo) Create(ctx context.Context, req *models.FeedbackRequest) error {
	defer r.s.lock(ctx)()
	req.ID = bson.NewObjectID()
	req.CreatedAt = r.s.now()
	r.s.d.requests[req.ID] = *req
	return nil
}

func (r *RequestRepo) FindByID(ctx context.Context, id bson.ObjectID) (*models.FeedbackRequest, error) {
	defer r.s.lock(ctx)()
	req, ok := r.s.d.requests[id]
	if !ok {
		return nil, nil
	}
	return &req, nil
}

func (r *RequestRepo) ListByTarget(ctx context.Context, managerID bson.ObjectID) ([]models.FeedbackRequest, error) {
	defer r.s.lock(ctx)()
	return r.list(func(req *models.FeedbackRequest) bool { return req.TargetManagerID == managerID }), nil
}

func (r *RequestRepo) ListByRequester(ctx context.Context, requesterID bson.ObjectID) ([]models.FeedbackRequest, error) {
	defer r.s.lock(ctx)()
	return r.list(func(req *models.FeedbackRequest) bool { return req.RequesterID == requesterID }), nil
}

func (r *RequestRepo) list(keep func(*models.FeedbackRequest) bool) []models.FeedbackRequest {
	return sorted(r.s.d.requests, keep,
		func(req *models.FeedbackRequest) (time.Time, bson.ObjectID) { return req.CreatedAt, req.ID },
		true)
}

func (r *RequestRepo) Transition(ctx context.Context, id bson.ObjectID, from, to models.RequestStatus, at time.Time) (bool, error) {
	defer r.s.lock(ctx)()
	req, ok := r.s.d.requests[id]
	if !ok || req.Status != from {
		return false, nil
	}
	req.Status = to
	req.ResolvedAt = &at
	r.s.d.requests[id] = req
	return true, nil
}
