package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestDeclined RequestStatus = "declined"
)

// Terminal reports whether s is a resolution a pending request may move to.
func (s RequestStatus) Terminal() bool {
	return s == RequestApproved || s == RequestDeclined
}

// FeedbackRequest is an employee's ask for feedback from a manager.
// RequesterID is always stored, even for anonymous requests.
type FeedbackRequest struct {
	ID              bson.ObjectID `bson:"_id,omitempty" json:"id"`
	RequesterID     bson.ObjectID `bson:"requester_id" json:"requester_id"`
	TargetManagerID bson.ObjectID `bson:"target_manager_id" json:"target_manager_id"`
	Message         string        `bson:"message" json:"message"`
	IsAnonymous     bool          `bson:"is_anonymous" json:"is_anonymous"`
	Status          RequestStatus `bson:"status" json:"status"`
	CreatedAt       time.Time     `bson:"created_at" json:"timestamp"`
	ResolvedAt      *time.Time    `bson:"resolved_at,omitempty" json:"resolved_at,omitempty"`
}
