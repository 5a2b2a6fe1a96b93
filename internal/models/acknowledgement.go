package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Acknowledgement marks that an employee has seen a feedback entry. ManagerID is
// copied from the feedback so manager statistics need no join.
type Acknowledgement struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"id"`
	FeedbackID bson.ObjectID `bson:"feedback_id" json:"feedback_id"`
	EmployeeID bson.ObjectID `bson:"employee_id" json:"employee_id"`
	ManagerID  bson.ObjectID `bson:"manager_id" json:"-"`
	CreatedAt  time.Time     `bson:"created_at" json:"timestamp"`
}

type AckFilter struct {
	ManagerID  bson.ObjectID
	EmployeeID bson.ObjectID
}

func (f AckFilter) Matches(a *Acknowledgement) bool {
	if !f.ManagerID.IsZero() && a.ManagerID != f.ManagerID {
		return false
	}
	if !f.EmployeeID.IsZero() && a.EmployeeID != f.EmployeeID {
		return false
	}
	return true
}
