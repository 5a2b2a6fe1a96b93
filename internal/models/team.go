package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// TeamMembership links an employee to the manager allowed to give them feedback.
type TeamMembership struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"id"`
	ManagerID  bson.ObjectID `bson:"manager_id" json:"manager_id"`
	EmployeeID bson.ObjectID `bson:"employee_id" json:"employee_id"`
	CreatedAt  time.Time     `bson:"created_at" json:"created_at"`
}
