package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Sentiment string

const (
	SentimentPositive Sentiment = "positive"
	SentimentNeutral  Sentiment = "neutral"
	SentimentNegative Sentiment = "negative"
)

var Sentiments = []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative}

func (s Sentiment) Valid() bool {
	switch s {
	case SentimentPositive, SentimentNeutral, SentimentNegative:
		return true
	}
	return false
}

type Feedback struct {
	ID             bson.ObjectID `bson:"_id,omitempty" json:"id"`
	ManagerID      bson.ObjectID `bson:"manager_id" json:"manager_id"`
	EmployeeID     bson.ObjectID `bson:"employee_id" json:"employee_id"`
	Strengths      string        `bson:"strengths" json:"strengths"`
	Improvements   string        `bson:"improvements" json:"improvements"`
	Sentiment      Sentiment     `bson:"sentiment" json:"sentiment"`
	IdempotencyKey string        `bson:"idempotency_key,omitempty" json:"-"`
	CreatedAt      time.Time     `bson:"created_at" json:"timestamp"`
	UpdatedAt      time.Time     `bson:"updated_at" json:"updated_at"`
}

// FeedbackFilter selects feedback by author and/or subject. Zero IDs are ignored.
type FeedbackFilter struct {
	ManagerID  bson.ObjectID
	EmployeeID bson.ObjectID
}

func (f FeedbackFilter) Matches(fb *Feedback) bool {
	if !f.ManagerID.IsZero() && fb.ManagerID != f.ManagerID {
		return false
	}
	if !f.EmployeeID.IsZero() && fb.EmployeeID != f.EmployeeID {
		return false
	}
	return true
}
