package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type Comment struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"id"`
	FeedbackID bson.ObjectID `bson:"feedback_id" json:"feedback_id"`
	UserID     bson.ObjectID `bson:"user_id" json:"user_id"`
	Text       string        `bson:"text" json:"text"`
	IsMarkdown bool          `bson:"is_markdown" json:"is_markdown"`
	CreatedAt  time.Time     `bson:"created_at" json:"timestamp"`
}
