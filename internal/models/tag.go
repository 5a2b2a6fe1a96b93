package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

const MaxTagLength = 50

var SuggestedTags = []string{
	"Communication", "Leadership", "Teamwork", "Problem Solving",
	"Time Management", "Technical Skills", "Creativity", "Adaptability",
	"Initiative", "Quality", "Collaboration", "Innovation",
}

type Tag struct {
	ID         bson.ObjectID `bson:"_id,omitempty" json:"id"`
	FeedbackID bson.ObjectID `bson:"feedback_id" json:"feedback_id"`
	TagName    string        `bson:"tag_name" json:"tag_name"`
	NameKey    string        `bson:"name_key" json:"-"`
	CreatedBy  bson.ObjectID `bson:"created_by" json:"created_by"`
	CreatedAt  time.Time     `bson:"created_at" json:"created_at"`
}
