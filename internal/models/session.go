package models

import (
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Session is the server-side record of an issued bearer token.
type Session struct {
	ID        bson.ObjectID `bson:"_id,omitempty" json:"id"`
	TokenID   string        `bson:"token_id" json:"token_id"`
	UserID    bson.ObjectID `bson:"user_id" json:"user_id"`
	ExpiresAt time.Time     `bson:"expires_at" json:"expires_at"`
	Revoked   bool          `bson:"revoked" json:"revoked"`
	CreatedAt time.Time     `bson:"created_at" json:"created_at"`
}

func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

func (s *Session) Active() bool {
	return !s.Revoked && !s.IsExpired()
}
