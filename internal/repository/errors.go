package repository

import (
	"context"
	"errors"

	"feedback-backend/internal/apperr"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// classify tags driver failures the caller may retry as transient.
func classify(err error) error {
	if err == nil {
		return nil
	}
	if mongo.IsTimeout(err) || mongo.IsNetworkError(err) || errors.Is(err, context.DeadlineExceeded) {
		return apperr.Transient(err, "database unavailable")
	}
	return err
}
