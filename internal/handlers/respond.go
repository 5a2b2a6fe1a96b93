package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"feedback-backend/internal/apperr"
	"feedback-backend/internal/middleware"
	"feedback-backend/internal/workflow"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/v2/bson"
)

const maxBodyBytes = 1 << 20

type errorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

type messageResponse struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// writeError maps err onto its status. Unclassified errors are logged and
// reported as a generic 500.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	msg := err.Error()
	if status == http.StatusInternalServerError {
		log.Printf("❌ %s %s: %v", r.Method, r.URL.Path, err)
		msg = "internal server error"
	} else if status == http.StatusServiceUnavailable {
		log.Printf("⚠️  %s %s: %v", r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, errorResponse{Error: msg, Code: apperr.CodeOf(err)})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Validation("request body too large")
		}
		return apperr.Validation("invalid request body")
	}
	return nil
}

// actor returns the identity JWTAuth attached to r.
func actor(r *http.Request) workflow.Actor {
	p := middleware.PrincipalFrom(r.Context())
	if p == nil {
		return workflow.Actor{}
	}
	return p.Actor()
}

func parseID(field, raw string) (bson.ObjectID, error) {
	if raw == "" {
		return bson.ObjectID{}, apperr.Validation("%s is required", field)
	}
	id, err := bson.ObjectIDFromHex(raw)
	if err != nil {
		return bson.ObjectID{}, apperr.Validation("%s is not a valid id", field)
	}
	return id, nil
}

func pathID(r *http.Request, name string) (bson.ObjectID, error) {
	return parseID(name, chi.URLParam(r, name))
}

// ensureSelf checks an optional identity field in a request body against the
// signed-in user.
func ensureSelf(a workflow.Actor, field, raw string) error {
	if raw == "" {
		return nil
	}
	id, err := parseID(field, raw)
	if err != nil {
		return err
	}
	if id != a.UserID {
		return apperr.Authorization("%s must match the signed-in user", field)
	}
	return nil
}
