package handlers

import (
	"net/http"

	"feedback-backend/internal/models"
	"feedback-backend/internal/workflow"
)

type UserHandler struct {
	wf *workflow.Service
}

func NewUserHandler(wf *workflow.Service) *UserHandler {
	return &UserHandler{wf: wf}
}

// --- GET /users?role= ---

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	role := models.Role(r.URL.Query().Get("role"))
	users, err := h.wf.ListUsers(r.Context(), actor(r), role)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// --- GET /user/{id} ---

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	user, err := h.wf.GetUser(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}
