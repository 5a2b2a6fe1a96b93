package handlers

import (
	"net/http"

	"feedback-backend/internal/models"
	"feedback-backend/internal/workflow"
)

type RequestHandler struct {
	wf *workflow.Service
}

func NewRequestHandler(wf *workflow.Service) *RequestHandler {
	return &RequestHandler{wf: wf}
}

type CreateRequestRequest struct {
	RequesterID     string `json:"requester_id"`
	TargetManagerID string `json:"target_manager_id"`
	Message         string `json:"message"`
	IsAnonymous     bool   `json:"is_anonymous"`
}

type UpdateStatusRequest struct {
	Status models.RequestStatus `json:"status"`
}

// --- POST /feedback/request ---

func (h *RequestHandler) Create(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	var req CreateRequestRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := ensureSelf(a, "requester_id", req.RequesterID); err != nil {
		writeError(w, r, err)
		return
	}
	managerID, err := parseID("target_manager_id", req.TargetManagerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	view, err := h.wf.RequestFeedback(r.Context(), a, workflow.RequestInput{
		TargetManagerID: managerID,
		Message:         req.Message,
		IsAnonymous:     req.IsAnonymous,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, view)
}

// --- PUT /feedback/request/{id} ---

func (h *RequestHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req UpdateStatusRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	updated, err := h.wf.UpdateFeedbackRequestStatus(r.Context(), actor(r), id, req.Status)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

// --- GET /feedback/requests/{id} ---

func (h *RequestHandler) ListForManager(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := h.wf.ListManagerRequests(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// --- GET /feedback/requests/employee/{id} ---

func (h *RequestHandler) ListForEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := h.wf.ListEmployeeRequests(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}
