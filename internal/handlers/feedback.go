package handlers

import (
	"fmt"
	"net/http"

	"feedback-backend/internal/models"
	"feedback-backend/internal/workflow"
)

type FeedbackHandler struct {
	wf *workflow.Service
}

func NewFeedbackHandler(wf *workflow.Service) *FeedbackHandler {
	return &FeedbackHandler{wf: wf}
}

type SubmitFeedbackRequest struct {
	EmployeeID     string           `json:"employee_id"`
	ManagerID      string           `json:"manager_id"`
	Strengths      string           `json:"strengths"`
	Improvements   string           `json:"improvements"`
	Sentiment      models.Sentiment `json:"sentiment"`
	Tags           []string         `json:"tags"`
	IdempotencyKey string           `json:"idempotency_key"`
}

type EditFeedbackRequest struct {
	Strengths    *string           `json:"strengths"`
	Improvements *string           `json:"improvements"`
	Sentiment    *models.Sentiment `json:"sentiment"`
}

type AcknowledgeRequest struct {
	FeedbackID string `json:"feedback_id"`
	EmployeeID string `json:"employee_id"`
}

// --- POST /feedback ---

func (h *FeedbackHandler) Submit(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	var req SubmitFeedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := ensureSelf(a, "manager_id", req.ManagerID); err != nil {
		writeError(w, r, err)
		return
	}
	employeeID, err := parseID("employee_id", req.EmployeeID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	fb, created, err := h.wf.SubmitFeedback(r.Context(), a, workflow.SubmitInput{
		EmployeeID:     employeeID,
		Strengths:      req.Strengths,
		Improvements:   req.Improvements,
		Sentiment:      req.Sentiment,
		Tags:           req.Tags,
		IdempotencyKey: req.IdempotencyKey,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	writeJSON(w, status, fb)
}

// --- GET /feedback/{id} ---

func (h *FeedbackHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	fb, err := h.wf.GetFeedback(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fb)
}

// --- PUT /feedback/{id} ---

func (h *FeedbackHandler) Edit(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req EditFeedbackRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	fb, err := h.wf.EditFeedback(r.Context(), actor(r), id, workflow.EditInput{
		Strengths:    req.Strengths,
		Improvements: req.Improvements,
		Sentiment:    req.Sentiment,
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, fb)
}

// --- DELETE /feedback/{id} ---

func (h *FeedbackHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.wf.DeleteFeedback(r.Context(), actor(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "feedback deleted"})
}

// --- GET /feedback/employee/{id} ---

func (h *FeedbackHandler) ListForEmployee(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := h.wf.ListEmployeeFeedback(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// --- GET /feedback/manager/{id} ---

func (h *FeedbackHandler) ListForManager(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	list, err := h.wf.ListManagerFeedback(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, list)
}

// --- POST /feedback/acknowledge ---

func (h *FeedbackHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	var req AcknowledgeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := ensureSelf(a, "employee_id", req.EmployeeID); err != nil {
		writeError(w, r, err)
		return
	}
	feedbackID, err := parseID("feedback_id", req.FeedbackID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	ack, created, err := h.wf.AcknowledgeFeedback(r.Context(), a, feedbackID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	status := http.StatusCreated
	if !created {
		status = http.StatusOK
	}
	writeJSON(w, status, ack)
}

// --- GET /feedback/acknowledgements/{id} ---

func (h *FeedbackHandler) ListAcknowledgements(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	acks, err := h.wf.ListAcknowledgements(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, acks)
}

// --- GET /feedback/stats/{id} ---

func (h *FeedbackHandler) ManagerStats(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	stats, err := h.wf.ManagerStats(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// --- GET /feedback/employee/stats/{id} ---

func (h *FeedbackHandler) EmployeeStats(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	stats, err := h.wf.EmployeeStats(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, stats)
}

// --- GET /feedback/export/{id} ---

func (h *FeedbackHandler) Export(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	exp, err := h.wf.ExportFeedback(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", exp.ContentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exp.Filename))
	w.WriteHeader(http.StatusOK)
	w.Write(exp.Body)
}
