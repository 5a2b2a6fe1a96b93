package handlers

import (
	"net/http"

	"feedback-backend/internal/workflow"
)

// DiscussionHandler serves comments and tags on feedback.
type DiscussionHandler struct {
	wf *workflow.Service
}

func NewDiscussionHandler(wf *workflow.Service) *DiscussionHandler {
	return &DiscussionHandler{wf: wf}
}

type AddCommentRequest struct {
	FeedbackID string `json:"feedback_id"`
	UserID     string `json:"user_id"`
	Text       string `json:"text"`
}

type AddTagRequest struct {
	FeedbackID string `json:"feedback_id"`
	TagName    string `json:"tag_name"`
}

// --- POST /comments ---

func (h *DiscussionHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	var req AddCommentRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if err := ensureSelf(a, "user_id", req.UserID); err != nil {
		writeError(w, r, err)
		return
	}
	feedbackID, err := parseID("feedback_id", req.FeedbackID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	c, err := h.wf.AddComment(r.Context(), a, feedbackID, req.Text)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, c)
}

// --- GET /comments/{id} ---

func (h *DiscussionHandler) ListComments(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	comments, err := h.wf.ListComments(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, comments)
}

// --- GET /feedback/tags ---

func (h *DiscussionHandler) SuggestedTags(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.wf.SuggestedTags())
}

// --- GET /feedback/tags/{id} ---

func (h *DiscussionHandler) ListTags(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	tags, err := h.wf.ListTags(r.Context(), actor(r), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, tags)
}

// --- POST /feedback/tags ---

func (h *DiscussionHandler) AddTag(w http.ResponseWriter, r *http.Request) {
	var req AddTagRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	feedbackID, err := parseID("feedback_id", req.FeedbackID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	tag, err := h.wf.AddTag(r.Context(), actor(r), feedbackID, req.TagName)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tag)
}

// --- DELETE /feedback/tags/{id} ---

func (h *DiscussionHandler) DeleteTag(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.wf.DeleteTag(r.Context(), actor(r), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "tag removed"})
}
