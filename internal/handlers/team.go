package handlers

import (
	"net/http"

	"feedback-backend/internal/workflow"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type TeamHandler struct {
	wf *workflow.Service
}

func NewTeamHandler(wf *workflow.Service) *TeamHandler {
	return &TeamHandler{wf: wf}
}

type TeamMemberRequest struct {
	ManagerID  string `json:"manager_id"`
	EmployeeID string `json:"employee_id"`
}

// --- GET /team ---

func (h *TeamHandler) MyTeam(w http.ResponseWriter, r *http.Request) {
	a := actor(r)
	team, err := h.wf.ListTeam(r.Context(), a, a.UserID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// --- GET /team/{id} ---

func (h *TeamHandler) ListTeam(w http.ResponseWriter, r *http.Request) {
	managerID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	team, err := h.wf.ListTeam(r.Context(), actor(r), managerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, team)
}

// --- GET /team/members/{id} ---

func (h *TeamHandler) ListAvailable(w http.ResponseWriter, r *http.Request) {
	managerID, err := pathID(r, "id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	employees, err := h.wf.ListAvailableEmployees(r.Context(), actor(r), managerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, employees)
}

// --- POST /team ---

func (h *TeamHandler) AddMember(w http.ResponseWriter, r *http.Request) {
	a, employeeID, err := h.decodeMember(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	m, err := h.wf.AddTeamMember(r.Context(), a, a.UserID, employeeID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, m)
}

// --- DELETE /team ---

func (h *TeamHandler) RemoveMember(w http.ResponseWriter, r *http.Request) {
	a, employeeID, err := h.decodeMember(w, r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if err := h.wf.RemoveTeamMember(r.Context(), a, a.UserID, employeeID); err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, messageResponse{Message: "team member removed"})
}

func (h *TeamHandler) decodeMember(w http.ResponseWriter, r *http.Request) (workflow.Actor, bson.ObjectID, error) {
	a := actor(r)
	var req TeamMemberRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return a, bson.ObjectID{}, err
	}
	if err := ensureSelf(a, "manager_id", req.ManagerID); err != nil {
		return a, bson.ObjectID{}, err
	}
	employeeID, err := parseID("employee_id", req.EmployeeID)
	return a, employeeID, err
}
