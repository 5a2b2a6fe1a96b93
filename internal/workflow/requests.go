package workflow

import (
	"context"
	"strings"
	"time"

	"feedback-backend/internal/apperr"
	"feedback-backend/internal/models"
	"feedback-backend/internal/notify"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// AnonymousName replaces the requester's name in a manager's view of an
// anonymous request.
const AnonymousName = "Anonymous"

// RequestView is a feedback request as one participant sees it. RequesterID is
// nil when the viewer may not learn who asked.
type RequestView struct {
	ID              bson.ObjectID        `json:"id"`
	RequesterID     *bson.ObjectID       `json:"requester_id,omitempty"`
	RequesterName   string               `json:"requester_name"`
	TargetManagerID bson.ObjectID        `json:"target_manager_id"`
	ManagerName     string               `json:"manager_name,omitempty"`
	Message         string               `json:"message"`
	IsAnonymous     bool                 `json:"is_anonymous"`
	Status          models.RequestStatus `json:"status"`
	CreatedAt       time.Time            `json:"timestamp"`
	ResolvedAt      *time.Time           `json:"resolved_at,omitempty"`
}

type RequestInput struct {
	TargetManagerID bson.ObjectID
	Message         string
	IsAnonymous     bool
}

// RequestFeedback lets an employee ask a manager for feedback. The request
// starts pending.
func (s *Service) RequestFeedback(ctx context.Context, actor Actor, in RequestInput) (*RequestView, error) {
	if !actor.IsEmployee() {
		return nil, apperr.Authorization("only employees can request feedback")
	}
	manager, err := s.stores.Users.FindByID(ctx, in.TargetManagerID)
	if err != nil {
		return nil, err
	}
	if manager == nil {
		return nil, apperr.NotFound("manager not found")
	}
	if manager.Role != models.RoleManager {
		return nil, apperr.Validation("feedback can only be requested from a manager")
	}

	req := &models.FeedbackRequest{
		RequesterID:     actor.UserID,
		TargetManagerID: manager.ID,
		Message:         strings.TrimSpace(in.Message),
		IsAnonymous:     in.IsAnonymous,
		Status:          models.RequestPending,
	}
	if err := s.stores.Requests.Create(ctx, req); err != nil {
		return nil, err
	}

	ev := notify.Event{
		Type:        notify.FeedbackRequested,
		RequestID:   req.ID.Hex(),
		RecipientID: manager.ID.Hex(),
	}
	if !req.IsAnonymous {
		ev.ActorID = actor.UserID.Hex()
	}
	s.emit(ev)

	views, err := s.requesterViews(ctx, []models.FeedbackRequest{*req})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// UpdateFeedbackRequestStatus resolves a pending request. Resolution happens
// at most once; every later attempt is an invalid transition. The result is
// the manager's view, so an anonymous requester stays hidden.
func (s *Service) UpdateFeedbackRequestStatus(ctx context.Context, actor Actor, id bson.ObjectID, status models.RequestStatus) (*RequestView, error) {
	req, err := s.stores.Requests.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, apperr.NotFound("feedback request not found")
	}
	if !status.Terminal() || req.Status != models.RequestPending {
		return nil, apperr.InvalidTransition(string(req.Status), string(status))
	}
	if actor.UserID != req.TargetManagerID {
		return nil, apperr.Authorization("only the requested manager can resolve this request")
	}

	at := s.now()
	won, err := s.stores.Requests.Transition(ctx, id, models.RequestPending, status, at)
	if err != nil {
		return nil, err
	}
	if !won {
		current, err := s.stores.Requests.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		from := models.RequestStatus("unknown")
		if current != nil {
			from = current.Status
		}
		return nil, apperr.InvalidTransition(string(from), string(status))
	}

	req.Status = status
	req.ResolvedAt = &at
	s.emit(notify.Event{
		Type:        notify.RequestResolved,
		RequestID:   req.ID.Hex(),
		ActorID:     actor.UserID.Hex(),
		RecipientID: req.RequesterID.Hex(),
		Detail:      string(status),
	})
	views, err := s.managerViews(ctx, []models.FeedbackRequest{*req})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// ListManagerRequests returns requests addressed to managerID, newest first,
// with the identity of anonymous requesters withheld.
func (s *Service) ListManagerRequests(ctx context.Context, actor Actor, managerID bson.ObjectID) ([]RequestView, error) {
	if actor.UserID != managerID {
		return nil, apperr.Authorization("you can only list requests addressed to you")
	}
	list, err := s.stores.Requests.ListByTarget(ctx, managerID)
	if err != nil {
		return nil, err
	}
	return s.managerViews(ctx, list)
}

func (s *Service) managerViews(ctx context.Context, list []models.FeedbackRequest) ([]RequestView, error) {
	ids := make([]bson.ObjectID, 0, len(list))
	for _, r := range list {
		if !r.IsAnonymous {
			ids = append(ids, r.RequesterID)
		}
	}
	users, err := s.users(ctx, ids...)
	if err != nil {
		return nil, err
	}

	views := make([]RequestView, 0, len(list))
	for _, r := range list {
		v := requestView(r)
		if r.IsAnonymous {
			v.RequesterName = AnonymousName
		} else {
			requester := r.RequesterID
			v.RequesterID = &requester
			v.RequesterName = nameOf(users, r.RequesterID)
		}
		views = append(views, v)
	}
	return views, nil
}

// ListEmployeeRequests returns the requests employeeID made, with full details.
func (s *Service) ListEmployeeRequests(ctx context.Context, actor Actor, employeeID bson.ObjectID) ([]RequestView, error) {
	if actor.UserID != employeeID {
		return nil, apperr.Authorization("you can only list your own requests")
	}
	list, err := s.stores.Requests.ListByRequester(ctx, employeeID)
	if err != nil {
		return nil, err
	}
	return s.requesterViews(ctx, list)
}

func (s *Service) requesterViews(ctx context.Context, list []models.FeedbackRequest) ([]RequestView, error) {
	ids := make([]bson.ObjectID, 0, 2*len(list))
	for _, r := range list {
		ids = append(ids, r.RequesterID, r.TargetManagerID)
	}
	users, err := s.users(ctx, ids...)
	if err != nil {
		return nil, err
	}
	views := make([]RequestView, 0, len(list))
	for _, r := range list {
		v := requestView(r)
		requester := r.RequesterID
		v.RequesterID = &requester
		v.RequesterName = nameOf(users, r.RequesterID)
		v.ManagerName = nameOf(users, r.TargetManagerID)
		views = append(views, v)
	}
	return views, nil
}

func requestView(r models.FeedbackRequest) RequestView {
	return RequestView{
		ID:              r.ID,
		TargetManagerID: r.TargetManagerID,
		Message:         r.Message,
		IsAnonymous:     r.IsAnonymous,
		Status:          r.Status,
		CreatedAt:       r.CreatedAt,
		ResolvedAt:      r.ResolvedAt,
	}
}
