// Package workflow enforces the feedback lifecycle: who may submit, edit,
// acknowledge, discuss and request feedback, and how statistics are derived.
// Every operation receives the acting identity explicitly.
package workflow

import (
	"context"
	"log"
	"sync"
	"time"

	"feedback-backend/internal/apperr"
	"feedback-backend/internal/models"
	"feedback-backend/internal/notify"

	"go.mongodb.org/mongo-driver/v2/bson"
)

// Actor is the authenticated identity an operation runs as.
type Actor struct {
	UserID bson.ObjectID
	Role   models.Role
}

func (a Actor) IsManager() bool  { return a.Role == models.RoleManager }
func (a Actor) IsEmployee() bool { return a.Role == models.RoleEmployee }

type UserStore interface {
	FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error)
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	List(ctx context.Context, role models.Role) ([]models.User, error)
}

type TeamStore interface {
	Add(ctx context.Context, m *models.TeamMembership) error
	Remove(ctx context.Context, managerID, employeeID bson.ObjectID) (bool, error)
	FindByEmployee(ctx context.Context, employeeID bson.ObjectID) (*models.TeamMembership, error)
	ListByManager(ctx context.Context, managerID bson.ObjectID) ([]models.TeamMembership, error)
	ListAll(ctx context.Context) ([]models.TeamMembership, error)
}

type FeedbackStore interface {
	Create(ctx context.Context, fb *models.Feedback) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Feedback, error)
	FindByIdempotencyKey(ctx context.Context, managerID bson.ObjectID, key string) (*models.Feedback, error)
	Update(ctx context.Context, fb *models.Feedback) error
	Delete(ctx context.Context, id bson.ObjectID) (bool, error)
	List(ctx context.Context, filter models.FeedbackFilter) ([]models.Feedback, error)
	CountBySentiment(ctx context.Context, filter models.FeedbackFilter) (map[models.Sentiment]int64, error)
}

type RequestStore interface {
	Create(ctx context.Context, req *models.FeedbackRequest) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.FeedbackRequest, error)
	ListByTarget(ctx context.Context, managerID bson.ObjectID) ([]models.FeedbackRequest, error)
	ListByRequester(ctx context.Context, requesterID bson.ObjectID) ([]models.FeedbackRequest, error)
	Transition(ctx context.Context, id bson.ObjectID, from, to models.RequestStatus, at time.Time) (bool, error)
}

type CommentStore interface {
	Create(ctx context.Context, c *models.Comment) error
	ListByFeedback(ctx context.Context, feedbackID bson.ObjectID) ([]models.Comment, error)
	DeleteByFeedback(ctx context.Context, feedbackID bson.ObjectID) (int64, error)
}

type AckStore interface {
	Acknowledge(ctx context.Context, ack *models.Acknowledgement) (*models.Acknowledgement, bool, error)
	ListByFeedback(ctx context.Context, feedbackID bson.ObjectID) ([]models.Acknowledgement, error)
	AcknowledgedSet(ctx context.Context, feedbackIDs []bson.ObjectID) (map[bson.ObjectID]bool, error)
	Count(ctx context.Context, filter models.AckFilter) (int64, error)
	DeleteByFeedback(ctx context.Context, feedbackID bson.ObjectID) (int64, error)
}

type TagStore interface {
	Create(ctx context.Context, tag *models.Tag) error
	FindByID(ctx context.Context, id bson.ObjectID) (*models.Tag, error)
	ListByFeedback(ctx context.Context, feedbackIDs ...bson.ObjectID) ([]models.Tag, error)
	Delete(ctx context.Context, id bson.ObjectID) (bool, error)
	DeleteByFeedback(ctx context.Context, feedbackID bson.ObjectID) (int64, error)
}

// TxRunner runs fn atomically; a returned error discards its writes.
type TxRunner interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
}

type Stores struct {
	Users    UserStore
	Teams    TeamStore
	Feedback FeedbackStore
	Requests RequestStore
	Comments CommentStore
	Acks     AckStore
	Tags     TagStore
	Tx       TxRunner
}

// Archiver keeps a copy of exported reports.
type Archiver interface {
	Archive(ctx context.Context, name, contentType string, data []byte) error
}

const notifyTimeout = 10 * time.Second

type Service struct {
	stores   Stores
	notifier notify.Notifier
	archiver Archiver
	now      func() time.Time
	wg       sync.WaitGroup
}

type Option func(*Service)

func WithArchiver(a Archiver) Option {
	return func(s *Service) { s.archiver = a }
}

func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

func NewService(stores Stores, notifier notify.Notifier, opts ...Option) *Service {
	s := &Service{
		stores:   stores,
		notifier: notifier,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Wait blocks until every in-flight notification has been handed off.
func (s *Service) Wait() {
	s.wg.Wait()
}

// emit publishes ev in the background. Delivery failures are logged only.
func (s *Service) emit(ev notify.Event) {
	if s.notifier == nil {
		return
	}
	ev.OccurredAt = s.now()
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), notifyTimeout)
		defer cancel()

		if id, err := bson.ObjectIDFromHex(ev.RecipientID); err == nil {
			if u, err := s.stores.Users.FindByID(ctx, id); err == nil && u != nil {
				ev.RecipientEmail = u.Email
			}
		}
		if err := s.notifier.Publish(ctx, ev); err != nil {
			log.Printf("⚠️  Failed to publish %s notification: %v", ev.Type, err)
		}
	}()
}

// currentManager returns the manager whose team holds employeeID, or the zero id.
func (s *Service) currentManager(ctx context.Context, employeeID bson.ObjectID) (bson.ObjectID, error) {
	m, err := s.stores.Teams.FindByEmployee(ctx, employeeID)
	if err != nil || m == nil {
		return bson.ObjectID{}, err
	}
	return m.ManagerID, nil
}

// managesEmployee reports whether actor is a manager with employeeID on their team.
func (s *Service) managesEmployee(ctx context.Context, actor Actor, employeeID bson.ObjectID) (bool, error) {
	if !actor.IsManager() {
		return false, nil
	}
	manager, err := s.currentManager(ctx, employeeID)
	if err != nil {
		return false, err
	}
	return manager == actor.UserID, nil
}

// authorizeView allows the feedback's subject, its author and the subject's
// current manager.
func (s *Service) authorizeView(ctx context.Context, actor Actor, fb *models.Feedback) error {
	if actor.UserID == fb.EmployeeID || actor.UserID == fb.ManagerID {
		return nil
	}
	ok, err := s.managesEmployee(ctx, actor, fb.EmployeeID)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.Authorization("you are not allowed to view this feedback")
	}
	return nil
}

func (s *Service) loadFeedback(ctx context.Context, id bson.ObjectID) (*models.Feedback, error) {
	fb, err := s.stores.Feedback.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if fb == nil {
		return nil, apperr.NotFound("feedback not found")
	}
	return fb, nil
}

// loadViewable loads a feedback and checks actor may see it.
func (s *Service) loadViewable(ctx context.Context, actor Actor, id bson.ObjectID) (*models.Feedback, error) {
	fb, err := s.loadFeedback(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(ctx, actor, fb); err != nil {
		return nil, err
	}
	return fb, nil
}

// users resolves ids to accounts in one pass; missing accounts are absent.
func (s *Service) users(ctx context.Context, ids ...bson.ObjectID) (map[bson.ObjectID]*models.User, error) {
	out := make(map[bson.ObjectID]*models.User, len(ids))
	for _, id := range ids {
		if _, seen := out[id]; seen {
			continue
		}
		u, err := s.stores.Users.FindByID(ctx, id)
		if err != nil {
			return nil, err
		}
		out[id] = u
	}
	return out, nil
}

func nameOf(users map[bson.ObjectID]*models.User, id bson.ObjectID) string {
	if u := users[id]; u != nil {
		return u.Name
	}
	return ""
}
