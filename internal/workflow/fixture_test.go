package workflow_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"feedback-backend/internal/apperr"
	"feedback-backend/internal/models"
	"feedback-backend/internal/notify"
	"feedback-backend/internal/repository/memstore"
	"feedback-backend/internal/workflow"
)

type recorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *recorder) Publish(ctx context.Context, ev notify.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return nil
}

func (r *recorder) ofType(t notify.EventType) []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notify.Event
	for _, ev := range r.events {
		if ev.Type == t {
			out = append(out, ev)
		}
	}
	return out
}

type fixture struct {
	ctx   context.Context
	store *memstore.Store
	svc   *workflow.Service
	rec   *recorder
}

func stores(s *memstore.Store) workflow.Stores {
	return workflow.Stores{
		Users:    s.Users(),
		Teams:    s.Teams(),
		Feedback: s.Feedback(),
		Requests: s.Requests(),
		Comments: s.Comments(),
		Acks:     s.Acks(),
		Tags:     s.Tags(),
		Tx:       s,
	}
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memstore.New()
	rec := &recorder{}
	return &fixture{
		ctx:   context.Background(),
		store: store,
		svc:   workflow.NewService(stores(store), rec),
		rec:   rec,
	}
}

func (f *fixture) user(t *testing.T, name string, role models.Role) workflow.Actor {
	t.Helper()
	u := &models.User{Name: name, Email: name + "@example.com", Role: role}
	if err := f.store.Users().Create(f.ctx, u); err != nil {
		t.Fatalf("create user %s: %v", name, err)
	}
	return workflow.Actor{UserID: u.ID, Role: role}
}

func (f *fixture) join(t *testing.T, manager, employee workflow.Actor) {
	t.Helper()
	if _, err := f.svc.AddTeamMember(f.ctx, manager, manager.UserID, employee.UserID); err != nil {
		t.Fatalf("add team member: %v", err)
	}
}

func (f *fixture) submit(t *testing.T, manager, employee workflow.Actor, sentiment models.Sentiment) *workflow.FeedbackView {
	t.Helper()
	fb, created, err := f.svc.SubmitFeedback(f.ctx, manager, workflow.SubmitInput{
		EmployeeID:   employee.UserID,
		Strengths:    "Clear communicator",
		Improvements: "Document decisions",
		Sentiment:    sentiment,
	})
	if err != nil {
		t.Fatalf("submit feedback: %v", err)
	}
	if !created {
		t.Fatalf("submit feedback reported replay")
	}
	return fb
}

func wantKind(t *testing.T, err error, target error) {
	t.Helper()
	if !errors.Is(err, target) {
		t.Fatalf("error = %v, want %v", err, target)
	}
}

// people returns a manager with one team member, plus an outside manager.
func people(t *testing.T, f *fixture) (manager, employee, other workflow.Actor) {
	t.Helper()
	manager = f.user(t, "maria", models.RoleManager)
	employee = f.user(t, "eli", models.RoleEmployee)
	other = f.user(t, "otto", models.RoleManager)
	f.join(t, manager, employee)
	return manager, employee, other
}

var (
	errAuthz    = apperr.ErrAuthorization
	errNotFound = apperr.ErrNotFound
)
