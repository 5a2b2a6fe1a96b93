package memstore

import (
	"context"
	"slices"
	"strings"
	"time"

	"feedback-backend/internal/apperr"
	"feedback-backend/internal/models"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type UserRepo struct{ s *Store }

func (r *UserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	defer r.s.lock(ctx)()
	for _, u := range r.s.d.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *UserRepo) FindByID(ctx context.Context, id bson.ObjectID) (*models.User, error) {
	defer r.s.lock(ctx)()
	u, ok := r.s.d.users[id]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	defer r.s.lock(ctx)()
	for _, u := range r.s.d.users {
		if u.Email == user.Email {
			return apperr.Conflict("email address already in use")
		}
	}
	user.ID = bson.NewObjectID()
	user.CreatedAt = r.s.now()
	user.UpdatedAt = user.CreatedAt
	r.s.d.users[user.ID] = *user
	return nil
}

func (r *UserRepo) List(ctx context.Context, role models.Role) ([]models.User, error) {
	defer r.s.lock(ctx)()
	users := sorted(r.s.d.users,
		func(u *models.User) bool { return role == "" || u.Role == role },
		func(u *models.User) (time.Time, bson.ObjectID) { return u.CreatedAt, u.ID },
		false)
	slices.SortStableFunc(users, func(a, b models.User) int { return strings.Compare(a.Name, b.Name) })
	return users, nil
}

type TeamRepo struct{ s *Store }

func (r *TeamRepo) Add(ctx context.Context, m *models.TeamMembership) error {
	defer r.s.lock(ctx)()
	for _, existing := range r.s.d.teams {
		if existing.EmployeeID == m.EmployeeID {
			return apperr.Conflict("employee is already on a team")
		}
	}
	m.ID = bson.NewObjectID()
	m.CreatedAt = r.s.now()
	r.s.d.teams[m.ID] = *m
	return nil
}

func (r *TeamRepo) Remove(ctx context.Context, managerID, employeeID bson.ObjectID) (bool, error) {
	defer r.s.lock(ctx)()
	for id, m := range r.s.d.teams {
		if m.ManagerID == managerID && m.EmployeeID == employeeID {
			delete(r.s.d.teams, id)
			return true, nil
		}
	}
	return false, nil
}

func (r *TeamRepo) FindByEmployee(ctx context.Context, employeeID bson.ObjectID) (*models.TeamMembership, error) {
	defer r.s.lock(ctx)()
	for _, m := range r.s.d.teams {
		if m.EmployeeID == employeeID {
			return &m, nil
		}
	}
	return nil, nil
}

func (r *TeamRepo) ListByManager(ctx context.Context, managerID bson.ObjectID) ([]models.TeamMembership, error) {
	defer r.s.lock(ctx)()
	return r.list(func(m *models.TeamMembership) bool { return m.ManagerID == managerID }), nil
}

func (r *TeamRepo) ListAll(ctx context.Context) ([]models.TeamMembership, error) {
	defer r.s.lock(ctx)()
	return r.list(func(*models.TeamMembership) bool { return true }), nil
}

func (r *TeamRepo) list(keep func(*models.TeamMembership) bool) []models.TeamMembership {
	return sorted(r.s.d.teams, keep,
		func(m *models.TeamMembership) (time.Time, bson.ObjectID) { return m.CreatedAt, m.ID },
		false)
}

type SessionRepo struct{ s *Store }

func (r *SessionRepo) Create(ctx context.Context, sess *models.Session) error {
	defer r.s.lock(ctx)()
	for _, existing := range r.s.d.sessions {
		if existing.TokenID == sess.TokenID {
			return apperr.Conflict("session already exists")
		}
	}
	sess.ID = bson.NewObjectID()
	sess.CreatedAt = r.s.now()
	r.s.d.sessions[sess.ID] = *sess
	return nil
}

func (r *SessionRepo) FindByTokenID(ctx context.Context, tokenID string) (*models.Session, error) {
	defer r.s.lock(ctx)()
	for _, sess := range r.s.d.sessions {
		if sess.TokenID == tokenID {
			return &sess, nil
		}
	}
	return nil, nil
}

func (r *SessionRepo) Revoke(ctx context.Context, tokenID string) error {
	defer r.s.lock(ctx)()
	for id, sess := range r.s.d.sessions {
		if sess.TokenID == tokenID {
			sess.Revoked = true
			r.s.d.sessions[id] = sess
		}
	}
	return nil
}
