package client

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"feedback-backend/internal/apperr"
	"feedback-backend/internal/auth"
	"feedback-backend/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

type State int

const (
	StateLoading State = iota
	StateLoggedOut
	StateLoggedIn
)

func (s State) String() string {
	switch s {
	case StateLoading:
		return "loading"
	case StateLoggedOut:
		return "logged_out"
	case StateLoggedIn:
		return "logged_in"
	default:
		return "unknown"
	}
}

// Persisted is what a session keeps between process runs.
type Persisted struct {
	Token string             `json:"token"`
	Role  models.Role        `json:"role"`
	User  models.UserSummary `json:"user"`
}

// Store loads and saves the persisted session. Load returns nil when nothing
// has been saved.
type Store interface {
	Load() (*Persisted, error)
	Save(p *Persisted) error
	Clear() error
}

// LoginOutcome is the result of Session.Login. Error is set when the server
// rejected the credentials.
type LoginOutcome struct {
	Role  models.Role `json:"role,omitempty"`
	Error bool        `json:"error,omitempty"`
}

// Session holds at most one signed-in identity and keeps the API client's
// bearer token in step with it.
type Session struct {
	api   *Client
	store Store
	now   func() time.Time

	mu    sync.RWMutex
	state State
	cur   *Persisted
}

func NewSession(api *Client, store Store) *Session {
	return &Session{api: api, store: store, now: time.Now, state: StateLoading}
}

func (s *Session) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// User returns the signed-in user, if any.
func (s *Session) User() (models.UserSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateLoggedIn || s.cur == nil {
		return models.UserSummary{}, false
	}
	return s.cur.User, true
}

func (s *Session) Role() models.Role {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.cur == nil {
		return ""
	}
	return s.cur.Role
}

// Restore leaves Loading. A persisted session that is incomplete, malformed or
// expired is cleared and the session becomes LoggedOut.
func (s *Session) Restore() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state != StateLoading {
		return s.state
	}

	p, err := s.store.Load()
	if err != nil {
		log.Printf("⚠️  Discarding unreadable session: %v", err)
	}
	if err == nil && p != nil {
		if err = s.check(p); err == nil {
			s.signIn(p)
			return s.state
		}
		log.Printf("⚠️  Discarding stored session: %v", err)
	}
	if p != nil || err != nil {
		if err := s.store.Clear(); err != nil {
			log.Printf("⚠️  Failed to clear stored session: %v", err)
		}
	}
	s.state = StateLoggedOut
	return s.state
}

// check inspects the token without verifying its signature; the server does
// that on every call. It only guards against stale or mismatched data.
func (s *Session) check(p *Persisted) error {
	if p.Token == "" || p.User.ID.IsZero() || !p.Role.Valid() {
		return errors.New("incomplete session record")
	}
	claims := &auth.Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(p.Token, claims); err != nil {
		return err
	}
	if claims.Subject != p.User.ID.Hex() || claims.Role != p.Role {
		return errors.New("token does not match stored user")
	}
	if claims.ExpiresAt == nil || !claims.ExpiresAt.After(s.now()) {
		return errors.New("token expired")
	}
	return nil
}

func (s *Session) signIn(p *Persisted) {
	s.cur = p
	s.state = StateLoggedIn
	s.api.SetToken(p.Token)
}

// Login authenticates against the server. Rejected credentials and validation
// failures produce an outcome with Error set and a nil error; only transport
// and server-side failures are returned as errors. A successful login while
// already signed in revokes the previous server session.
func (s *Session) Login(ctx context.Context, email, password string) (LoginOutcome, error) {
	s.mu.RLock()
	var previous string
	if s.state == StateLoggedIn && s.cur != nil {
		previous = s.cur.Token
	}
	s.mu.RUnlock()

	res, err := s.api.Login(ctx, email, password)
	if err != nil {
		switch apperr.KindOf(err) {
		case apperr.KindAuthorization, apperr.KindValidation, apperr.KindNotFound:
			s.mu.Lock()
			if s.state != StateLoggedIn {
				s.state = StateLoggedOut
			}
			s.mu.Unlock()
			return LoginOutcome{Error: true}, nil
		}
		return LoginOutcome{}, err
	}

	p := &Persisted{Token: res.Token, Role: res.Role, User: res.User}
	if err := s.store.Save(p); err != nil {
		log.Printf("⚠️  Failed to persist session: %v", err)
	}
	s.mu.Lock()
	s.signIn(p)
	s.mu.Unlock()

	if previous != "" && previous != res.Token {
		if err := s.api.withToken(previous).Logout(ctx); err != nil {
			log.Printf("⚠️  Failed to revoke previous session: %v", err)
		}
	}
	return LoginOutcome{Role: res.Role}, nil
}

// Logout ends the session locally. Revoking the token server-side is best
// effort.
func (s *Session) Logout(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.cur != nil {
		if err := s.api.Logout(ctx); err != nil {
			log.Printf("⚠️  Server logout failed: %v", err)
		}
	}
	if err := s.store.Clear(); err != nil {
		log.Printf("⚠️  Failed to clear stored session: %v", err)
	}
	s.api.SetToken("")
	s.cur = nil
	s.state = StateLoggedOut
}
