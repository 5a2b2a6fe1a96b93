// Package auth registers accounts, issues signed session tokens and resolves
// bearer tokens back to the identity they were issued for.
package auth

import (
	"context"
	"log"
	"strings"

	"feedback-backend/internal/apperr"
	"feedback-backend/internal/models"
	"feedback-backend/internal/workflow"

	"go.mongodb.org/mongo-driver/v2/bson"
)

type SessionStore interface {
	Create(ctx context.Context, s *models.Session) error
	FindByTokenID(ctx context.Context, tokenID string) (*models.Session, error)
	Revoke(ctx context.Context, tokenID string) error
}

// Limiter reports whether another attempt for key is allowed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Principal is the identity behind a verified bearer token.
type Principal struct {
	UserID  bson.ObjectID
	Role    models.Role
	Name    string
	TokenID string
}

func (p *Principal) Actor() workflow.Actor {
	return workflow.Actor{UserID: p.UserID, Role: p.Role}
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
	Role     models.Role
}

type LoginResult struct {
	Token string             `json:"token"`
	Role  models.Role        `json:"role"`
	User  models.UserSummary `json:"user"`
}

type Service struct {
	users    workflow.UserStore
	sessions SessionStore
	tokens   *TokenIssuer
	limiter  Limiter
}

func NewService(users workflow.UserStore, sessions SessionStore, tokens *TokenIssuer, limiter Limiter) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		limiter:  limiter,
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Register creates an account. Role defaults to Employee.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	name := strings.TrimSpace(in.Name)
	email := normalizeEmail(in.Email)
	if name == "" || email == "" || in.Password == "" {
		return nil, apperr.Validation("name, email, and password are required")
	}
	if !strings.Contains(email, "@") {
		return nil, apperr.Validation("email address is invalid")
	}
	if len(in.Password) > maxPasswordBytes {
		return nil, apperr.Validation("password must be at most %d bytes", maxPasswordBytes)
	}
	role := in.Role
	if role == "" {
		role = models.RoleEmployee
	}
	if !role.Valid() {
		return nil, apperr.Validation("role must be Manager or Employee")
	}

	existing, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("email address already in use")
	}

	hash, err := HashPassword(in.Password)
	if err != nil {
		return nil, err
	}
	user := &models.User{Name: name, Email: email, PasswordHash: hash, Role: role}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	log.Printf("✅ Registered %s account %s", role, user.ID.Hex())
	return user, nil
}

// Login checks credentials and opens a session. An unknown email and a wrong
// password fail the same way.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, apperr.Validation("email and password are required")
	}
	if s.limiter != nil {
		ok, err := s.limiter.Allow(ctx, "login:"+email)
		if err != nil {
			return nil, apperr.Transient(err, "rate limiter unavailable")
		}
		if !ok {
			return nil, apperr.ErrRateLimited
		}
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user == nil || !CheckPassword(password, user.PasswordHash) {
		return nil, apperr.ErrInvalidCredentials
	}

	token, claims, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	session := &models.Session{
		TokenID:   claims.ID,
		UserID:    user.ID,
		ExpiresAt: claims.ExpiresAt.Time,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}
	return &LoginResult{Token: token, Role: user.Role, User: user.Summary()}, nil
}

// Authenticate resolves a bearer token to its principal. The token must be
// validly signed, unexpired and backed by a live session.
func (s *Service) Authenticate(ctx context.Context, raw string) (*Principal, error) {
	claims, err := s.tokens.Parse(raw)
	if err != nil {
		return nil, apperr.Unauthenticated("invalid or expired token")
	}
	userID, err := bson.ObjectIDFromHex(claims.Subject)
	if err != nil {
		return nil, apperr.Unauthenticated("invalid token subject")
	}
	session, err := s.sessions.FindByTokenID(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if session == nil || !session.Active() || session.UserID != userID {
		return nil, apperr.Unauthenticated("session has ended")
	}
	return &Principal{
		UserID:  userID,
		Role:    claims.Role,
		Name:    claims.Name,
		TokenID: claims.ID,
	}, nil
}

// Logout revokes the session behind raw.
func (s *Service) Logout(ctx context.Context, raw string) error {
	p, err := s.Authenticate(ctx, raw)
	if err != nil {
		return err
	}
	return s.sessions.Revoke(ctx, p.TokenID)
}
