// Package service signs users in and manages accounts and roles.
package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/pharmacare/pharmacare-backend/internal/auth/domain"
	"github.com/pharmacare/pharmacare-backend/internal/auth/jwt"
	"github.com/pharmacare/pharmacare-backend/internal/auth/repository"
	"github.com/pharmacare/pharmacare-backend/pkg/errors"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
)

// UserStore persists users
type UserStore interface {
	Create(ctx context.Context, u *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	List(ctx context.Context, filter repository.UserFilter, page, perPage int) ([]domain.User, int64, error)
	Update(ctx context.Context, u *domain.User) error
	UpdateLastLogin(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// RoleStore persists roles
type RoleStore interface {
	Create(ctx context.Context, r *domain.Role) error
	GetByID(ctx context.Context, id string) (*domain.Role, error)
	List(ctx context.Context) ([]domain.Role, error)
	Update(ctx context.Context, r *domain.Role) error
	CountUsers(ctx context.Context, id string) (int64, error)
	Delete(ctx context.Context, id string) error
}

// SessionStore persists sign-in sessions
type SessionStore interface {
	Create(ctx context.Context, s *domain.Session, refreshToken string) error
	GetByID(ctx context.Context, id string) (*domain.Session, error)
	Rotate(ctx context.Context, id, oldToken, newToken string, expiresAt time.Time) (bool, error)
	Revoke(ctx context.Context, id string) error
	RevokeAllForUser(ctx context.Context, userID string) error
	DeleteExpired(ctx context.Context) (int64, error)
}

// LoginRequest accepts either a username or an email as identifier
type LoginRequest struct {
	Identifier string `json:"identifier" validate:"required,max=255"`
	Password   string `json:"password" validate:"required"`
}

// LoginResponse is a token pair plus the signed-in user
type LoginResponse struct {
	*jwt.TokenPair
	User *domain.User `json:"user"`
}

// ClientInfo describes the device a session is opened from
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

// AuthService handles authentication logic
type AuthService struct {
	users    UserStore
	sessions SessionStore
	tokens   *jwt.Manager
	logger   *logger.Logger
	now      func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(users UserStore, sessions SessionStore, tokens *jwt.Manager, log *logger.Logger) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		logger:   log.WithComponent("auth"),
		now:      time.Now,
	}
}

// Login checks the credentials and opens a session. Unknown users, inactive
// users and wrong passwords all fail the same way.
func (s *AuthService) Login(ctx context.Context, req LoginRequest, client ClientInfo) (*LoginResponse, error) {
	user, err := s.lookup(ctx, req.Identifier)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.InvalidCredentials()
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, errors.InvalidCredentials()
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, errors.InvalidCredentials()
	}

	session := &domain.Session{
		ID:        uuid.New().String(),
		UserID:    user.ID,
		UserAgent: client.UserAgent,
		IPAddress: client.IPAddress,
	}
	tokens, err := s.tokens.GenerateTokenPair(user.Actor(), session.ID)
	if err != nil {
		return nil, errors.Internal("failed to generate tokens")
	}
	session.ExpiresAt = tokens.RefreshExpiresAt
	if err := s.sessions.Create(ctx, session, tokens.RefreshToken); err != nil {
		return nil, err
	}

	if err := s.users.UpdateLastLogin(ctx, user.ID); err != nil {
		s.logger.Warn().Err(err).Str("user_id", user.ID).Msg("failed to record last login")
	}
	s.logger.Info().Str("user_id", user.ID).Str("session_id", session.ID).Msg("user logged in")

	return &LoginResponse{TokenPair: tokens, User: user}, nil
}

// Refresh rotates the session's refresh token and issues a new pair with
// the user's current role. Presenting a token the session no longer holds
// revokes the session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*jwt.TokenPair, error) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.GetByID(ctx, claims.SessionID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.Unauthorized("invalid session")
		}
		return nil, err
	}
	if !session.Usable(s.now()) || session.UserID != claims.Subject {
		return nil, errors.Unauthorized("session expired or revoked")
	}
	if session.RefreshTokenHash != repository.HashToken(refreshToken) {
		s.revoke(ctx, session.ID)
		s.logger.Warn().Str("session_id", session.ID).Msg("refresh token reused; session revoked")
		return nil, errors.Unauthorized("session expired or revoked")
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.IsNotFound(err) {
			return nil, errors.Unauthorized("user no longer exists")
		}
		return nil, err
	}
	if !user.IsActive {
		s.revoke(ctx, session.ID)
		return nil, errors.Unauthorized("user is deactivated")
	}

	tokens, err := s.tokens.GenerateTokenPair(user.Actor(), session.ID)
	if err != nil {
		return nil, errors.Internal("failed to generate tokens")
	}
	rotated, err := s.sessions.Rotate(ctx, session.ID, refreshToken, tokens.RefreshToken, tokens.RefreshExpiresAt)
	if err != nil {
		return nil, err
	}
	if !rotated {
		return nil, errors.Unauthorized("session expired or revoked")
	}
	return tokens, nil
}

// Logout revokes the session behind refreshToken. Invalid tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, refreshToken string) {
	claims, err := s.tokens.ValidateRefreshToken(refreshToken)
	if err != nil {
		return
	}
	s.revoke(ctx, claims.SessionID)
}

// Me returns the signed-in user
func (s *AuthService) Me(ctx context.Context, userID string) (*domain.User, error) {
	return s.users.GetByID(ctx, userID)
}

// CleanupSessions deletes expired and revoked sessions
func (s *AuthService) CleanupSessions(ctx context.Context) (int64, error) {
	n, err := s.sessions.DeleteExpired(ctx)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.logger.Info().Int64("deleted", n).Msg("expired sessions removed")
	}
	return n, nil
}

func (s *AuthService) lookup(ctx context.Context, identifier string) (*domain.User, error) {
	if domain.IsEmail(identifier) {
		return s.users.GetByEmail(ctx, identifier)
	}
	return s.users.GetByUsername(ctx, identifier)
}

func (s *AuthService) revoke(ctx context.Context, sessionID string) {
	if err := s.sessions.Revoke(ctx, sessionID); err != nil {
		s.logger.Warn().Err(err).Str("session_id", sessionID).Msg("failed to revoke session")
	}
}
