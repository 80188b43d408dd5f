package repository

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/pharmacare/pharmacare-backend/internal/auth/domain"
	"github.com/pharmacare/pharmacare-backend/pkg/database"
)

// SessionRepository handles session persistence
type SessionRepository struct {
	db *database.DB
}

// NewSessionRepository creates a new session repository
func NewSessionRepository(db *database.DB) *SessionRepository {
	return &SessionRepository{db: db}
}

// Create stores a session for refreshToken
func (r *SessionRepository) Create(ctx context.Context, s *domain.Session, refreshToken string) error {
	s.RefreshTokenHash = HashToken(refreshToken)
	query := `
		INSERT INTO sessions (id, user_id, refresh_token_hash, user_agent, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, last_used_at
	`
	err := r.db.Ext(ctx).QueryRowxContext(ctx, query,
		s.ID, s.UserID, s.RefreshTokenHash, s.UserAgent, s.IPAddress, s.ExpiresAt,
	).Scan(&s.CreatedAt, &s.LastUsedAt)
	return database.MapError(err, "session", "create")
}

// GetByID gets a session by ID
func (r *SessionRepository) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	var s domain.Session
	query := `
		SELECT id, user_id, refresh_token_hash, user_agent, ip_address, expires_at, created_at, last_used_at, revoked_at
		FROM sessions
		WHERE id = $1
	`
	if err := sqlx.GetContext(ctx, r.db.Ext(ctx), &s, query, id); err != nil {
		return nil, database.MapError(err, "session", "get")
	}
	return &s, nil
}

// Rotate swaps the refresh token of a live session. It reports false when
// the session no longer holds oldToken, i.e. another refresh won.
func (r *SessionRepository) Rotate(ctx context.Context, id, oldToken, newToken string, expiresAt time.Time) (bool, error) {
	query := `
		UPDATE sessions
		SET refresh_token_hash = $3, expires_at = $4, last_used_at = NOW()
		WHERE id = $1 AND refresh_token_hash = $2 AND revoked_at IS NULL
	`
	res, err := r.db.Ext(ctx).ExecContext(ctx, query, id, HashToken(oldToken), HashToken(newToken), expiresAt)
	if err != nil {
		return false, database.MapError(err, "session", "rotate")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Revoke revokes a session
func (r *SessionRepository) Revoke(ctx context.Context, id string) error {
	_, err := r.db.Ext(ctx).ExecContext(ctx, `UPDATE sessions SET revoked_at = NOW() WHERE id = $1 AND revoked_at IS NULL`, id)
	return database.MapError(err, "session", "revoke")
}

// RevokeAllForUser revokes every live session of a user
func (r *SessionRepository) RevokeAllForUser(ctx context.Context, userID string) error {
	_, err := r.db.Ext(ctx).ExecContext(ctx, `UPDATE sessions SET revoked_at = NOW() WHERE user_id = $1 AND revoked_at IS NULL`, userID)
	return database.MapError(err, "session", "revoke")
}

// DeleteExpired removes expired and revoked sessions
func (r *SessionRepository) DeleteExpired(ctx context.Context) (int64, error) {
	res, err := r.db.Ext(ctx).ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < NOW() OR revoked_at IS NOT NULL`)
	if err != nil {
		return 0, database.MapError(err, "session", "delete")
	}
	return res.RowsAffected()
}

// HashToken is the stored form of a refresh token.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
