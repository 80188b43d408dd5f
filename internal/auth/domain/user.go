// Package domain holds the accounts that sign in to the pharmacy API.
package domain

import (
	"strings"
	"time"

	"github.com/lib/pq"

	"github.com/pharmacare/pharmacare-backend/pkg/actor"
	"github.com/pharmacare/pharmacare-backend/pkg/errors"
	"github.com/pharmacare/pharmacare-backend/pkg/permissions"
)

// Role is a named set of permission strings.
type Role struct {
	ID          string         `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Description string         `db:"description" json:"description"`
	Permissions pq.StringArray `db:"permissions" json:"permissions"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time      `db:"updated_at" json:"updated_at"`
}

// Validate rejects a role without a name or with unknown permissions.
func (r *Role) Validate() error {
	details := map[string]string{}
	if strings.TrimSpace(r.Name) == "" {
		details["name"] = "this field is required"
	}
	if len(r.Permissions) == 0 {
		details["permissions"] = "at least one permission is required"
	} else if invalid := permissions.InvalidPermissions(r.Permissions); len(invalid) > 0 {
		details["permissions"] = "unknown permissions: " + strings.Join(invalid, ", ")
	}
	if len(details) > 0 {
		return errors.Validation(details)
	}
	return nil
}

// User is an account. RoleName and Permissions are read from the user's role.
type User struct {
	ID           string         `db:"id" json:"id"`
	Username     string         `db:"username" json:"username"`
	Email        string         `db:"email" json:"email"`
	PasswordHash string         `db:"password_hash" json:"-"`
	FirstName    string         `db:"first_name" json:"first_name"`
	LastName     string         `db:"last_name" json:"last_name"`
	RoleID       string         `db:"role_id" json:"role_id"`
	RoleName     string         `db:"role_name" json:"role"`
	Permissions  pq.StringArray `db:"permissions" json:"permissions"`
	IsActive     bool           `db:"is_active" json:"is_active"`
	LastLoginAt  *time.Time     `db:"last_login_at" json:"last_login_at,omitempty"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at" json:"updated_at"`
}

// FullName joins the first and last name.
func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Actor is the identity the user acts as once signed in.
func (u *User) Actor() *actor.Actor {
	return &actor.Actor{
		ID:          u.ID,
		Username:    u.Username,
		Email:       u.Email,
		RoleName:    u.RoleName,
		Permissions: []string(u.Permissions),
	}
}

// IsEmail reports whether a login identifier is an email address rather
// than a username. Usernames cannot contain '@'.
func IsEmail(identifier string) bool {
	return strings.Contains(identifier, "@")
}

// Session is one signed-in device. Only a hash of its current refresh
// token is stored; rotating the token replaces the hash.
type Session struct {
	ID               string     `db:"id"`
	UserID           string     `db:"user_id"`
	RefreshTokenHash string     `db:"refresh_token_hash"`
	UserAgent        string     `db:"user_agent"`
	IPAddress        string     `db:"ip_address"`
	ExpiresAt        time.Time  `db:"expires_at"`
	CreatedAt        time.Time  `db:"created_at"`
	LastUsedAt       time.Time  `db:"last_used_at"`
	RevokedAt        *time.Time `db:"revoked_at"`
}

// Usable is true when the session is neither revoked nor expired at now.
func (s *Session) Usable(now time.Time) bool {
	return s.RevokedAt == nil && now.Before(s.ExpiresAt)
}
