package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pharmacare/pharmacare-backend/pkg/errors"
)

func TestRole_Validate(t *testing.T) {
	tests := []struct {
		name    string
		role    Role
		invalid string
	}{
		{"valid", Role{Name: "auditor", Permissions: []string{"alerts.read", "orders.*"}}, ""},
		{"missing name", Role{Name: " ", Permissions: []string{"*"}}, "name"},
		{"no permissions", Role{Name: "empty"}, "permissions"},
		{"unknown permission", Role{Name: "odd", Permissions: []string{"alerts.read", "rockets.launch"}}, "permissions"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.role.Validate()
			if tt.invalid == "" {
				assert.NoError(t, err)
				return
			}
			var appErr *errors.AppError
			require.True(t, errors.As(err, &appErr))
			assert.Equal(t, "VALIDATION_ERROR", appErr.Code)
			assert.Contains(t, appErr.Details, tt.invalid)
		})
	}
}

func TestRole_ValidateNamesUnknownPermissions(t *testing.T) {
	err := (&Role{Name: "odd", Permissions: []string{"rockets.launch"}}).Validate()

	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, "unknown permissions: rockets.launch", appErr.Details["permissions"])
}

func TestUser_Actor(t *testing.T) {
	u := User{ID: "u-1", Username: "amara", Email: "amara@example.com", RoleName: "pharmacist", Permissions: []string{"orders.*"}}

	a := u.Actor()

	assert.Equal(t, "u-1", a.ID)
	assert.Equal(t, "amara", a.Username)
	assert.Equal(t, "pharmacist", a.RoleName)
	assert.Equal(t, []string{"orders.*"}, a.Permissions)
}

func TestIsEmail(t *testing.T) {
	assert.True(t, IsEmail("amara@example.com"))
	assert.False(t, IsEmail("amara"))
	assert.False(t, IsEmail(""))
}

func TestSession_Usable(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	revoked := now.Add(-time.Minute)

	assert.True(t, (&Session{ExpiresAt: now.Add(time.Hour)}).Usable(now))
	assert.False(t, (&Session{ExpiresAt: now}).Usable(now))
	assert.False(t, (&Session{ExpiresAt: now.Add(time.Hour), RevokedAt: &revoked}).Usable(now))
}
