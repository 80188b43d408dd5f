package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/pharmacare/pharmacare-backend/internal/auth/domain"
	"github.com/pharmacare/pharmacare-backend/internal/auth/jwt"
	"github.com/pharmacare/pharmacare-backend/internal/auth/repository"
	"github.com/pharmacare/pharmacare-backend/pkg/actor"
	"github.com/pharmacare/pharmacare-backend/pkg/config"
	"github.com/pharmacare/pharmacare-backend/pkg/errors"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
	"github.com/pharmacare/pharmacare-backend/pkg/testutil"
)

type fakeRoles struct {
	byID map[string]domain.Role
}

func (f *fakeRoles) Create(ctx context.Context, r *domain.Role) error {
	r.ID = uuid.New().String()
	f.byID[r.ID] = *r
	return nil
}

func (f *fakeRoles) GetByID(ctx context.Context, id string) (*domain.Role, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, errors.NotFound("role")
	}
	return &r, nil
}

func (f *fakeRoles) List(ctx context.Context) ([]domain.Role, error) {
	out := []domain.Role{}
	for _, r := range f.byID {
		out = append(out, r)
	}
	return out, nil
}

func (f *fakeRoles) Update(ctx context.Context, r *domain.Role) error {
	f.byID[r.ID] = *r
	return nil
}

func (f *fakeRoles) CountUsers(ctx context.Context, id string) (int64, error) {
	return 0, nil
}

func (f *fakeRoles) Delete(ctx context.Context, id string) error {
	delete(f.byID, id)
	return nil
}

type fakeUsers struct {
	byID  map[string]domain.User
	roles *fakeRoles
}

// withRole mirrors the repository join on roles.
func (f *fakeUsers) withRole(u domain.User) *domain.User {
	if r, ok := f.roles.byID[u.RoleID]; ok {
		u.RoleName = r.Name
		u.Permissions = r.Permissions
	}
	return &u
}

func (f *fakeUsers) Create(ctx context.Context, u *domain.User) error {
	u.ID = uuid.New().String()
	f.byID[u.ID] = *u
	return nil
}

func (f *fakeUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u, ok := f.byID[id]
	if !ok {
		return nil, errors.NotFound("user")
	}
	return f.withRole(u), nil
}

func (f *fakeUsers) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Username == username {
			return f.withRole(u), nil
		}
	}
	return nil, errors.NotFound("user")
}

func (f *fakeUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, u := range f.byID {
		if u.Email == email {
			return f.withRole(u), nil
		}
	}
	return nil, errors.NotFound("user")
}

func (f *fakeUsers) List(ctx context.Context, filter repository.UserFilter, page, perPage int) ([]domain.User, int64, error) {
	out := []domain.User{}
	for _, u := range f.byID {
		out = append(out, *f.withRole(u))
	}
	return out, int64(len(out)), nil
}

func (f *fakeUsers) Update(ctx context.Context, u *domain.User) error {
	f.byID[u.ID] = *u
	return nil
}

func (f *fakeUsers) UpdateLastLogin(ctx context.Context, id string) error {
	u := f.byID[id]
	now := testutil.FixedNow
	u.LastLoginAt = &now
	f.byID[id] = u
	return nil
}

func (f *fakeUsers) Delete(ctx context.Context, id string) error {
	if _, ok := f.byID[id]; !ok {
		return errors.NotFound("user")
	}
	delete(f.byID, id)
	return nil
}

type fakeSessions struct {
	byID map[string]domain.Session
}

func (f *fakeSessions) Create(ctx context.Context, s *domain.Session, refreshToken string) error {
	s.RefreshTokenHash = repository.HashToken(refreshToken)
	f.byID[s.ID] = *s
	return nil
}

func (f *fakeSessions) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	s, ok := f.byID[id]
	if !ok {
		return nil, errors.NotFound("session")
	}
	return &s, nil
}

func (f *fakeSessions) Rotate(ctx context.Context, id, oldToken, newToken string, expiresAt time.Time) (bool, error) {
	s, ok := f.byID[id]
	if !ok || s.RevokedAt != nil || s.RefreshTokenHash != repository.HashToken(oldToken) {
		return false, nil
	}
	s.RefreshTokenHash = repository.HashToken(newToken)
	s.ExpiresAt = expiresAt
	f.byID[id] = s
	return true, nil
}

func (f *fakeSessions) Revoke(ctx context.Context, id string) error {
	s := f.byID[id]
	now := time.Now()
	s.RevokedAt = &now
	f.byID[id] = s
	return nil
}

func (f *fakeSessions) RevokeAllForUser(ctx context.Context, userID string) error {
	for id, s := range f.byID {
		if s.UserID == userID && s.RevokedAt == nil {
			now := time.Now()
			s.RevokedAt = &now
			f.byID[id] = s
		}
	}
	return nil
}

func (f *fakeSessions) DeleteExpired(ctx context.Context) (int64, error) {
	var n int64
	for id, s := range f.byID {
		if !s.Usable(time.Now()) {
			delete(f.byID, id)
			n++
		}
	}
	return n, nil
}

func (f *fakeSessions) live(userID string) int {
	n := 0
	for _, s := range f.byID {
		if s.UserID == userID && s.Usable(time.Now()) {
			n++
		}
	}
	return n
}

type harness struct {
	roles    *fakeRoles
	users    *fakeUsers
	sessions *fakeSessions
	tokens   *jwt.Manager
	auth     *AuthService
	accounts *AccountService
}

func newHarness() *harness {
	roles := &fakeRoles{byID: map[string]domain.Role{
		testutil.RoleAdminID:   {ID: testutil.RoleAdminID, Name: "admin", Permissions: []string{"*"}},
		testutil.RoleCashierID: {ID: testutil.RoleCashierID, Name: "cashier", Permissions: []string{"orders.*", "products.read"}},
	}}
	users := &fakeUsers{byID: map[string]domain.User{}, roles: roles}
	sessions := &fakeSessions{byID: map[string]domain.Session{}}
	tokens := jwt.NewManager(&config.JWTConfig{
		Secret:        "test-secret",
		AccessExpiry:  15 * time.Minute,
		RefreshExpiry: 24 * time.Hour,
		Issuer:        "pharmacare-test",
	})

	accounts := NewAccountService(users, roles, sessions, logger.Nop())
	accounts.cost = bcrypt.MinCost
	return &harness{
		roles:    roles,
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		auth:     NewAuthService(users, sessions, tokens, logger.Nop()),
		accounts: accounts,
	}
}

// addUser stores an active cashier whose password is "password123".
func (h *harness) addUser(t *testing.T, username string) domain.User {
	t.Helper()
	u, err := h.accounts.CreateUser(context.Background(), CreateUserInput{
		Username: username,
		Email:    username + "@example.com",
		Password: "password123",
		RoleID:   testutil.RoleCashierID,
	})
	require.NoError(t, err)
	return *u
}

func asUser(id string) context.Context {
	return actor.WithActor(context.Background(), &actor.Actor{ID: id, Permissions: []string{"*"}})
}

func requireAppError(t *testing.T, err error, code string) {
	t.Helper()
	var appErr *errors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError %s, got %v", code, err)
	assert.Equal(t, code, appErr.Code)
}
