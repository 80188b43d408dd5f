package service

import (
	"context"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/pharmacare/pharmacare-backend/internal/auth/domain"
	"github.com/pharmacare/pharmacare-backend/internal/auth/repository"
	"github.com/pharmacare/pharmacare-backend/pkg/actor"
	"github.com/pharmacare/pharmacare-backend/pkg/errors"
	"github.com/pharmacare/pharmacare-backend/pkg/logger"
	"github.com/pharmacare/pharmacare-backend/pkg/permissions"
)

// CreateUserInput carries a new account
type CreateUserInput struct {
	Username  string `json:"username" validate:"required,min=3,max=50,excludes=@"`
	Email     string `json:"email" validate:"required,email"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
	FirstName string `json:"first_name" validate:"max=100"`
	LastName  string `json:"last_name" validate:"max=100"`
	RoleID    string `json:"role_id" validate:"required,uuid"`
}

// UpdateUserInput changes only the fields that are set
type UpdateUserInput struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	Password  *string `json:"password" validate:"omitempty,min=8,max=72"`
	FirstName *string `json:"first_name" validate:"omitempty,max=100"`
	LastName  *string `json:"last_name" validate:"omitempty,max=100"`
	RoleID    *string `json:"role_id" validate:"omitempty,uuid"`
	IsActive  *bool   `json:"is_active"`
}

// RoleInput carries the editable role fields
type RoleInput struct {
	Name        string   `json:"name" validate:"required,max=50"`
	Description string   `json:"description" validate:"max=500"`
	Permissions []string `json:"permissions" validate:"required,min=1"`
}

// AccountService manages users and roles
type AccountService struct {
	users    UserStore
	roles    RoleStore
	sessions SessionStore
	logger   *logger.Logger
	cost     int
}

// NewAccountService creates a new account service
func NewAccountService(users UserStore, roles RoleStore, sessions SessionStore, log *logger.Logger) *AccountService {
	return &AccountService{
		users:    users,
		roles:    roles,
		sessions: sessions,
		logger:   log.WithComponent("accounts"),
		cost:     bcrypt.DefaultCost,
	}
}

// ============================================================================
// USERS
// ============================================================================

// ListUsers lists users
func (s *AccountService) ListUsers(ctx context.Context, filter repository.UserFilter, page, perPage int) ([]domain.User, int64, error) {
	return s.users.List(ctx, filter, page, perPage)
}

// GetUser gets a user
func (s *AccountService) GetUser(ctx context.Context, id string) (*domain.User, error) {
	return s.users.GetByID(ctx, id)
}

// CreateUser creates an active user with a hashed password
func (s *AccountService) CreateUser(ctx context.Context, in CreateUserInput) (*domain.User, error) {
	if _, err := s.roles.GetByID(ctx, in.RoleID); err != nil {
		return nil, err
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	u := &domain.User{
		Username:     strings.TrimSpace(in.Username),
		Email:        strings.TrimSpace(in.Email),
		PasswordHash: hash,
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		RoleID:       in.RoleID,
		IsActive:     true,
	}
	if err := s.users.Create(ctx, u); err != nil {
		return nil, err
	}
	s.logger.Info().Str("user_id", u.ID).Str("actor_id", actor.IDFromContext(ctx)).Msg("user created")
	return s.users.GetByID(ctx, u.ID)
}

// UpdateUser applies in. Changing the password or deactivating the user
// signs them out everywhere.
func (s *AccountService) UpdateUser(ctx context.Context, id string, in UpdateUserInput) (*domain.User, error) {
	u, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	signOut := false
	if in.Email != nil {
		u.Email = strings.TrimSpace(*in.Email)
	}
	if in.FirstName != nil {
		u.FirstName = *in.FirstName
	}
	if in.LastName != nil {
		u.LastName = *in.LastName
	}
	if in.RoleID != nil && *in.RoleID != u.RoleID {
		if _, err := s.roles.GetByID(ctx, *in.RoleID); err != nil {
			return nil, err
		}
		u.RoleID = *in.RoleID
	}
	if in.IsActive != nil {
		if !*in.IsActive && id == actor.IDFromContext(ctx) {
			return nil, errors.BadRequest("you cannot deactivate your own account")
		}
		signOut = u.IsActive && !*in.IsActive
		u.IsActive = *in.IsActive
	}
	if in.Password != nil {
		hash, err := s.hash(*in.Password)
		if err != nil {
			return nil, err
		}
		u.PasswordHash = hash
		signOut = true
	}

	if err := s.users.Update(ctx, u); err != nil {
		return nil, err
	}
	if signOut {
		if err := s.sessions.RevokeAllForUser(ctx, id); err != nil {
			s.logger.Warn().Err(err).Str("user_id", id).Msg("failed to revoke sessions")
		}
	}
	s.logger.Info().Str("user_id", id).Str("actor_id", actor.IDFromContext(ctx)).Msg("user updated")
	return s.users.GetByID(ctx, id)
}

// DeleteUser deletes a user other than the caller
func (s *AccountService) DeleteUser(ctx context.Context, id string) error {
	if id == actor.IDFromContext(ctx) {
		return errors.BadRequest("you cannot delete your own account")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("user_id", id).Str("actor_id", actor.IDFromContext(ctx)).Msg("user deleted")
	return nil
}

func (s *AccountService) hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", errors.Internal("failed to hash password")
	}
	return string(hash), nil
}

// ============================================================================
// ROLES
// ============================================================================

// ListRoles lists every role
func (s *AccountService) ListRoles(ctx context.Context) ([]domain.Role, error) {
	return s.roles.List(ctx)
}

// GetRole gets a role
func (s *AccountService) GetRole(ctx context.Context, id string) (*domain.Role, error) {
	return s.roles.GetByID(ctx, id)
}

// CreateRole creates a role after checking its permissions
func (s *AccountService) CreateRole(ctx context.Context, in RoleInput) (*domain.Role, error) {
	role := &domain.Role{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
		Permissions: permissions.MergePermissions(in.Permissions),
	}
	if err := role.Validate(); err != nil {
		return nil, err
	}
	if err := s.roles.Create(ctx, role); err != nil {
		return nil, err
	}
	s.logger.Info().Str("role_id", role.ID).Str("actor_id", actor.IDFromContext(ctx)).Msg("role created")
	return role, nil
}

// UpdateRole replaces a role's fields. Holders see the new permissions
// when their tokens are next refreshed.
func (s *AccountService) UpdateRole(ctx context.Context, id string, in RoleInput) (*domain.Role, error) {
	role, err := s.roles.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	role.Name = strings.TrimSpace(in.Name)
	role.Description = in.Description
	role.Permissions = permissions.MergePermissions(in.Permissions)
	if err := role.Validate(); err != nil {
		return nil, err
	}
	if err := s.roles.Update(ctx, role); err != nil {
		return nil, err
	}
	s.logger.Info().Str("role_id", id).Str("actor_id", actor.IDFromContext(ctx)).Msg("role updated")
	return role, nil
}

// DeleteRole deletes a role no user holds
func (s *AccountService) DeleteRole(ctx context.Context, id string) error {
	if _, err := s.roles.GetByID(ctx, id); err != nil {
		return err
	}
	n, err := s.roles.CountUsers(ctx, id)
	if err != nil {
		return err
	}
	if n > 0 {
		return errors.Conflict("role is still assigned to users")
	}
	if err := s.roles.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info().Str("role_id", id).Str("actor_id", actor.IDFromContext(ctx)).Msg("role deleted")
	return nil
}
