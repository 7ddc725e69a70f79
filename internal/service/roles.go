package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/auth_service/internal/logging"
	"github.com/Skotchmaster/auth_service/internal/models"
	"github.com/Skotchmaster/auth_service/internal/repo"
)

type RoleService struct {
	Repo *repo.GormRepo
}

func roleErr(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, repo.ErrNotFound):
		return ErrNotFound
	case errors.Is(err, repo.ErrDuplicate):
		return ErrDuplicateRole
	default:
		return unavailable(err)
	}
}

func cleanRoleName(name string) (string, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return "", invalid("role name is required")
	}
	return name, nil
}

func (s *RoleService) List(ctx context.Context) ([]models.Role, error) {
	roles, err := s.Repo.ListRoles(ctx)
	return roles, roleErr(err)
}

func (s *RoleService) Create(ctx context.Context, name string) (*models.Role, error) {
	name, err := cleanRoleName(name)
	if err != nil {
		return nil, err
	}
	role := &models.Role{Name: name}
	if err := s.Repo.CreateRole(ctx, role); err != nil {
		return nil, roleErr(err)
	}
	logging.FromContext(ctx).Info("role_created", "role_id", role.ID, "name", role.Name)
	return role, nil
}

func (s *RoleService) Get(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	role, err := s.Repo.GetRole(ctx, id)
	if err != nil {
		return nil, roleErr(err)
	}
	return role, nil
}

// Update renames a role. Keeping the current name is allowed.
func (s *RoleService) Update(ctx context.Context, id uuid.UUID, name string) (*models.Role, error) {
	name, err := cleanRoleName(name)
	if err != nil {
		return nil, err
	}
	role, err := s.Repo.RenameRole(ctx, id, name)
	if err != nil {
		return nil, roleErr(err)
	}
	return role, nil
}

func (s *RoleService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.Repo.DeleteRole(ctx, id); err != nil {
		return roleErr(err)
	}
	logging.FromContext(ctx).Info("role_deleted", "role_id", id)
	return nil
}

func (s *RoleService) Assign(ctx context.Context, userID, roleID uuid.UUID) error {
	if err := s.Repo.AssignRole(ctx, userID, roleID); err != nil {
		return roleErr(err)
	}
	logging.FromContext(ctx).Info("role_assigned", "user_id", userID, "role_id", roleID)
	return nil
}

func (s *RoleService) Unassign(ctx context.Context, userID, roleID uuid.UUID) error {
	if err := s.Repo.UnassignRole(ctx, userID, roleID); err != nil {
		return roleErr(err)
	}
	logging.FromContext(ctx).Info("role_unassigned", "user_id", userID, "role_id", roleID)
	return nil
}

func (s *RoleService) RolesForUser(ctx context.Context, userID uuid.UUID) ([]models.Role, error) {
	if _, err := s.Repo.GetUserByID(ctx, userID); err != nil {
		return nil, roleErr(err)
	}
	roles, err := s.Repo.RolesForUser(ctx, userID)
	return roles, roleErr(err)
}

// EnsureRole returns the role called name, creating it when missing.
func (s *RoleService) EnsureRole(ctx context.Context, name string) (*models.Role, error) {
	name, err := cleanRoleName(name)
	if err != nil {
		return nil, err
	}
	role, err := s.Repo.GetRoleByName(ctx, name)
	if err == nil {
		return role, nil
	}
	if !errors.Is(err, repo.ErrNotFound) {
		return nil, unavailable(err)
	}
	role, err = s.Create(ctx, name)
	if errors.Is(err, ErrDuplicateRole) {
		role, err = s.Repo.GetRoleByName(ctx, name)
		return role, roleErr(err)
	}
	return role, err
}
