package service

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/auth_service/internal/hash"
	"github.com/Skotchmaster/auth_service/internal/logging"
	"github.com/Skotchmaster/auth_service/internal/models"
	"github.com/Skotchmaster/auth_service/internal/repo"
)

type UserService struct {
	Repo   *repo.GormRepo
	Hasher *hash.Hasher
	Auth   *AuthService
}

type Profile struct {
	User  *models.User
	Roles []string
}

// UserPatch carries optional changes. Nil fields are left alone.
type UserPatch struct {
	Email    *string
	Username *string
	FullName *string
	Password *string
}

func (s *UserService) Profile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, unavailable(err)
	}
	roles, err := s.Repo.RoleNamesForUser(ctx, userID)
	if err != nil {
		return nil, unavailable(err)
	}
	return &Profile{User: user, Roles: roles}, nil
}

func (s *UserService) Patch(ctx context.Context, userID uuid.UUID, p UserPatch) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "users.patch")

	user, err := s.Repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, unavailable(err)
	}

	var email, username string
	if p.Email != nil {
		email = strings.TrimSpace(*p.Email)
		if email == "" {
			return nil, invalid("email cannot be empty")
		}
	}
	if p.Username != nil {
		username = strings.TrimSpace(*p.Username)
		if username == "" {
			return nil, invalid("username cannot be empty")
		}
	}
	if err := s.Auth.ensureFree(ctx, user.ID, email, username); err != nil {
		return nil, err
	}

	if email != "" {
		user.Email = email
	}
	if username != "" {
		user.Username = username
	}
	if p.FullName != nil {
		user.FullName = *p.FullName
	}
	if p.Password != nil {
		if *p.Password == "" {
			return nil, invalid("password cannot be empty")
		}
		pwHash, err := s.Hasher.Hash(*p.Password)
		if err != nil {
			if errors.Is(err, hash.ErrPasswordTooLong) {
				return nil, invalid(err.Error())
			}
			return nil, err
		}
		user.PasswordHash = pwHash
	}

	if err := s.Repo.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, s.Auth.classifyDuplicate(ctx, user.ID, user.Email)
		}
		l.Error("patch_failed", "user_id", userID, "error", err)
		return nil, unavailable(err)
	}
	l.Info("patch_success", "user_id", userID)
	return user, nil
}
