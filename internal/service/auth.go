package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/auth_service/internal/events"
	"github.com/Skotchmaster/auth_service/internal/hash"
	"github.com/Skotchmaster/auth_service/internal/logging"
	"github.com/Skotchmaster/auth_service/internal/models"
	"github.com/Skotchmaster/auth_service/internal/repo"
	"github.com/Skotchmaster/auth_service/internal/revocation"
	"github.com/Skotchmaster/auth_service/internal/tokens"
)

const TokenTypeBearer = "bearer"

type AuthService struct {
	Repo       *repo.GormRepo
	Hasher     *hash.Hasher
	Codec      *tokens.Codec
	Revoked    *revocation.Store
	Sessions   *SessionLedger
	Events     events.Publisher
	AccessTTL  time.Duration
	RefreshTTL time.Duration
	Now        func() time.Time

	dummyOnce sync.Once
	dummyHash string
}

type SignupInput struct {
	Email    string
	Username string
	Password string
	FullName string
}

type TokenPair struct {
	AccessToken      string
	RefreshToken     string
	TokenType        string
	AccessExpiresAt  time.Time
	RefreshExpiresAt time.Time
}

func (s *AuthService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *AuthService) publish(ctx context.Context, typ string, userID uuid.UUID, userAgent string) {
	if s.Events == nil {
		return
	}
	ev := events.Event{Type: typ, UserID: userID, UserAgent: userAgent, At: s.now().UTC()}
	if err := s.Events.Publish(ctx, userID.String(), ev); err != nil {
		logging.FromContext(ctx).Warn("event_publish_failed", "event", typ, "error", err)
	}
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "auth.signup")

	in.Email = strings.TrimSpace(in.Email)
	in.Username = strings.TrimSpace(in.Username)
	if in.Email == "" || in.Username == "" || in.Password == "" {
		return nil, invalid("email, username and password are required")
	}

	if err := s.ensureFree(ctx, uuid.Nil, in.Email, in.Username); err != nil {
		l.Warn("signup_rejected", "error", err)
		return nil, err
	}

	pwHash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		if errors.Is(err, hash.ErrPasswordTooLong) {
			return nil, invalid(err.Error())
		}
		l.Error("signup_error", "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Email:        in.Email,
		Username:     in.Username,
		PasswordHash: pwHash,
		FullName:     in.FullName,
	}
	if err := s.Repo.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			// lost a race with a concurrent signup
			return nil, s.classifyDuplicate(ctx, uuid.Nil, in.Email)
		}
		l.Error("signup_error", "error", err)
		return nil, unavailable(err)
	}

	l.Info("signup_success", "user_id", user.ID)
	s.publish(ctx, events.UserRegistered, user.ID, "")
	return user, nil
}

// ensureFree checks email before username. self is skipped so a user can
// keep their own values.
func (s *AuthService) ensureFree(ctx context.Context, self uuid.UUID, email, username string) error {
	if email != "" {
		u, err := s.Repo.GetUserByEmail(ctx, email)
		switch {
		case err == nil && u.ID != self:
			return ErrDuplicateEmail
		case err != nil && !errors.Is(err, repo.ErrNotFound):
			return unavailable(err)
		}
	}
	if username != "" {
		u, err := s.Repo.GetUserByUsername(ctx, username)
		switch {
		case err == nil && u.ID != self:
			return ErrDuplicateUsername
		case err != nil && !errors.Is(err, repo.ErrNotFound):
			return unavailable(err)
		}
	}
	return nil
}

func (s *AuthService) classifyDuplicate(ctx context.Context, self uuid.UUID, email string) error {
	if u, err := s.Repo.GetUserByEmail(ctx, email); err == nil && u.ID != self {
		return ErrDuplicateEmail
	}
	return ErrDuplicateUsername
}

func (s *AuthService) Login(ctx context.Context, email, password, userAgent string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	user, err := s.Repo.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			s.burnHash(password)
			l.Warn("login_failed", "reason", "unknown email")
			return nil, ErrInvalidCredentials
		}
		l.Error("login_failed", "error", err)
		return nil, unavailable(err)
	}
	if !s.Hasher.Verify(password, user.PasswordHash) {
		l.Warn("login_failed", "reason", "wrong password", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	roles, err := s.Repo.RoleNamesForUser(ctx, user.ID)
	if err != nil {
		l.Error("login_failed", "error", err)
		return nil, unavailable(err)
	}

	pair, err := s.IssueTokenPair(user, roles)
	if err != nil {
		l.Error("login_failed", "reason", "cannot sign tokens", "error", err)
		return nil, err
	}

	if _, err := s.Sessions.Record(ctx, user.ID, userAgent, models.ActionLogin, s.now()); err != nil {
		l.Error("login_failed", "reason", "cannot record session", "error", err)
		return nil, err
	}

	l.Info("login_success", "user_id", user.ID)
	s.publish(ctx, events.UserLoggedIn, user.ID, userAgent)
	return pair, nil
}

// burnHash spends the same bcrypt work as a real comparison so unknown
// emails and wrong passwords take similar time.
func (s *AuthService) burnHash(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.Hasher.Hash(uuid.NewString())
	})
	s.Hasher.Verify(password, s.dummyHash)
}

// IssueTokenPair signs an access and a refresh token from one snapshot of
// the user and roles. Each token gets its own jti.
func (s *AuthService) IssueTokenPair(user *models.User, roles []string) (*TokenPair, error) {
	if roles == nil {
		roles = []string{}
	}
	now := s.now()
	accessExp := now.Add(s.AccessTTL).Truncate(time.Second)
	refreshExp := now.Add(s.RefreshTTL).Truncate(time.Second)

	access, err := s.Codec.Encode(tokens.Claims{
		UserID:    user.ID,
		Email:     user.Email,
		Roles:     roles,
		JTI:       uuid.NewString(),
		ExpiresAt: accessExp,
		Refresh:   false,
	})
	if err != nil {
		return nil, err
	}
	refresh, err := s.Codec.Encode(tokens.Claims{
		UserID:    user.ID,
		Email:     user.Email,
		Roles:     roles,
		JTI:       uuid.NewString(),
		ExpiresAt: refreshExp,
		Refresh:   true,
	})
	if err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:      access,
		RefreshToken:     refresh,
		TokenType:        TokenTypeBearer,
		AccessExpiresAt:  accessExp,
		RefreshExpiresAt: refreshExp,
	}, nil
}

// verify decodes token and rejects it when revoked or when the revocation
// store cannot be read.
func (s *AuthService) verify(ctx context.Context, token string) (*tokens.Claims, error) {
	claims, err := s.Codec.Decode(token)
	if err != nil {
		return nil, unauthorized(err)
	}
	revoked, err := s.Revoked.IsRevoked(ctx, claims.JTI)
	if err != nil {
		logging.FromContext(ctx).Error("revocation_check_failed", "error", err)
		return nil, unauthorized(err)
	}
	if revoked {
		return nil, unauthorized(errors.New("token revoked"))
	}
	return claims, nil
}

// CheckAccess returns the claims of a live token. With requiredRoles set,
// the token must carry at least one of them.
func (s *AuthService) CheckAccess(ctx context.Context, token string, requiredRoles []string) (*tokens.Claims, error) {
	claims, err := s.verify(ctx, token)
	if err != nil {
		return nil, err
	}
	if len(requiredRoles) > 0 && !claims.HasAnyRole(requiredRoles) {
		logging.FromContext(ctx).Info("access_denied", "user_id", claims.UserID, "required", requiredRoles)
		return nil, ErrForbidden
	}
	return claims, nil
}

// Refresh consumes a refresh token and issues a new pair. A refresh token
// is accepted once.
func (s *AuthService) Refresh(ctx context.Context, refreshToken, userAgent string) (*TokenPair, error) {
	l := logging.FromContext(ctx).With("svc", "auth.refresh")

	claims, err := s.verify(ctx, refreshToken)
	if err != nil {
		l.Warn("refresh_denied", "error", err)
		return nil, err
	}
	if !claims.Refresh {
		l.Warn("refresh_denied", "reason", "not a refresh token", "user_id", claims.UserID)
		return nil, unauthorized(errors.New("not a refresh token"))
	}

	user, err := s.Repo.GetUserByID(ctx, claims.UserID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			l.Warn("refresh_denied", "reason", "user no longer exists", "user_id", claims.UserID)
			return nil, unauthorized(err)
		}
		return nil, unavailable(err)
	}
	roles, err := s.Repo.RoleNamesForUser(ctx, user.ID)
	if err != nil {
		return nil, unavailable(err)
	}

	first, err := s.Revoked.RevokeOnce(ctx, claims.JTI, claims.ExpiresAt)
	if err != nil {
		l.Error("refresh_failed", "reason", "cannot revoke consumed token", "error", err)
		return nil, unavailable(err)
	}
	if !first {
		l.Warn("refresh_denied", "reason", "token already used", "user_id", user.ID)
		return nil, unauthorized(errors.New("token already used"))
	}

	pair, err := s.IssueTokenPair(user, roles)
	if err != nil {
		return nil, err
	}
	if _, err := s.Sessions.Record(ctx, user.ID, userAgent, models.ActionRefresh, s.now()); err != nil {
		return nil, err
	}

	l.Info("refresh_success", "user_id", user.ID)
	s.publish(ctx, events.TokensRefreshed, user.ID, userAgent)
	return pair, nil
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *AuthService) Logout(ctx context.Context, token, userAgent string) error {
	l := logging.FromContext(ctx).With("svc", "auth.logout")

	claims, err := s.verify(ctx, token)
	if err != nil {
		l.Warn("logout_denied", "error", err)
		return err
	}
	if err := s.Revoked.RevokeUntil(ctx, claims.JTI, claims.ExpiresAt); err != nil {
		l.Error("logout_failed", "reason", "cannot revoke token", "error", err)
		return unavailable(err)
	}
	if _, err := s.Sessions.Record(ctx, claims.UserID, userAgent, models.ActionLogout, s.now()); err != nil {
		return err
	}

	l.Info("logout_success", "user_id", claims.UserID)
	s.publish(ctx, events.UserLoggedOut, claims.UserID, userAgent)
	return nil
}
