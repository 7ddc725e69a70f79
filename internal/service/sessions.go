package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/auth_service/internal/audit"
	"github.com/Skotchmaster/auth_service/internal/kv"
	"github.com/Skotchmaster/auth_service/internal/logging"
	"github.com/Skotchmaster/auth_service/internal/models"
	"github.com/Skotchmaster/auth_service/internal/repo"
	"github.com/Skotchmaster/auth_service/internal/util"
)

const sessionKeyPrefix = "session:"

// SessionLedger is the append-only history of auth events per user. The
// database is the source of truth. Cache and Indexer are optional mirrors.
type SessionLedger struct {
	Repo     *repo.GormRepo
	Cache    *kv.Store
	CacheTTL time.Duration
	Indexer  audit.Indexer
	// ActiveWindow is how long a login or refresh record may still back a
	// live refresh token.
	ActiveWindow time.Duration
	Now          func() time.Time
}

func sessionKey(id uuid.UUID) string {
	return sessionKeyPrefix + id.String()
}

func (l *SessionLedger) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l *SessionLedger) Record(ctx context.Context, userID uuid.UUID, userAgent, action string, at time.Time) (*models.Session, error) {
	log := logging.FromContext(ctx).With("svc", "sessions.record")

	s := &models.Session{
		UserID:    userID,
		UserAgent: userAgent,
		Action:    action,
		CreatedAt: at,
	}
	if err := l.Repo.CreateSession(ctx, s); err != nil {
		log.Error("session_record_failed", "error", err)
		return nil, unavailable(err)
	}

	if l.Cache != nil {
		if err := l.Cache.SetJSON(ctx, sessionKey(s.ID), s, l.CacheTTL); err != nil {
			log.Warn("session_cache_failed", "session_id", s.ID, "error", err)
		}
	}
	if l.Indexer != nil {
		if err := l.Indexer.IndexSession(ctx, *s); err != nil {
			log.Warn("session_index_failed", "session_id", s.ID, "error", err)
		}
	}
	return s, nil
}

// ListForUser pages through the user's records, newest first. activeOnly
// keeps login and refresh records younger than ActiveWindow.
func (l *SessionLedger) ListForUser(ctx context.Context, userID uuid.UUID, activeOnly bool, pageSize, pageNumber int) ([]models.Session, error) {
	offset, limit, err := util.Calculate(pageNumber, pageSize)
	if err != nil {
		return nil, invalid(err.Error())
	}

	f := repo.SessionFilter{UserID: userID, Limit: limit, Offset: offset}
	if activeOnly {
		f.Since = l.now().Add(-l.ActiveWindow)
		f.Actions = []string{models.ActionLogin, models.ActionRefresh}
	}

	sessions, err := l.Repo.ListSessions(ctx, f)
	if err != nil {
		return nil, unavailable(err)
	}
	return sessions, nil
}

// Get returns a record owned by userID, reading the cache first.
func (l *SessionLedger) Get(ctx context.Context, userID, id uuid.UUID) (*models.Session, error) {
	if l.Cache != nil {
		var cached models.Session
		err := l.Cache.GetJSON(ctx, sessionKey(id), &cached)
		if err == nil {
			if cached.UserID != userID {
				return nil, ErrNotFound
			}
			return &cached, nil
		}
		if !errors.Is(err, kv.ErrNotFound) {
			logging.FromContext(ctx).Warn("session_cache_read_failed", "session_id", id, "error", err)
		}
	}

	s, err := l.Repo.GetSession(ctx, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, unavailable(err)
	}
	if s.UserID != userID {
		return nil, ErrNotFound
	}

	if l.Cache != nil {
		_ = l.Cache.SetJSON(ctx, sessionKey(s.ID), s, l.CacheTTL)
	}
	return s, nil
}

// Delete removes a record owned by userID. Records of other users look absent.
func (l *SessionLedger) Delete(ctx context.Context, userID, id uuid.UUID) error {
	if err := l.Repo.DeleteSession(ctx, userID, id); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}
		return unavailable(err)
	}
	if l.Cache != nil {
		if err := l.Cache.Delete(ctx, sessionKey(id)); err != nil {
			logging.FromContext(ctx).Warn("session_cache_evict_failed", "session_id", id, "error", err)
		}
	}
	return nil
}
