package repo

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/auth_service/internal/models"
)

type SessionFilter struct {
	UserID  uuid.UUID
	Since   time.Time
	Actions []string
	Limit   int
	Offset  int
}

func (r *GormRepo) CreateSession(ctx context.Context, s *models.Session) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	if s.CreatedAt.IsZero() {
		s.CreatedAt = time.Now()
	}
	s.CreatedAt = s.CreatedAt.UTC()
	db, cancel := r.bound(ctx)
	defer cancel()
	return translate(db.Create(s).Error)
}

// ListSessions returns the user's records newest first.
func (r *GormRepo) ListSessions(ctx context.Context, f SessionFilter) ([]models.Session, error) {
	db, cancel := r.bound(ctx)
	defer cancel()

	q := db.Where("user_id = ?", f.UserID)
	if !f.Since.IsZero() {
		q = q.Where("created_at >= ?", f.Since.UTC())
	}
	if len(f.Actions) > 0 {
		q = q.Where("action IN ?", f.Actions)
	}

	sessions := []models.Session{}
	err := q.Order("created_at DESC").Order("id DESC").
		Limit(f.Limit).Offset(f.Offset).
		Find(&sessions).Error
	if err != nil {
		return nil, err
	}
	return sessions, nil
}

func (r *GormRepo) GetSession(ctx context.Context, id uuid.UUID) (*models.Session, error) {
	db, cancel := r.bound(ctx)
	defer cancel()
	var s models.Session
	if err := db.Where("id = ?", id).First(&s).Error; err != nil {
		return nil, translate(err)
	}
	return &s, nil
}

// DeleteSession removes a record owned by userID. ErrNotFound when the
// record is absent or belongs to another user.
func (r *GormRepo) DeleteSession(ctx context.Context, userID, id uuid.UUID) error {
	db, cancel := r.bound(ctx)
	defer cancel()
	res := db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Session{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
