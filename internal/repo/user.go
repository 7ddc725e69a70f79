package repo

import (
	"context"

	"github.com/google/uuid"

	"github.com/Skotchmaster/auth_service/internal/models"
)

func (r *GormRepo) CreateUser(ctx context.Context, u *models.User) error {
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	db, cancel := r.bound(ctx)
	defer cancel()
	return translate(db.Create(u).Error)
}

func (r *GormRepo) UpdateUser(ctx context.Context, u *models.User) error {
	db, cancel := r.bound(ctx)
	defer cancel()
	res := db.Model(u).Select("Email", "Username", "PasswordHash", "FullName", "UpdatedAt").Updates(u)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *GormRepo) GetUserByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	return r.findUser(ctx, "id = ?", id)
}

func (r *GormRepo) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.findUser(ctx, "email = ?", email)
}

func (r *GormRepo) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findUser(ctx, "username = ?", username)
}

func (r *GormRepo) findUser(ctx context.Context, query string, arg interface{}) (*models.User, error) {
	db, cancel := r.bound(ctx)
	defer cancel()
	var user models.User
	if err := db.Where(query, arg).First(&user).Error; err != nil {
		return nil, translate(err)
	}
	return &user, nil
}
