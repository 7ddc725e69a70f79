package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Skotchmaster/auth_service/internal/models"
)

func (r *GormRepo) ListRoles(ctx context.Context) ([]models.Role, error) {
	db, cancel := r.bound(ctx)
	defer cancel()
	roles := []models.Role{}
	if err := db.Order("name").Find(&roles).Error; err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *GormRepo) CreateRole(ctx context.Context, role *models.Role) error {
	if role.ID == uuid.Nil {
		role.ID = uuid.New()
	}
	db, cancel := r.bound(ctx)
	defer cancel()
	return translate(db.Create(role).Error)
}

func (r *GormRepo) GetRole(ctx context.Context, id uuid.UUID) (*models.Role, error) {
	db, cancel := r.bound(ctx)
	defer cancel()
	var role models.Role
	if err := db.Where("id = ?", id).First(&role).Error; err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

func (r *GormRepo) GetRoleByName(ctx context.Context, name string) (*models.Role, error) {
	db, cancel := r.bound(ctx)
	defer cancel()
	var role models.Role
	if err := db.Where("name = ?", name).First(&role).Error; err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

func (r *GormRepo) RenameRole(ctx context.Context, id uuid.UUID, name string) (*models.Role, error) {
	db, cancel := r.bound(ctx)
	defer cancel()
	res := db.Model(&models.Role{}).Where("id = ?", id).Updates(map[string]interface{}{
		"name":       name,
		"updated_at": time.Now().UTC(),
	})
	if res.Error != nil {
		return nil, translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return nil, ErrNotFound
	}
	var role models.Role
	if err := db.Where("id = ?", id).First(&role).Error; err != nil {
		return nil, translate(err)
	}
	return &role, nil
}

// DeleteRole removes the role and every assignment of it in one transaction.
func (r *GormRepo) DeleteRole(ctx context.Context, id uuid.UUID) error {
	db, cancel := r.bound(ctx)
	defer cancel()
	return db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("role_id = ?", id).Delete(&models.UserRole{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&models.Role{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// AssignRole is idempotent. ErrNotFound when the user or the role is absent.
func (r *GormRepo) AssignRole(ctx context.Context, userID, roleID uuid.UUID) error {
	db, cancel := r.bound(ctx)
	defer cancel()
	return db.Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.User{}, userID); err != nil {
			return err
		}
		if err := exists(tx, &models.Role{}, roleID); err != nil {
			return err
		}
		link := models.UserRole{UserID: userID, RoleID: roleID}
		return translate(tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&link).Error)
	})
}

// UnassignRole is a no-op when the role is not assigned. ErrNotFound when
// the user or the role is absent.
func (r *GormRepo) UnassignRole(ctx context.Context, userID, roleID uuid.UUID) error {
	db, cancel := r.bound(ctx)
	defer cancel()
	return db.Transaction(func(tx *gorm.DB) error {
		if err := exists(tx, &models.User{}, userID); err != nil {
			return err
		}
		if err := exists(tx, &models.Role{}, roleID); err != nil {
			return err
		}
		return tx.Where("user_id = ? AND role_id = ?", userID, roleID).Delete(&models.UserRole{}).Error
	})
}

func (r *GormRepo) RolesForUser(ctx context.Context, userID uuid.UUID) ([]models.Role, error) {
	db, cancel := r.bound(ctx)
	defer cancel()
	roles := []models.Role{}
	err := db.Model(&models.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.name").
		Find(&roles).Error
	if err != nil {
		return nil, err
	}
	return roles, nil
}

func (r *GormRepo) RoleNamesForUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	db, cancel := r.bound(ctx)
	defer cancel()
	names := []string{}
	err := db.Model(&models.Role{}).
		Joins("JOIN user_roles ON user_roles.role_id = roles.id").
		Where("user_roles.user_id = ?", userID).
		Order("roles.name").
		Pluck("roles.name", &names).Error
	if err != nil {
		return nil, err
	}
	return names, nil
}

func exists(tx *gorm.DB, model interface{}, id uuid.UUID) error {
	var n int64
	if err := tx.Model(model).Where("id = ?", id).Count(&n).Error; err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
