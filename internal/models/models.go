package models

import (
	"time"

	"github.com/google/uuid"
)

const (
	ActionLogin   = "login"
	ActionLogout  = "logout"
	ActionRefresh = "refresh"
)

type Identity struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
}

type Timestamps struct {
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type User struct {
	Identity
	Email        string `gorm:"uniqueIndex;not null;size:255" json:"email"`
	Username     string `gorm:"uniqueIndex;not null;size:255" json:"username"`
	PasswordHash string `gorm:"not null"                      json:"-"`
	FullName     string `gorm:"size:255"                      json:"full_name"`
	Timestamps
}

type Role struct {
	Identity
	Name string `gorm:"uniqueIndex;not null;size:255" json:"name"`
	Timestamps
}

// UserRole links a user to a role. The pair is the primary key, so a user
// holds a role at most once.
type UserRole struct {
	UserID    uuid.UUID `gorm:"type:uuid;primaryKey" json:"user_id"`
	RoleID    uuid.UUID `gorm:"type:uuid;primaryKey;index" json:"role_id"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is an append-only record of one auth event for a user.
type Session struct {
	Identity
	UserID    uuid.UUID `gorm:"type:uuid;index;not null" json:"user_id"`
	UserAgent string    `gorm:"size:512"                 json:"user_agent"`
	Action    string    `gorm:"size:32;not null"         json:"action"`
	CreatedAt time.Time `gorm:"index"                    json:"created_at"`
}

func All() []any {
	return []any{&User{}, &Role{}, &UserRole{}, &Session{}}
}
