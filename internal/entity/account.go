package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
)

func (r Role) Valid() bool {
	return r == RoleUser || r == RoleAdmin
}

type Visibility string

const (
	VisibilityPublic  Visibility = "PUBLIC"
	VisibilityPrivate Visibility = "PRIVATE"
)

func (v Visibility) Valid() bool {
	return v == VisibilityPublic || v == VisibilityPrivate
}

type Account struct {
	ID           uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Username     string     `gorm:"size:50;uniqueIndex;not null" json:"username"`
	Email        string     `gorm:"size:100;uniqueIndex;not null" json:"email"`
	PasswordHash string     `gorm:"size:255;not null" json:"-"`
	DisplayName  string     `gorm:"size:100;not null" json:"display_name"`
	Bio          *string    `gorm:"type:text" json:"bio,omitempty"`
	AvatarURL    *string    `gorm:"type:text" json:"avatar_url,omitempty"`
	Role         Role       `gorm:"size:10;not null;default:USER;index" json:"role"`
	Visibility   Visibility `gorm:"size:10;not null;default:PUBLIC" json:"visibility"`
	Active       bool       `gorm:"not null;default:true;index" json:"active"`
	CreatedAt    time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt    time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (a *Account) IsAdmin() bool {
	return a.Role == RoleAdmin
}

func (a *Account) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}

// BeforeSave keeps administrator accounts out of public discovery.
func (a *Account) BeforeSave(tx *gorm.DB) error {
	if a.Role == "" {
		a.Role = RoleUser
	}
	if a.Visibility == "" {
		a.Visibility = VisibilityPublic
	}
	if a.Role == RoleAdmin {
		a.Visibility = VisibilityPrivate
	}
	return nil
}
