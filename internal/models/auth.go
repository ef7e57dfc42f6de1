package models

import (
	"time"
)

type User struct {
	Base
	Name     string  `gorm:"not null" json:"name"`
	Email    string  `gorm:"uniqueIndex;not null" json:"email"`
	Password string  `gorm:"not null" json:"-"`
	Image    *string `json:"image"`
	// ImageURL is a presigned link for avatars stored in the object store.
	ImageURL string `gorm:"-" json:"imageUrl,omitempty"`
	IsActive bool   `gorm:"not null;default:true" json:"-"`
	Roles    []Role `gorm:"many2many:user_roles;" json:"roles,omitempty"`
}

// UserRole is the user_roles join row. CreatedAt records assignment order.
type UserRole struct {
	UserID    string    `gorm:"type:uuid;primaryKey"`
	RoleID    string    `gorm:"type:uuid;primaryKey"`
	CreatedAt time.Time `gorm:"index"`
}

// Verification is a hashed, single-family exchange secret.
type Verification struct {
	Base
	Value     string            `gorm:"uniqueIndex;not null" json:"-"`
	Scope     VerificationScope `gorm:"not null;index:idx_verification_user_scope" json:"scope"`
	UserID    string            `gorm:"type:uuid;not null;index:idx_verification_user_scope" json:"userId"`
	User      *User             `gorm:"constraint:OnDelete:CASCADE" json:"-"`
	ExpiredAt time.Time         `gorm:"not null;index" json:"expiredAt"`
}
