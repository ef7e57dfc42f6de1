package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base contains common columns for all tables
type Base struct {
	ID        string    `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate will set a UUID rather than numeric ID
func (base *Base) BeforeCreate(tx *gorm.DB) error {
	if base.ID == "" {
		base.ID = uuid.New().String()
	}
	return nil
}

type PermissionType string

const (
	PermissionTypeRoute    PermissionType = "Route"
	PermissionTypeResource PermissionType = "Resource"
)

// VerificationScope names what an exchange record may be redeemed for.
type VerificationScope string

const (
	VerificationScopeSelectRole VerificationScope = "SelectRole"
)

// IsValidPermissionType checks if a given type is valid
func IsValidPermissionType(t PermissionType) bool {
	switch t {
	case PermissionTypeRoute, PermissionTypeResource:
		return true
	default:
		return false
	}
}
