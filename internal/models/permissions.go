package models

type Role struct {
	Base
	Code        string       `gorm:"uniqueIndex;not null" json:"code"`
	Name        string       `gorm:"not null" json:"name"`
	Description *string      `json:"description"`
	IsActive    bool         `gorm:"not null;default:true" json:"-"`
	Users       []User       `gorm:"many2many:user_roles;" json:"-"`
	Permissions []Permission `gorm:"many2many:role_permissions;" json:"permissions,omitempty"`
}

type Permission struct {
	Base
	Code        string         `gorm:"uniqueIndex;not null" json:"code"`
	Name        string         `gorm:"not null" json:"name"`
	Description *string        `json:"description"`
	Type        PermissionType `gorm:"not null;default:'Route';index" json:"type"`
	IsActive    bool           `gorm:"not null;default:true" json:"-"`
	Roles       []Role         `gorm:"many2many:role_permissions;" json:"roles,omitempty"`
}
