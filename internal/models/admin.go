package models

import "time"

// The Admin* types are flat, read-only projections of the IAM tables served by
// the admin panel. Columns are tagged explicitly because the panel selects by
// tag, and secrets such as password hashes are simply not mapped.

type AdminUser struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Name      string    `gorm:"column:name"`
	Email     string    `gorm:"column:email"`
	Image     *string   `gorm:"column:image" admin:"listDisplay:exclude"`
	IsActive  bool      `gorm:"column:is_active"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (AdminUser) TableName() string        { return "users" }
func (AdminUser) AdminName() string        { return "users" }
func (AdminUser) AdminDisplayName() string { return "Users" }

type AdminRole struct {
	ID          string    `gorm:"column:id;primaryKey"`
	Code        string    `gorm:"column:code"`
	Name        string    `gorm:"column:name"`
	Description *string   `gorm:"column:description" admin:"listDisplay:exclude"`
	IsActive    bool      `gorm:"column:is_active"`
	CreatedAt   time.Time `gorm:"column:created_at"`
}

func (AdminRole) TableName() string        { return "roles" }
func (AdminRole) AdminName() string        { return "roles" }
func (AdminRole) AdminDisplayName() string { return "Roles" }

type AdminPermission struct {
	ID          string         `gorm:"column:id;primaryKey"`
	Code        string         `gorm:"column:code"`
	Name        string         `gorm:"column:name"`
	Type        PermissionType `gorm:"column:type"`
	Description *string        `gorm:"column:description" admin:"listDisplay:exclude"`
	IsActive    bool           `gorm:"column:is_active"`
	CreatedAt   time.Time      `gorm:"column:created_at"`
}

func (AdminPermission) TableName() string        { return "permissions" }
func (AdminPermission) AdminName() string        { return "permissions" }
func (AdminPermission) AdminDisplayName() string { return "Permissions" }

type AdminMenu struct {
	ID        string    `gorm:"column:id;primaryKey"`
	Slug      string    `gorm:"column:slug"`
	Name      string    `gorm:"column:name"`
	Href      *string   `gorm:"column:href"`
	ParentID  *string   `gorm:"column:parent_id" admin:"listDisplay:exclude"`
	IsActive  bool      `gorm:"column:is_active"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (AdminMenu) TableName() string        { return "menus" }
func (AdminMenu) AdminName() string        { return "menus" }
func (AdminMenu) AdminDisplayName() string { return "Menus" }

// AdminModels lists the projections registered on the admin panel.
func AdminModels() []interface{} {
	return []interface{}{
		&AdminUser{},
		&AdminRole{},
		&AdminPermission{},
		&AdminMenu{},
	}
}
