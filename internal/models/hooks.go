package models

import (
	"fmt"
	"strings"

	"iam/internal/events"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

func (u *User) AfterCreate(tx *gorm.DB) error {
	log.Info("User created %s", u.Email)
	events.Emit("user.created", u.ID)
	return nil
}

func (r *Role) BeforeSave(tx *gorm.DB) error {
	r.Code = strings.ToLower(strings.TrimSpace(r.Code))
	return nil
}

func (p *Permission) BeforeSave(tx *gorm.DB) error {
	p.Code = strings.TrimSpace(p.Code)
	if p.Type == "" {
		p.Type = PermissionTypeRoute
	}
	if !IsValidPermissionType(p.Type) {
		return fmt.Errorf("invalid permission type %q", p.Type)
	}
	return nil
}

func (m *Menu) BeforeSave(tx *gorm.DB) error {
	if m.ResourcePermissions == nil {
		m.ResourcePermissions = datatypes.JSONSlice[string]{}
	}
	return nil
}
