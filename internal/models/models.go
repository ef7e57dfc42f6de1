package models

import (
	"gorm.io/datatypes"
)

type Menu struct {
	Base
	Slug     string  `gorm:"uniqueIndex;not null" json:"slug"`
	Name     string  `gorm:"not null" json:"name"`
	Icon     *string `json:"icon"`
	Href     *string `json:"href"`
	ParentID *string `gorm:"type:uuid;index" json:"parentId"`
	Parent   *Menu   `gorm:"constraint:OnDelete:SET NULL" json:"-"`
	Children []Menu  `gorm:"foreignKey:ParentID" json:"children,omitempty"`
	// ResourcePermissions lists <rolecode>:<action> codes; empty means visible to everyone.
	ResourcePermissions datatypes.JSONSlice[string] `gorm:"not null" json:"-"`
	IsActive            bool                        `gorm:"not null;default:true" json:"-"`
}

// VisibleTo reports whether a caller holding the given resource codes may see m.
func (m *Menu) VisibleTo(codes []string) bool {
	if !m.IsActive {
		return false
	}
	if len(m.ResourcePermissions) == 0 {
		return true
	}
	for _, want := range m.ResourcePermissions {
		for _, have := range codes {
			if want == have {
				return true
			}
		}
	}
	return false
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Role{},
		&Permission{},
		&Verification{},
		&Menu{},
	}
}
