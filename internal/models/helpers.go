package models

import (
	"strings"
)

// CRUDActions are the actions a resource permission code may carry.
var CRUDActions = []string{"create", "read", "update", "delete"}

// IsCRUDAction checks if a given action is one of CRUDActions
func IsCRUDAction(action string) bool {
	for _, a := range CRUDActions {
		if a == action {
			return true
		}
	}
	return false
}

// SplitPermissionCode splits "<scope>:<action>". ok is false unless there is
// exactly one separator and both halves are non-empty.
func SplitPermissionCode(code string) (scope, action string, ok bool) {
	parts := strings.Split(code, ":")
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// PermissionCode joins a scope and an action.
func PermissionCode(scope, action string) string {
	return scope + ":" + action
}
