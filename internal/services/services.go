// Package services implements the role, permission, menu and user
// management operations that sit next to the auth engine.
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"iam/internal/errs"
	"iam/internal/models"
	"iam/internal/repository"
	console "iam/internal/utils/logger"
)

var log = console.New("SERVICES")

// fail passes classified errors through and hides everything else behind Internal.
func fail(op string, err error) error {
	if _, ok := errs.As(err); ok {
		return err
	}
	log.Error("Failed to %s", err, op)
	return errs.Internal(err)
}

func isNotFound(err error) bool {
	return errors.Is(err, repository.ErrNotFound)
}

// RoleCodeLookup is what code validation needs from the role store.
type RoleCodeLookup interface {
	CodeExists(ctx context.Context, code string) (bool, error)
}

// checkResourceCode validates a <rolecode>:<action> code. field prefixes the
// returned messages.
func checkResourceCode(ctx context.Context, roles RoleCodeLookup, field, code string) (string, error) {
	scope, action, ok := models.SplitPermissionCode(code)
	if !ok || scope != strings.ToLower(scope) || action != strings.ToLower(action) {
		return fmt.Sprintf("%s must be in format <rolecode>:<action> (lowercase)", field), nil
	}
	if !models.IsCRUDAction(action) {
		return fmt.Sprintf("%s action must be one of create|read|update|delete (lowercase)", field), nil
	}
	exists, err := roles.CodeExists(ctx, scope)
	if err != nil {
		return "", err
	}
	if !exists {
		return fmt.Sprintf("%s %s has invalid rolecode \"%s\" not found", field, code, scope), nil
	}
	return "", nil
}
