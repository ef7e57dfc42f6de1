package auth

import (
	"context"
	"fmt"

	"iam/internal/models"
)

type PermissionView struct {
	ID   string                `json:"id"`
	Code string                `json:"code"`
	Type models.PermissionType `json:"type"`
}

// PermissionPayload is what a role may do, split by permission type.
type PermissionPayload struct {
	Routes    []PermissionView `json:"routes"`
	Resources []PermissionView `json:"resources"`
}

// HasRoutes reports whether every code is among the route permissions.
func (p *PermissionPayload) HasRoutes(codes ...string) bool {
	if len(codes) == 0 {
		return true
	}
	if p == nil {
		return false
	}
	held := make(map[string]struct{}, len(p.Routes))
	for _, r := range p.Routes {
		held[r.Code] = struct{}{}
	}
	for _, c := range codes {
		if _, ok := held[c]; !ok {
			return false
		}
	}
	return true
}

func (p *PermissionPayload) ResourceCodes() []string {
	if p == nil {
		return nil
	}
	codes := make([]string, 0, len(p.Resources))
	for _, r := range p.Resources {
		codes = append(codes, r.Code)
	}
	return codes
}

// PermissionResolver loads a role's permissions on every call. Nothing is cached,
// so revocations apply to the next request.
type PermissionResolver struct {
	repo PermissionRepository
}

func NewPermissionResolver(repo PermissionRepository) *PermissionResolver {
	return &PermissionResolver{repo: repo}
}

func (r *PermissionResolver) Resolve(ctx context.Context, roleID string) (*PermissionPayload, error) {
	perms, err := r.repo.FindActiveByRole(ctx, roleID)
	if err != nil {
		return nil, fmt.Errorf("failed to load permissions for role %s: %w", roleID, err)
	}

	payload := &PermissionPayload{
		Routes:    []PermissionView{},
		Resources: []PermissionView{},
	}
	for _, p := range perms {
		view := PermissionView{ID: p.ID, Code: p.Code, Type: p.Type}
		switch p.Type {
		case models.PermissionTypeRoute:
			payload.Routes = append(payload.Routes, view)
		case models.PermissionTypeResource:
			payload.Resources = append(payload.Resources, view)
		default:
			log.Warn("Ignoring permission %s with unknown type %q", p.Code, p.Type)
		}
	}
	return payload, nil
}
