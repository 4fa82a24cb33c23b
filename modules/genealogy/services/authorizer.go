package services

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/shajara-uz/shajara/modules/genealogy/domain/entities/role"
)

// Authorizer resolves actor roles. Membership and user administration
// are owned by an external collaborator; this port only reads its state.
type Authorizer interface {
	// RoleInBranch returns the actor's role inside the given branch, or
	// role.None for non-members.
	RoleInBranch(ctx context.Context, branchID, userID uuid.UUID) (role.Role, error)
	// HasElevatedAuthority reports whether the actor holds the
	// cross-branch authority required for primary-bridge management.
	HasElevatedAuthority(ctx context.Context, userID uuid.UUID) (bool, error)
}

func requireBranchCapability(ctx context.Context, authz Authorizer, branchID, userID uuid.UUID, c role.Capability) error {
	r, err := authz.RoleInBranch(ctx, branchID, userID)
	if err != nil {
		return mapPgError(err)
	}
	if !r.Can(c) {
		return newServiceError(http.StatusForbidden, "GENEALOGY_FORBIDDEN", "branch moderator rights required", nil)
	}
	return nil
}

func requireElevatedAuthority(ctx context.Context, authz Authorizer, userID uuid.UUID) error {
	elevated, err := authz.HasElevatedAuthority(ctx, userID)
	if err != nil {
		return mapPgError(err)
	}
	if !elevated {
		return newServiceError(http.StatusForbidden, "GENEALOGY_FORBIDDEN", "elevated authority required", nil)
	}
	return nil
}
