package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shajara-uz/shajara/modules/genealogy/domain/entities/role"
	"github.com/shajara-uz/shajara/modules/genealogy/services"
	"github.com/shajara-uz/shajara/pkg/composables"
)

// MembershipRepository reads role state owned by the membership
// collaborator (branch_members and users tables) and maps it onto the
// core's closed role enum.
type MembershipRepository struct{}

func NewMembershipRepository() services.Authorizer {
	return &MembershipRepository{}
}

func (r *MembershipRepository) RoleInBranch(ctx context.Context, branchID, userID uuid.UUID) (role.Role, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return role.None, err
	}

	elevated, err := r.HasElevatedAuthority(ctx, userID)
	if err != nil {
		return role.None, err
	}
	if elevated {
		return role.ElevatedAuthority, nil
	}

	var memberRole string
	err = tx.QueryRow(ctx, `
SELECT role FROM branch_members
WHERE branch_id = $1 AND user_id = $2 AND status = 'active'`,
		pgUUID(branchID), pgUUID(userID),
	).Scan(&memberRole)
	if errors.Is(err, pgx.ErrNoRows) {
		return role.None, nil
	}
	if err != nil {
		return role.None, errors.Wrap(err, "resolve branch role")
	}

	switch memberRole {
	case "guru":
		return role.BranchModerator, nil
	default:
		return role.Member, nil
	}
}

func (r *MembershipRepository) HasElevatedAuthority(ctx context.Context, userID uuid.UUID) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	var elevated bool
	err = tx.QueryRow(ctx, `
SELECT EXISTS(
	SELECT 1 FROM users
	WHERE id = $1 AND global_role IN ('SUPER_GURU', 'ADMIN')
)`, pgUUID(userID)).Scan(&elevated)
	if err != nil {
		return false, errors.Wrap(err, "resolve elevated authority")
	}
	return elevated, nil
}
