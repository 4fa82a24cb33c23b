package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/shajara-uz/shajara/modules/genealogy/domain/aggregates/partnership"
	"github.com/shajara-uz/shajara/pkg/composables"
)

type PartnershipRepository struct{}

func NewPartnershipRepository() partnership.Repository {
	return &PartnershipRepository{}
}

func (r *PartnershipRepository) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]partnership.Partnership, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT id, branch_id, person1_id, person2_id, partnership_type,
	start_date, end_date, is_current, created_at, updated_at
FROM partnerships
WHERE branch_id = $1
ORDER BY created_at, id`, pgUUID(branchID))
	if err != nil {
		return nil, errors.Wrap(err, "list partnerships by branch")
	}
	defer rows.Close()

	var out []partnership.Partnership
	for rows.Next() {
		var (
			id, bID, person1ID, person2ID pgtype.UUID
			partnershipType               string
			startDate, endDate            pgtype.Timestamptz
			isCurrent                     bool
			createdAt, updatedAt          pgtype.Timestamptz
		)
		if err := rows.Scan(
			&id, &bID, &person1ID, &person2ID, &partnershipType,
			&startDate, &endDate, &isCurrent, &createdAt, &updatedAt,
		); err != nil {
			return nil, err
		}
		out = append(out, partnership.Hydrate(
			asUUID(id),
			asUUID(bID),
			asUUID(person1ID), asUUID(person2ID),
			partnership.Type(partnershipType),
			asTimePtr(startDate), asTimePtr(endDate),
			isCurrent,
			asTime(createdAt), asTime(updatedAt),
		))
	}
	return out, rows.Err()
}
