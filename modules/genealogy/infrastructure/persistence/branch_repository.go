package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/shajara-uz/shajara/modules/genealogy/domain/aggregates/branch"
	"github.com/shajara-uz/shajara/pkg/composables"
)

const branchColumns = `
	id, surname, city_name, region, country, admin_region_id,
	total_people, total_generations, created_at, updated_at`

type BranchRepository struct{}

func NewBranchRepository() branch.Repository {
	return &BranchRepository{}
}

func (r *BranchRepository) GetByID(ctx context.Context, id uuid.UUID) (branch.Branch, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return branch.Branch{}, err
	}
	row := tx.QueryRow(ctx, `SELECT`+branchColumns+` FROM family_branches WHERE id = $1`, pgUUID(id))
	b, err := scanBranch(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return branch.Branch{}, branch.ErrNotFound
	}
	return b, err
}

func (r *BranchRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) ([]branch.Branch, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx,
		`SELECT`+branchColumns+` FROM family_branches WHERE id = ANY($1) ORDER BY surname, id`,
		pgtype.FlatArray[uuid.UUID](ids),
	)
	if err != nil {
		return nil, errors.Wrap(err, "get branches by ids")
	}
	defer rows.Close()

	var out []branch.Branch
	for rows.Next() {
		b, err := scanBranch(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *BranchRepository) UpdateStats(ctx context.Context, id uuid.UUID, totalPeople, totalGenerations int) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
UPDATE family_branches SET total_people = $2, total_generations = $3, updated_at = now()
WHERE id = $1`, pgUUID(id), totalPeople, totalGenerations)
	if err != nil {
		return errors.Wrap(err, "update branch stats")
	}
	if tag.RowsAffected() == 0 {
		return branch.ErrNotFound
	}
	return nil
}

func scanBranch(row pgx.Row) (branch.Branch, error) {
	var (
		id                            pgtype.UUID
		surname, cityName             string
		region, country               pgtype.Text
		adminRegionID                 pgtype.UUID
		totalPeople, totalGenerations int
		createdAt, updatedAt          pgtype.Timestamptz
	)
	if err := row.Scan(
		&id, &surname, &cityName, &region, &country, &adminRegionID,
		&totalPeople, &totalGenerations, &createdAt, &updatedAt,
	); err != nil {
		return branch.Branch{}, err
	}
	return branch.Hydrate(
		asUUID(id),
		surname, cityName, region.String, country.String,
		asUUIDPtr(adminRegionID),
		totalPeople, totalGenerations,
		asTime(createdAt), asTime(updatedAt),
	), nil
}
