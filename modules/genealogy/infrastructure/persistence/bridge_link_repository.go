package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/shajara-uz/shajara/modules/genealogy/domain/aggregates/bridgelink"
	"github.com/shajara-uz/shajara/pkg/composables"
)

const bridgeLinkColumns = `
	id, person_id, source_branch_id, target_branch_id, status,
	display_name, notes, requested_by,
	source_approved_by, source_approved_at,
	target_approved_by, target_approved_at,
	is_primary_bridge, primary_set_by, primary_set_at,
	display_generation_override, created_at, updated_at`

type BridgeLinkRepository struct{}

func NewBridgeLinkRepository() bridgelink.Repository {
	return &BridgeLinkRepository{}
}

func (r *BridgeLinkRepository) GetByID(ctx context.Context, id uuid.UUID) (bridgelink.BridgeLink, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return bridgelink.BridgeLink{}, err
	}
	row := tx.QueryRow(ctx, `SELECT`+bridgeLinkColumns+` FROM branch_person_links WHERE id = $1`, pgUUID(id))
	l, err := scanBridgeLink(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return bridgelink.BridgeLink{}, bridgelink.ErrNotFound
	}
	return l, err
}

func (r *BridgeLinkRepository) List(ctx context.Context, params *bridgelink.FindParams) ([]bridgelink.BridgeLink, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	query := `SELECT` + bridgeLinkColumns + ` FROM branch_person_links WHERE 1=1`
	args := []any{}
	if params != nil && params.BranchID != uuid.Nil {
		args = append(args, pgUUID(params.BranchID))
		query += ` AND (source_branch_id = $1 OR target_branch_id = $1)`
	}
	if params != nil && params.Status != nil {
		args = append(args, string(*params.Status))
		if len(args) == 1 {
			query += ` AND status = $1`
		} else {
			query += ` AND status = $2`
		}
	}
	query += ` ORDER BY created_at, id`

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "list bridge links")
	}
	return scanBridgeLinks(rows)
}

func (r *BridgeLinkRepository) ListActive(ctx context.Context) ([]bridgelink.BridgeLink, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT`+bridgeLinkColumns+`
FROM branch_person_links
WHERE status <> 'rejected'
ORDER BY created_at, id`)
	if err != nil {
		return nil, errors.Wrap(err, "list active bridge links")
	}
	return scanBridgeLinks(rows)
}

func (r *BridgeLinkRepository) ListActiveByPair(ctx context.Context, a, b uuid.UUID) ([]bridgelink.BridgeLink, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT`+bridgeLinkColumns+`
FROM branch_person_links
WHERE status <> 'rejected' AND branch_pair_key = $1
ORDER BY created_at, id`, bridgelink.PairKey(a, b))
	if err != nil {
		return nil, errors.Wrap(err, "list active bridge links by pair")
	}
	return scanBridgeLinks(rows)
}

func (r *BridgeLinkRepository) FindActiveForPersonAndTarget(ctx context.Context, personID, targetBranchID uuid.UUID) (bridgelink.BridgeLink, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return bridgelink.BridgeLink{}, err
	}
	row := tx.QueryRow(ctx, `
SELECT`+bridgeLinkColumns+`
FROM branch_person_links
WHERE status <> 'rejected' AND person_id = $1 AND target_branch_id = $2
LIMIT 1`, pgUUID(personID), pgUUID(targetBranchID))
	l, err := scanBridgeLink(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return bridgelink.BridgeLink{}, bridgelink.ErrNotFound
	}
	return l, err
}

func (r *BridgeLinkRepository) HasActiveForPerson(ctx context.Context, personID uuid.UUID) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM branch_person_links WHERE status <> 'rejected' AND person_id = $1)`,
		pgUUID(personID),
	).Scan(&exists)
	return exists, err
}

func (r *BridgeLinkRepository) Create(ctx context.Context, l bridgelink.BridgeLink) (bridgelink.BridgeLink, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return bridgelink.BridgeLink{}, err
	}
	row := tx.QueryRow(ctx, `
INSERT INTO branch_person_links (
	person_id, source_branch_id, target_branch_id, branch_pair_key,
	status, display_name, notes, requested_by
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
RETURNING`+bridgeLinkColumns,
		pgUUID(l.PersonID()),
		pgUUID(l.SourceBranchID()),
		pgUUID(l.TargetBranchID()),
		l.PairKey(),
		string(l.Status()),
		l.DisplayName(),
		l.Notes(),
		pgUUID(l.RequestedBy()),
	)
	return scanBridgeLink(row)
}

func (r *BridgeLinkRepository) Update(ctx context.Context, l bridgelink.BridgeLink) (bridgelink.BridgeLink, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return bridgelink.BridgeLink{}, err
	}
	row := tx.QueryRow(ctx, `
UPDATE branch_person_links SET
	status = $2,
	display_name = $3,
	notes = $4,
	source_approved_by = $5,
	source_approved_at = $6,
	target_approved_by = $7,
	target_approved_at = $8,
	is_primary_bridge = $9,
	primary_set_by = $10,
	primary_set_at = $11,
	display_generation_override = $12,
	updated_at = now()
WHERE id = $1
RETURNING`+bridgeLinkColumns,
		pgUUID(l.ID()),
		string(l.Status()),
		l.DisplayName(),
		l.Notes(),
		pgNullableUUID(l.SourceApprovedBy()),
		pgNullableTimestamptz(l.SourceApprovedAt()),
		pgNullableUUID(l.TargetApprovedBy()),
		pgNullableTimestamptz(l.TargetApprovedAt()),
		l.IsPrimaryBridge(),
		pgNullableUUID(l.PrimarySetBy()),
		pgNullableTimestamptz(l.PrimarySetAt()),
		pgNullableInt4(l.GenerationOverride()),
	)
	updated, err := scanBridgeLink(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return bridgelink.BridgeLink{}, bridgelink.ErrNotFound
	}
	return updated, err
}

func (r *BridgeLinkRepository) ClearPrimaryForPair(ctx context.Context, a, b uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `
UPDATE branch_person_links SET
	is_primary_bridge = false,
	primary_set_by = NULL,
	primary_set_at = NULL,
	updated_at = now()
WHERE branch_pair_key = $1 AND is_primary_bridge`, bridgelink.PairKey(a, b))
	return errors.Wrap(err, "clear primary for pair")
}

func scanBridgeLinks(rows pgx.Rows) ([]bridgelink.BridgeLink, error) {
	defer rows.Close()
	var out []bridgelink.BridgeLink
	for rows.Next() {
		l, err := scanBridgeLink(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func scanBridgeLink(row pgx.Row) (bridgelink.BridgeLink, error) {
	var (
		id, personID                       pgtype.UUID
		sourceBranchID, targetBranchID     pgtype.UUID
		status                             string
		displayName, notes                 pgtype.Text
		requestedBy                        pgtype.UUID
		sourceApprovedBy, targetApprovedBy pgtype.UUID
		sourceApprovedAt, targetApprovedAt pgtype.Timestamptz
		isPrimaryBridge                    bool
		primarySetBy                       pgtype.UUID
		primarySetAt                       pgtype.Timestamptz
		generationOverride                 pgtype.Int4
		createdAt, updatedAt               pgtype.Timestamptz
	)
	if err := row.Scan(
		&id, &personID, &sourceBranchID, &targetBranchID, &status,
		&displayName, &notes, &requestedBy,
		&sourceApprovedBy, &sourceApprovedAt,
		&targetApprovedBy, &targetApprovedAt,
		&isPrimaryBridge, &primarySetBy, &primarySetAt,
		&generationOverride, &createdAt, &updatedAt,
	); err != nil {
		return bridgelink.BridgeLink{}, err
	}
	return bridgelink.Hydrate(
		asUUID(id),
		asUUID(personID), asUUID(sourceBranchID), asUUID(targetBranchID),
		bridgelink.Status(status),
		displayName.String, notes.String,
		asUUID(requestedBy),
		asUUIDPtr(sourceApprovedBy), asTimePtr(sourceApprovedAt),
		asUUIDPtr(targetApprovedBy), asTimePtr(targetApprovedAt),
		isPrimaryBridge,
		asUUIDPtr(primarySetBy), asTimePtr(primarySetAt),
		asIntPtr(generationOverride),
		asTime(createdAt), asTime(updatedAt),
	), nil
}
