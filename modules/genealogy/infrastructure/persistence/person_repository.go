package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/shajara-uz/shajara/modules/genealogy/domain/aggregates/person"
	"github.com/shajara-uz/shajara/pkg/composables"
)

const personColumns = `
	id, branch_id, full_name, given_name, surname, maiden_name, gender,
	father_id, mother_id, generation_number, generation_label,
	birth_date, death_date, is_living, created_at, updated_at`

type PersonRepository struct{}

func NewPersonRepository() person.Repository {
	return &PersonRepository{}
}

func (r *PersonRepository) GetByID(ctx context.Context, id uuid.UUID) (person.Person, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return person.Person{}, err
	}
	row := tx.QueryRow(ctx, `SELECT`+personColumns+` FROM persons WHERE id = $1`, pgUUID(id))
	p, err := scanPerson(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return person.Person{}, person.ErrNotFound
	}
	return p, err
}

func (r *PersonRepository) ListByBranch(ctx context.Context, branchID uuid.UUID) ([]person.Person, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `SELECT`+personColumns+` FROM persons WHERE branch_id = $1 ORDER BY full_name, id`, pgUUID(branchID))
	if err != nil {
		return nil, errors.Wrap(err, "list persons by branch")
	}
	return scanPersons(rows)
}

func (r *PersonRepository) HasChildren(ctx context.Context, id uuid.UUID) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, err
	}
	var exists bool
	err = tx.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM persons WHERE father_id = $1 OR mother_id = $1)`,
		pgUUID(id),
	).Scan(&exists)
	return exists, err
}

func (r *PersonRepository) SearchOutsideBranch(ctx context.Context, branchID uuid.UUID, query string, limit int) ([]person.Person, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 100
	}
	rows, err := tx.Query(ctx, `
SELECT`+personColumns+`
FROM persons
WHERE branch_id <> $1 AND full_name ILIKE '%' || $2 || '%'
ORDER BY full_name, id
LIMIT $3`, pgUUID(branchID), query, limit)
	if err != nil {
		return nil, errors.Wrap(err, "search persons outside branch")
	}
	return scanPersons(rows)
}

func (r *PersonRepository) Create(ctx context.Context, p person.Person) (person.Person, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return person.Person{}, err
	}
	row := tx.QueryRow(ctx, `
INSERT INTO persons (
	branch_id, full_name, given_name, surname, maiden_name, gender,
	father_id, mother_id, birth_date, death_date, is_living
)
VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
RETURNING`+personColumns,
		pgUUID(p.BranchID()),
		p.FullName(),
		p.GivenName(),
		p.Surname(),
		p.MaidenName(),
		string(p.Gender()),
		pgNullableUUID(p.FatherID()),
		pgNullableUUID(p.MotherID()),
		pgNullableTimestamptz(p.BirthDate()),
		pgNullableTimestamptz(p.DeathDate()),
		p.IsLiving(),
	)
	return scanPerson(row)
}

func (r *PersonRepository) Update(ctx context.Context, p person.Person) (person.Person, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return person.Person{}, err
	}
	row := tx.QueryRow(ctx, `
UPDATE persons SET
	full_name = $2,
	given_name = $3,
	surname = $4,
	maiden_name = $5,
	gender = $6,
	father_id = $7,
	mother_id = $8,
	birth_date = $9,
	death_date = $10,
	is_living = $11,
	updated_at = now()
WHERE id = $1
RETURNING`+personColumns,
		pgUUID(p.ID()),
		p.FullName(),
		p.GivenName(),
		p.Surname(),
		p.MaidenName(),
		string(p.Gender()),
		pgNullableUUID(p.FatherID()),
		pgNullableUUID(p.MotherID()),
		pgNullableTimestamptz(p.BirthDate()),
		pgNullableTimestamptz(p.DeathDate()),
		p.IsLiving(),
	)
	updated, err := scanPerson(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return person.Person{}, person.ErrNotFound
	}
	return updated, err
}

func (r *PersonRepository) UpdateGeneration(ctx context.Context, id uuid.UUID, number int, label string) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `
UPDATE persons SET generation_number = $2, generation_label = $3, updated_at = now()
WHERE id = $1`, pgUUID(id), number, label)
	if err != nil {
		return errors.Wrap(err, "update person generation")
	}
	if tag.RowsAffected() == 0 {
		return person.ErrNotFound
	}
	return nil
}

func (r *PersonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, `DELETE FROM persons WHERE id = $1`, pgUUID(id))
	if err != nil {
		return errors.Wrap(err, "delete person")
	}
	if tag.RowsAffected() == 0 {
		return person.ErrNotFound
	}
	return nil
}

func scanPersons(rows pgx.Rows) ([]person.Person, error) {
	defer rows.Close()
	var out []person.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func scanPerson(row pgx.Row) (person.Person, error) {
	var (
		id, branchID                             pgtype.UUID
		fullName, givenName, surname, maidenName string
		gender                                   string
		fatherID, motherID                       pgtype.UUID
		generationNumber                         pgtype.Int4
		generationLabel                          pgtype.Text
		birthDate, deathDate                     pgtype.Timestamptz
		isLiving                                 bool
		createdAt, updatedAt                     pgtype.Timestamptz
	)
	if err := row.Scan(
		&id, &branchID, &fullName, &givenName, &surname, &maidenName, &gender,
		&fatherID, &motherID, &generationNumber, &generationLabel,
		&birthDate, &deathDate, &isLiving, &createdAt, &updatedAt,
	); err != nil {
		return person.Person{}, err
	}
	return person.Hydrate(
		asUUID(id),
		asUUID(branchID),
		fullName, givenName, surname, maidenName,
		person.Gender(gender),
		asUUIDPtr(fatherID), asUUIDPtr(motherID),
		asIntPtr(generationNumber),
		generationLabel.String,
		asTimePtr(birthDate), asTimePtr(deathDate),
		isLiving,
		asTime(createdAt), asTime(updatedAt),
	), nil
}
