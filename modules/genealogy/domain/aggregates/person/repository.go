package person

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Person, error)
	ListByBranch(ctx context.Context, branchID uuid.UUID) ([]Person, error)
	HasChildren(ctx context.Context, id uuid.UUID) (bool, error)
	// SearchOutsideBranch returns persons whose home branch differs from
	// branchID and whose full name contains query, case-insensitively,
	// ordered by full name. limit <= 0 means no limit.
	SearchOutsideBranch(ctx context.Context, branchID uuid.UUID, query string, limit int) ([]Person, error)
	Create(ctx context.Context, p Person) (Person, error)
	Update(ctx context.Context, p Person) (Person, error)
	UpdateGeneration(ctx context.Context, id uuid.UUID, number int, label string) error
	Delete(ctx context.Context, id uuid.UUID) error
}
