package branch

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (Branch, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]Branch, error)
	UpdateStats(ctx context.Context, id uuid.UUID, totalPeople, totalGenerations int) error
}
