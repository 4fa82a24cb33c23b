package partnership

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	ListByBranch(ctx context.Context, branchID uuid.UUID) ([]Partnership, error)
}
