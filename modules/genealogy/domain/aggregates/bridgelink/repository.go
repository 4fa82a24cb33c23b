package bridgelink

import (
	"context"

	"github.com/google/uuid"
)

type FindParams struct {
	// BranchID matches either side of the link.
	BranchID uuid.UUID
	Status   *Status
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (BridgeLink, error)
	List(ctx context.Context, params *FindParams) ([]BridgeLink, error)
	// ListActive returns every pending or approved link, ordered by
	// creation time.
	ListActive(ctx context.Context) ([]BridgeLink, error)
	// ListActiveByPair returns the pending/approved links connecting the
	// unordered branch pair {a, b} in either direction.
	ListActiveByPair(ctx context.Context, a, b uuid.UUID) ([]BridgeLink, error)
	// FindActiveForPersonAndTarget returns the non-rejected link for the
	// (person, target branch) pair, or ErrNotFound.
	FindActiveForPersonAndTarget(ctx context.Context, personID, targetBranchID uuid.UUID) (BridgeLink, error)
	HasActiveForPerson(ctx context.Context, personID uuid.UUID) (bool, error)
	Create(ctx context.Context, l BridgeLink) (BridgeLink, error)
	Update(ctx context.Context, l BridgeLink) (BridgeLink, error)
	// ClearPrimaryForPair unsets primary flags on every link of the
	// unordered branch pair {a, b}.
	ClearPrimaryForPair(ctx context.Context, a, b uuid.UUID) error
}
