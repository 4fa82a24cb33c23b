package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Kind string

const (
	KindLinkRequested  Kind = "link_requested"
	KindLinkApproved   Kind = "link_approved"
	KindLinkRejected   Kind = "link_rejected"
	KindPrimaryChanged Kind = "primary_changed"
	KindRecalculated   Kind = "generations_recalculated"
)

// Notification is an operator-facing message addressed to one branch's
// moderators. Write-mostly; the reading surface lives elsewhere.
type Notification struct {
	ID        uuid.UUID
	BranchID  uuid.UUID
	Kind      Kind
	Message   string
	LinkID    *uuid.UUID
	CreatedAt time.Time
	ReadAt    *time.Time
}

type Repository interface {
	Create(ctx context.Context, n Notification) (Notification, error)
	ListUnreadByBranch(ctx context.Context, branchID uuid.UUID) ([]Notification, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
}
