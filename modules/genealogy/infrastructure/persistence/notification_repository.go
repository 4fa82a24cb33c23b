package persistence

import (
	"context"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/shajara-uz/shajara/modules/genealogy/domain/entities/notification"
	"github.com/shajara-uz/shajara/pkg/composables"
)

type NotificationRepository struct{}

func NewNotificationRepository() notification.Repository {
	return &NotificationRepository{}
}

func (r *NotificationRepository) Create(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return notification.Notification{}, err
	}
	var (
		id        pgtype.UUID
		createdAt pgtype.Timestamptz
	)
	err = tx.QueryRow(ctx, `
INSERT INTO notifications (branch_id, kind, message, link_id)
VALUES ($1,$2,$3,$4)
RETURNING id, created_at`,
		pgUUID(n.BranchID),
		string(n.Kind),
		n.Message,
		pgNullableUUID(n.LinkID),
	).Scan(&id, &createdAt)
	if err != nil {
		return notification.Notification{}, errors.Wrap(err, "create notification")
	}
	n.ID = asUUID(id)
	n.CreatedAt = asTime(createdAt)
	return n, nil
}

func (r *NotificationRepository) ListUnreadByBranch(ctx context.Context, branchID uuid.UUID) ([]notification.Notification, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	rows, err := tx.Query(ctx, `
SELECT id, branch_id, kind, message, link_id, created_at, read_at
FROM notifications
WHERE branch_id = $1 AND read_at IS NULL
ORDER BY created_at DESC, id`, pgUUID(branchID))
	if err != nil {
		return nil, errors.Wrap(err, "list unread notifications")
	}
	defer rows.Close()

	var out []notification.Notification
	for rows.Next() {
		var (
			id, bID           pgtype.UUID
			kind, message     string
			linkID            pgtype.UUID
			createdAt, readAt pgtype.Timestamptz
		)
		if err := rows.Scan(&id, &bID, &kind, &message, &linkID, &createdAt, &readAt); err != nil {
			return nil, err
		}
		out = append(out, notification.Notification{
			ID:        asUUID(id),
			BranchID:  asUUID(bID),
			Kind:      notification.Kind(kind),
			Message:   message,
			LinkID:    asUUIDPtr(linkID),
			CreatedAt: asTime(createdAt),
			ReadAt:    asTimePtr(readAt),
		})
	}
	return out, rows.Err()
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id uuid.UUID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	_, err = tx.Exec(ctx, `UPDATE notifications SET read_at = now() WHERE id = $1 AND read_at IS NULL`, pgUUID(id))
	return errors.Wrap(err, "mark notification read")
}
