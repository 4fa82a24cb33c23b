package services

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/shajara-uz/shajara/modules/genealogy/domain/aggregates/bridgelink"
	"github.com/shajara-uz/shajara/modules/genealogy/domain/entities/notification"
	"github.com/shajara-uz/shajara/modules/genealogy/domain/events"
	"github.com/shajara-uz/shajara/pkg/eventbus"
)

// NotificationSubscriber turns domain events into persisted moderator
// notifications. Events arrive after commit, so a failed write here
// cannot roll anything back; it is logged and dropped.
type NotificationSubscriber struct {
	notifications notification.Repository
	log           *logrus.Logger
}

func NewNotificationSubscriber(notifications notification.Repository, log *logrus.Logger) *NotificationSubscriber {
	return &NotificationSubscriber{notifications: notifications, log: log}
}

func (s *NotificationSubscriber) Register(bus eventbus.EventBus) {
	bus.Subscribe(s.onLinkRequested)
	bus.Subscribe(s.onLinkApproved)
	bus.Subscribe(s.onLinkRejected)
	bus.Subscribe(s.onPrimaryBridgeChanged)
	bus.Subscribe(s.onGenerationsRecalculated)
}

func (s *NotificationSubscriber) onLinkRequested(event *events.LinkRequested) {
	msg := fmt.Sprintf("bridge link requested for %s", event.Link.DisplayName())
	s.notifyBothSides(event.Link, notification.KindLinkRequested, msg)
}

func (s *NotificationSubscriber) onLinkApproved(event *events.LinkApproved) {
	if !event.FullyApproved {
		return
	}
	msg := fmt.Sprintf("bridge link for %s approved by both branches", event.Link.DisplayName())
	s.notifyBothSides(event.Link, notification.KindLinkApproved, msg)
}

func (s *NotificationSubscriber) onLinkRejected(event *events.LinkRejected) {
	msg := fmt.Sprintf("bridge link for %s rejected", event.Link.DisplayName())
	s.notifyBothSides(event.Link, notification.KindLinkRejected, msg)
}

func (s *NotificationSubscriber) onPrimaryBridgeChanged(event *events.PrimaryBridgeChanged) {
	verb := "designated"
	if event.Cleared {
		verb = "cleared as"
	}
	msg := fmt.Sprintf("bridge link for %s %s the primary bridge", event.Link.DisplayName(), verb)
	s.notifyBothSides(event.Link, notification.KindPrimaryChanged, msg)
}

func (s *NotificationSubscriber) onGenerationsRecalculated(event *events.GenerationsRecalculated) {
	// Routine recalculations are noise; only anomalies reach moderators.
	if event.CycleAnomalies == 0 {
		return
	}
	msg := fmt.Sprintf("generation recalculation found %d parent-cycle anomalies", event.CycleAnomalies)
	s.persist(notification.Notification{
		BranchID: event.BranchID,
		Kind:     notification.KindRecalculated,
		Message:  msg,
	})
}

func (s *NotificationSubscriber) notifyBothSides(link bridgelink.BridgeLink, kind notification.Kind, msg string) {
	linkID := link.ID()
	for _, branchID := range []uuid.UUID{link.SourceBranchID(), link.TargetBranchID()} {
		s.persist(notification.Notification{
			BranchID: branchID,
			Kind:     kind,
			Message:  msg,
			LinkID:   &linkID,
		})
	}
}

func (s *NotificationSubscriber) persist(n notification.Notification) {
	if _, err := s.notifications.Create(context.Background(), n); err != nil && s.log != nil {
		s.log.WithError(err).WithFields(logrus.Fields{
			"branch_id": n.BranchID,
			"kind":      n.Kind,
		}).Error("failed to persist notification")
	}
}
