// Package genealogy wires the branch genealogy core: the generation
// resolver, the cross-branch bridge-link coordinator and the
// consistency orchestrator that keeps the two in step.
package genealogy

import (
	"github.com/sirupsen/logrus"

	"github.com/shajara-uz/shajara/modules/genealogy/infrastructure/persistence"
	"github.com/shajara-uz/shajara/modules/genealogy/services"
	"github.com/shajara-uz/shajara/pkg/eventbus"
)

// Services bundles the module's service layer, fully wired against the
// postgres repositories.
type Services struct {
	Generations *services.GenerationService
	Bridges     *services.BridgeLinkService
	Consistency *services.ConsistencyOrchestrator
	Bus         eventbus.EventBus
}

func NewServices(log *logrus.Logger) *Services {
	persons := persistence.NewPersonRepository()
	branches := persistence.NewBranchRepository()
	partnerships := persistence.NewPartnershipRepository()
	links := persistence.NewBridgeLinkRepository()
	notifications := persistence.NewNotificationRepository()
	authz := persistence.NewMembershipRepository()

	bus := eventbus.NewEventPublisher(log)
	services.NewNotificationSubscriber(notifications, log).Register(bus)

	generations := services.NewGenerationService(persons, branches, authz, bus)
	bridges := services.NewBridgeLinkService(links, persons, branches, partnerships, authz, bus)
	consistency := services.NewConsistencyOrchestrator(persons, links, generations, bridges, authz)

	return &Services{
		Generations: generations,
		Bridges:     bridges,
		Consistency: consistency,
		Bus:         bus,
	}
}
