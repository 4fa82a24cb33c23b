package services

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/shajara-uz/shajara/modules/genealogy/domain/aggregates/bridgelink"
	"github.com/shajara-uz/shajara/modules/genealogy/domain/aggregates/person"
	"github.com/shajara-uz/shajara/modules/genealogy/domain/entities/role"
)

// CreatePersonDTO is the inbound payload for adding a branch member.
type CreatePersonDTO struct {
	BranchID  uuid.UUID `validate:"required"`
	GivenName string    `validate:"required,max=255"`
	Surname   string    `validate:"max=255"`
	Gender    person.Gender
	FatherID  *uuid.UUID
	MotherID  *uuid.UUID
	BirthDate *time.Time
	DeathDate *time.Time
	IsLiving  bool
}

// ConsistencyOrchestrator owns the trigger points that keep generation
// numbers consistent: every structural edit to a branch's person graph
// recomputes the whole branch inside the same transaction.
type ConsistencyOrchestrator struct {
	persons     person.Repository
	links       bridgelink.Repository
	generations *GenerationService
	bridges     *BridgeLinkService
	authz       Authorizer
}

func NewConsistencyOrchestrator(
	persons person.Repository,
	links bridgelink.Repository,
	generations *GenerationService,
	bridges *BridgeLinkService,
	authz Authorizer,
) *ConsistencyOrchestrator {
	return &ConsistencyOrchestrator{
		persons:     persons,
		links:       links,
		generations: generations,
		bridges:     bridges,
		authz:       authz,
	}
}

// CreatePerson adds a person to the branch and recomputes the branch's
// generations in the same transaction.
func (s *ConsistencyOrchestrator) CreatePerson(ctx context.Context, dto CreatePersonDTO, actorID uuid.UUID) (person.Person, error) {
	if err := dtoValidator.Struct(dto); err != nil {
		return person.Person{}, newServiceError(http.StatusBadRequest, "GENEALOGY_INVALID_REQUEST", err.Error(), err)
	}
	if err := requireBranchCapability(ctx, s.authz, dto.BranchID, actorID, role.EditPersons); err != nil {
		return person.Person{}, err
	}

	return inTx(ctx, func(txCtx context.Context) (person.Person, error) {
		if err := s.checkParents(txCtx, dto.BranchID, uuid.Nil, dto.FatherID, dto.MotherID); err != nil {
			return person.Person{}, err
		}

		p := person.New(dto.BranchID, dto.GivenName, dto.Surname).
			WithGender(dto.Gender).
			WithParents(dto.FatherID, dto.MotherID).
			WithLifespan(dto.BirthDate, dto.DeathDate, dto.IsLiving)
		created, err := s.persons.Create(txCtx, p)
		if err != nil {
			return person.Person{}, mapPgError(err)
		}

		result, err := s.generations.recalculateLocked(txCtx, dto.BranchID, nil)
		if err != nil {
			return person.Person{}, err
		}
		if gen, ok := result.Generations[created.ID()]; ok {
			created = created.WithGeneration(gen)
		}
		return created, nil
	})
}

// UpdatePersonParents rewires a person's father/mother edges and
// recomputes the branch.
func (s *ConsistencyOrchestrator) UpdatePersonParents(ctx context.Context, personID uuid.UUID, fatherID, motherID *uuid.UUID, actorID uuid.UUID) (person.Person, error) {
	return inTx(ctx, func(txCtx context.Context) (person.Person, error) {
		p, err := s.persons.GetByID(txCtx, personID)
		if err != nil {
			return person.Person{}, mapPgError(err)
		}
		if err := requireBranchCapability(txCtx, s.authz, p.BranchID(), actorID, role.EditPersons); err != nil {
			return person.Person{}, err
		}
		if err := s.checkParents(txCtx, p.BranchID(), personID, fatherID, motherID); err != nil {
			return person.Person{}, err
		}

		updated, err := s.persons.Update(txCtx, p.WithParents(fatherID, motherID))
		if err != nil {
			return person.Person{}, mapPgError(err)
		}

		result, err := s.generations.recalculateLocked(txCtx, p.BranchID(), nil)
		if err != nil {
			return person.Person{}, err
		}
		if gen, ok := result.Generations[updated.ID()]; ok {
			updated = updated.WithGeneration(gen)
		}
		return updated, nil
	})
}

// DeletePerson removes a person with no children and no active bridge
// links, then recomputes the branch.
func (s *ConsistencyOrchestrator) DeletePerson(ctx context.Context, personID, actorID uuid.UUID) error {
	_, err := inTx(ctx, func(txCtx context.Context) (struct{}, error) {
		var zero struct{}

		p, err := s.persons.GetByID(txCtx, personID)
		if err != nil {
			return zero, mapPgError(err)
		}
		if err := requireBranchCapability(txCtx, s.authz, p.BranchID(), actorID, role.ModerateBranch); err != nil {
			return zero, err
		}

		hasChildren, err := s.persons.HasChildren(txCtx, personID)
		if err != nil {
			return zero, mapPgError(err)
		}
		if hasChildren {
			return zero, newServiceError(http.StatusConflict, "GENEALOGY_PERSON_HAS_CHILDREN", "person is referenced as a parent", nil)
		}

		hasLinks, err := s.links.HasActiveForPerson(txCtx, personID)
		if err != nil {
			return zero, mapPgError(err)
		}
		if hasLinks {
			return zero, newServiceError(http.StatusConflict, "GENEALOGY_PERSON_BRIDGED", "person has active bridge links", nil)
		}

		if err := s.persons.Delete(txCtx, personID); err != nil {
			return zero, mapPgError(err)
		}
		if _, err := s.generations.recalculateLocked(txCtx, p.BranchID(), nil); err != nil {
			return zero, err
		}
		return zero, nil
	})
	return err
}

// PromotePrimaryBridge designates the link primary and carries the
// person's home-branch resolved generation over as the link's display
// override, so the target branch renders a stable number from that
// moment on.
func (s *ConsistencyOrchestrator) PromotePrimaryBridge(ctx context.Context, linkID, actorID uuid.UUID) (bridgelink.BridgeLink, error) {
	link, err := s.bridges.SetPrimaryBridge(ctx, linkID, actorID)
	if err != nil {
		return bridgelink.BridgeLink{}, err
	}

	p, err := s.persons.GetByID(ctx, link.PersonID())
	if err != nil {
		return bridgelink.BridgeLink{}, mapPgError(err)
	}
	if p.GenerationNumber() == nil {
		return link, nil
	}
	return s.bridges.UpdateBridgeGeneration(ctx, linkID, actorID, p.GenerationNumber())
}

// DisplayedGeneration is the rendering rule for a bridged person inside
// the target branch: the link's override when set, else the home-branch
// resolved generation, else nil when neither exists yet.
func DisplayedGeneration(link bridgelink.BridgeLink, p person.Person) *int {
	if v := link.GenerationOverride(); v != nil {
		return v
	}
	return p.GenerationNumber()
}

// checkParents verifies both parent references point at existing persons
// of the same branch and not at the person itself.
func (s *ConsistencyOrchestrator) checkParents(ctx context.Context, branchID, selfID uuid.UUID, parentIDs ...*uuid.UUID) error {
	for _, parentID := range parentIDs {
		if parentID == nil {
			continue
		}
		if selfID != uuid.Nil && *parentID == selfID {
			return newServiceError(http.StatusBadRequest, "GENEALOGY_SELF_PARENT", "person cannot be their own parent", nil)
		}
		parent, err := s.persons.GetByID(ctx, *parentID)
		if err != nil {
			return mapPgError(err)
		}
		if parent.BranchID() != branchID {
			return newServiceError(http.StatusUnprocessableEntity, "GENEALOGY_PARENT_OTHER_BRANCH", "parent belongs to a different branch", nil)
		}
	}
	return nil
}
