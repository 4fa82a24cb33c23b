package services

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/shajara-uz/shajara/modules/genealogy/domain/aggregates/branch"
	"github.com/shajara-uz/shajara/modules/genealogy/domain/aggregates/bridgelink"
	"github.com/shajara-uz/shajara/modules/genealogy/domain/aggregates/partnership"
	"github.com/shajara-uz/shajara/modules/genealogy/domain/aggregates/person"
	"github.com/shajara-uz/shajara/modules/genealogy/domain/entities/role"
	"github.com/shajara-uz/shajara/modules/genealogy/domain/events"
	"github.com/shajara-uz/shajara/pkg/eventbus"
)

var dtoValidator = validator.New(validator.WithRequiredStructEnabled())

// RequestLinkDTO is the inbound payload for a new bridge-link request.
type RequestLinkDTO struct {
	PersonID       uuid.UUID `validate:"required"`
	TargetBranchID uuid.UUID `validate:"required"`
	RequestedBy    uuid.UUID `validate:"required"`
	DisplayName    string    `validate:"max=255"`
	Notes          string    `validate:"max=2000"`
}

// BridgeLinkService coordinates the cross-branch link lifecycle:
// request, two-sided approval, rejection, primary-bridge designation
// and the display-generation override.
type BridgeLinkService struct {
	links        bridgelink.Repository
	persons      person.Repository
	branches     branch.Repository
	partnerships partnership.Repository
	authz        Authorizer
	bus          eventbus.EventBus
}

func NewBridgeLinkService(
	links bridgelink.Repository,
	persons person.Repository,
	branches branch.Repository,
	partnerships partnership.Repository,
	authz Authorizer,
	bus eventbus.EventBus,
) *BridgeLinkService {
	return &BridgeLinkService{
		links:        links,
		persons:      persons,
		branches:     branches,
		partnerships: partnerships,
		authz:        authz,
		bus:          bus,
	}
}

// RequestLink creates a pending link displaying the person inside the
// target branch. The person's home branch stays the source side.
func (s *BridgeLinkService) RequestLink(ctx context.Context, dto RequestLinkDTO) (bridgelink.BridgeLink, error) {
	if err := dtoValidator.Struct(dto); err != nil {
		return bridgelink.BridgeLink{}, newServiceError(http.StatusBadRequest, "GENEALOGY_INVALID_REQUEST", err.Error(), err)
	}

	created, err := inTx(ctx, func(txCtx context.Context) (bridgelink.BridgeLink, error) {
		p, err := s.persons.GetByID(txCtx, dto.PersonID)
		if err != nil {
			return bridgelink.BridgeLink{}, mapPgError(err)
		}
		if p.BranchID() == dto.TargetBranchID {
			return bridgelink.BridgeLink{}, newServiceError(http.StatusConflict, "GENEALOGY_LINK_SELF", "person already belongs to the target branch", nil)
		}

		pair, err := s.branches.GetByIDs(txCtx, []uuid.UUID{p.BranchID(), dto.TargetBranchID})
		if err != nil {
			return bridgelink.BridgeLink{}, mapPgError(err)
		}
		source, target, err := pickPair(pair, p.BranchID(), dto.TargetBranchID)
		if err != nil {
			return bridgelink.BridgeLink{}, err
		}
		if !source.SameAdminRegion(target) {
			return bridgelink.BridgeLink{}, newServiceError(http.StatusConflict, "GENEALOGY_REGION_MISMATCH", "branches belong to different admin regions", nil)
		}

		// Duplicate and reverse-duplicate in one pass over the pair.
		active, err := s.links.ListActiveByPair(txCtx, p.BranchID(), dto.TargetBranchID)
		if err != nil {
			return bridgelink.BridgeLink{}, mapPgError(err)
		}
		for _, existing := range active {
			if existing.PersonID() == dto.PersonID {
				return bridgelink.BridgeLink{}, newServiceError(http.StatusConflict, "GENEALOGY_LINK_CONFLICT", "an active link already exists for this person and branch pair", nil)
			}
		}

		displayName := strings.TrimSpace(dto.DisplayName)
		if displayName == "" {
			displayName = p.FullName()
		}
		link := bridgelink.New(dto.PersonID, p.BranchID(), dto.TargetBranchID, dto.RequestedBy, displayName, dto.Notes)
		return s.links.Create(txCtx, link)
	})
	if err != nil {
		return bridgelink.BridgeLink{}, err
	}

	recordBridgeTransition("requested")
	s.publish(&events.LinkRequested{Link: created})
	return created, nil
}

// ApproveLink records one side's approval. The link flips to approved
// once both sides have signed off; order does not matter.
func (s *BridgeLinkService) ApproveLink(ctx context.Context, linkID, approvingBranchID, actorID uuid.UUID) (bridgelink.BridgeLink, error) {
	if err := requireBranchCapability(ctx, s.authz, approvingBranchID, actorID, role.ApproveLinks); err != nil {
		return bridgelink.BridgeLink{}, err
	}

	updated, err := inTx(ctx, func(txCtx context.Context) (bridgelink.BridgeLink, error) {
		link, err := s.links.GetByID(txCtx, linkID)
		if err != nil {
			return bridgelink.BridgeLink{}, mapPgError(err)
		}

		side := link.SideOf(approvingBranchID)
		if side == bridgelink.SideNone {
			return bridgelink.BridgeLink{}, newServiceError(http.StatusForbidden, "GENEALOGY_FORBIDDEN", "branch is not a party to this link", nil)
		}
		if link.Status() == bridgelink.StatusRejected {
			return bridgelink.BridgeLink{}, newServiceError(http.StatusConflict, "GENEALOGY_LINK_REJECTED", "rejected links cannot be approved", nil)
		}
		if link.ApprovedFrom(side) {
			return bridgelink.BridgeLink{}, newServiceError(http.StatusConflict, "GENEALOGY_ALREADY_APPROVED", "already approved from this side", nil)
		}

		link = link.WithSideApproval(side, actorID, time.Now())
		if link.ApprovedFrom(bridgelink.SideSource) && link.ApprovedFrom(bridgelink.SideTarget) {
			link = link.WithStatus(bridgelink.StatusApproved)
		}
		return s.links.Update(txCtx, link)
	})
	if err != nil {
		return bridgelink.BridgeLink{}, err
	}

	recordBridgeTransition("approved_side")
	s.publish(&events.LinkApproved{
		Link:            updated,
		ApprovingBranch: approvingBranchID,
		ApprovedBy:      actorID,
		FullyApproved:   updated.Status() == bridgelink.StatusApproved,
	})
	return updated, nil
}

// RejectLink moves the link to its terminal rejected state. A link that
// is currently the pair's primary bridge must have primary cleared
// first.
func (s *BridgeLinkService) RejectLink(ctx context.Context, linkID, rejectingBranchID, actorID uuid.UUID, notes string) (bridgelink.BridgeLink, error) {
	if err := requireBranchCapability(ctx, s.authz, rejectingBranchID, actorID, role.ApproveLinks); err != nil {
		return bridgelink.BridgeLink{}, err
	}

	updated, err := inTx(ctx, func(txCtx context.Context) (bridgelink.BridgeLink, error) {
		link, err := s.links.GetByID(txCtx, linkID)
		if err != nil {
			return bridgelink.BridgeLink{}, mapPgError(err)
		}

		if link.SideOf(rejectingBranchID) == bridgelink.SideNone {
			return bridgelink.BridgeLink{}, newServiceError(http.StatusForbidden, "GENEALOGY_FORBIDDEN", "branch is not a party to this link", nil)
		}
		if link.IsPrimaryBridge() {
			return bridgelink.BridgeLink{}, newServiceError(http.StatusConflict, "GENEALOGY_LINK_PRIMARY", "clear primary first", nil)
		}
		if link.Status() == bridgelink.StatusRejected {
			return bridgelink.BridgeLink{}, newServiceError(http.StatusConflict, "GENEALOGY_LINK_REJECTED", "link is already rejected", nil)
		}

		link = link.WithStatus(bridgelink.StatusRejected).
			WithoutPrimary().
			WithGenerationOverride(nil)
		if strings.TrimSpace(notes) != "" {
			link = link.WithNotes(notes)
		}
		return s.links.Update(txCtx, link)
	})
	if err != nil {
		return bridgelink.BridgeLink{}, err
	}

	recordBridgeTransition("rejected")
	s.publish(&events.LinkRejected{Link: updated, RejectingBranch: rejectingBranchID, RejectedBy: actorID})
	return updated, nil
}

// SetPrimaryBridge designates the link as the canonical display path for
// its branch pair. Sibling primaries are cleared and the new one set in
// a single transaction, serialized per pair by an advisory lock.
func (s *BridgeLinkService) SetPrimaryBridge(ctx context.Context, linkID, actorID uuid.UUID) (bridgelink.BridgeLink, error) {
	if err := requireElevatedAuthority(ctx, s.authz, actorID); err != nil {
		return bridgelink.BridgeLink{}, err
	}

	updated, err := inTx(ctx, func(txCtx context.Context) (bridgelink.BridgeLink, error) {
		link, err := s.links.GetByID(txCtx, linkID)
		if err != nil {
			return bridgelink.BridgeLink{}, mapPgError(err)
		}
		if link.Status() == bridgelink.StatusRejected {
			return bridgelink.BridgeLink{}, newServiceError(http.StatusConflict, "GENEALOGY_LINK_REJECTED", "rejected links cannot be primary", nil)
		}

		if err := lockBranchPair(txCtx, link.PairKey()); err != nil {
			return bridgelink.BridgeLink{}, err
		}
		if err := s.links.ClearPrimaryForPair(txCtx, link.SourceBranchID(), link.TargetBranchID()); err != nil {
			return bridgelink.BridgeLink{}, mapPgError(err)
		}
		link = link.WithPrimary(actorID, time.Now())
		return s.links.Update(txCtx, link)
	})
	if err != nil {
		return bridgelink.BridgeLink{}, err
	}

	recordBridgeTransition("primary_set")
	s.publish(&events.PrimaryBridgeChanged{Link: updated, PairKey: updated.PairKey(), SetBy: actorID})
	return updated, nil
}

// ClearPrimaryBridge unsets the primary flag on exactly this link.
func (s *BridgeLinkService) ClearPrimaryBridge(ctx context.Context, linkID, actorID uuid.UUID) (bridgelink.BridgeLink, error) {
	if err := requireElevatedAuthority(ctx, s.authz, actorID); err != nil {
		return bridgelink.BridgeLink{}, err
	}

	updated, err := inTx(ctx, func(txCtx context.Context) (bridgelink.BridgeLink, error) {
		link, err := s.links.GetByID(txCtx, linkID)
		if err != nil {
			return bridgelink.BridgeLink{}, mapPgError(err)
		}
		if !link.IsPrimaryBridge() {
			return link, nil
		}
		return s.links.Update(txCtx, link.WithoutPrimary())
	})
	if err != nil {
		return bridgelink.BridgeLink{}, err
	}

	recordBridgeTransition("primary_cleared")
	s.publish(&events.PrimaryBridgeChanged{Link: updated, PairKey: updated.PairKey(), SetBy: actorID, Cleared: true})
	return updated, nil
}

// UpdateBridgeGeneration sets the displayed generation override for a
// bridged person inside the target branch. nil clears the override so
// the home-branch resolved generation shows again.
func (s *BridgeLinkService) UpdateBridgeGeneration(ctx context.Context, linkID, actorID uuid.UUID, value *int) (bridgelink.BridgeLink, error) {
	if value != nil && (*value < generationMin || *value > generationMax) {
		return bridgelink.BridgeLink{}, newServiceError(http.StatusBadRequest, "GENEALOGY_GENERATION_OUT_OF_RANGE", "generation must be between 1 and 30", nil)
	}
	if err := requireElevatedAuthority(ctx, s.authz, actorID); err != nil {
		return bridgelink.BridgeLink{}, err
	}

	return inTx(ctx, func(txCtx context.Context) (bridgelink.BridgeLink, error) {
		link, err := s.links.GetByID(txCtx, linkID)
		if err != nil {
			return bridgelink.BridgeLink{}, mapPgError(err)
		}
		if link.Status() == bridgelink.StatusRejected {
			return bridgelink.BridgeLink{}, newServiceError(http.StatusConflict, "GENEALOGY_LINK_REJECTED", "rejected links cannot carry a generation override", nil)
		}
		return s.links.Update(txCtx, link.WithGenerationOverride(value))
	})
}

// GetLink returns a single link by id.
func (s *BridgeLinkService) GetLink(ctx context.Context, linkID uuid.UUID) (bridgelink.BridgeLink, error) {
	link, err := s.links.GetByID(ctx, linkID)
	if err != nil {
		return bridgelink.BridgeLink{}, mapPgError(err)
	}
	return link, nil
}

// ListLinks returns links touching the branch on either side, optionally
// filtered by status.
func (s *BridgeLinkService) ListLinks(ctx context.Context, branchID uuid.UUID, status *bridgelink.Status) ([]bridgelink.BridgeLink, error) {
	links, err := s.links.List(ctx, &bridgelink.FindParams{BranchID: branchID, Status: status})
	if err != nil {
		return nil, mapPgError(err)
	}
	return links, nil
}

// SearchLinkCandidates finds persons a moderator could request a bridge
// link for: outside the target branch, in the same admin region, with no
// active link to it yet.
func (s *BridgeLinkService) SearchLinkCandidates(ctx context.Context, targetBranchID uuid.UUID, query string, limit int) ([]person.Person, error) {
	if limit <= 0 || limit > 50 {
		limit = 50
	}

	target, err := s.branches.GetByID(ctx, targetBranchID)
	if err != nil {
		return nil, mapPgError(err)
	}

	matches, err := s.persons.SearchOutsideBranch(ctx, targetBranchID, query, limit*2)
	if err != nil {
		return nil, mapPgError(err)
	}

	homeIDs := make([]uuid.UUID, 0, len(matches))
	seen := make(map[uuid.UUID]struct{})
	for _, p := range matches {
		if _, ok := seen[p.BranchID()]; !ok {
			seen[p.BranchID()] = struct{}{}
			homeIDs = append(homeIDs, p.BranchID())
		}
	}
	homes, err := s.branches.GetByIDs(ctx, homeIDs)
	if err != nil {
		return nil, mapPgError(err)
	}
	homeByID := make(map[uuid.UUID]branch.Branch, len(homes))
	for _, b := range homes {
		homeByID[b.ID()] = b
	}

	out := make([]person.Person, 0, limit)
	for _, p := range matches {
		home, ok := homeByID[p.BranchID()]
		if !ok || !home.SameAdminRegion(target) {
			continue
		}
		if _, err := s.links.FindActiveForPersonAndTarget(ctx, p.ID(), targetBranchID); err == nil {
			continue
		} else if !isNotFound(err) {
			return nil, mapPgError(err)
		}
		out = append(out, p)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

// BridgeSuggestion points at a cross-branch partnership that has no
// bridge link yet in either direction.
type BridgeSuggestion struct {
	Partnership  partnership.Partnership
	Person       person.Person
	HomeBranchID uuid.UUID
	// TargetBranchID is the branch the person would be displayed in,
	// always the partnership's home branch.
	TargetBranchID uuid.UUID
}

// SuggestBridgeLinks scans the branch's partnerships for partners whose
// home branch differs and who have no active link into this branch.
func (s *BridgeLinkService) SuggestBridgeLinks(ctx context.Context, branchID uuid.UUID) ([]BridgeSuggestion, error) {
	if _, err := s.branches.GetByID(ctx, branchID); err != nil {
		return nil, mapPgError(err)
	}

	partnerships, err := s.partnerships.ListByBranch(ctx, branchID)
	if err != nil {
		return nil, mapPgError(err)
	}

	var out []BridgeSuggestion
	for _, pt := range partnerships {
		for _, memberID := range pt.Members() {
			p, err := s.persons.GetByID(ctx, memberID)
			if err != nil {
				if isNotFound(err) {
					continue
				}
				return nil, mapPgError(err)
			}
			if p.BranchID() == branchID {
				continue
			}
			active, err := s.links.ListActiveByPair(ctx, p.BranchID(), branchID)
			if err != nil {
				return nil, mapPgError(err)
			}
			if hasActiveForPerson(active, p.ID()) {
				continue
			}
			out = append(out, BridgeSuggestion{
				Partnership:    pt,
				Person:         p,
				HomeBranchID:   p.BranchID(),
				TargetBranchID: branchID,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Person.FullName() < out[j].Person.FullName() })
	return out, nil
}

func (s *BridgeLinkService) publish(event any) {
	if s.bus != nil {
		s.bus.Publish(event)
	}
}

func hasActiveForPerson(links []bridgelink.BridgeLink, personID uuid.UUID) bool {
	for _, l := range links {
		if l.PersonID() == personID {
			return true
		}
	}
	return false
}

func isNotFound(err error) bool {
	var svcErr *ServiceError
	if errors.As(mapPgError(err), &svcErr) {
		return svcErr.Status == http.StatusNotFound
	}
	return false
}

func pickPair(branches []branch.Branch, sourceID, targetID uuid.UUID) (branch.Branch, branch.Branch, error) {
	var source, target branch.Branch
	for _, b := range branches {
		switch b.ID() {
		case sourceID:
			source = b
		case targetID:
			target = b
		}
	}
	if source.IsZero() || target.IsZero() {
		return source, target, newServiceError(http.StatusNotFound, "GENEALOGY_BRANCH_NOT_FOUND", "branch not found", nil)
	}
	return source, target, nil
}
