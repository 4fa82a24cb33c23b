package bridgelink

import (
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Side identifies which end of a bridge link a branch sits on.
type Side int

const (
	SideNone Side = iota
	SideSource
	SideTarget
)

// BridgeLink displays a person whose canonical home is sourceBranchID
// inside targetBranchID. Rejected links are kept as history and never
// hard-deleted.
type BridgeLink struct {
	id                 uuid.UUID
	personID           uuid.UUID
	sourceBranchID     uuid.UUID
	targetBranchID     uuid.UUID
	status             Status
	displayName        string
	notes              string
	requestedBy        uuid.UUID
	sourceApprovedBy   *uuid.UUID
	sourceApprovedAt   *time.Time
	targetApprovedBy   *uuid.UUID
	targetApprovedAt   *time.Time
	isPrimaryBridge    bool
	primarySetBy       *uuid.UUID
	primarySetAt       *time.Time
	generationOverride *int
	createdAt          time.Time
	updatedAt          time.Time
}

func New(personID, sourceBranchID, targetBranchID, requestedBy uuid.UUID, displayName, notes string) BridgeLink {
	return BridgeLink{
		personID:       personID,
		sourceBranchID: sourceBranchID,
		targetBranchID: targetBranchID,
		status:         StatusPending,
		displayName:    displayName,
		notes:          notes,
		requestedBy:    requestedBy,
	}
}

func Hydrate(
	id uuid.UUID,
	personID, sourceBranchID, targetBranchID uuid.UUID,
	status Status,
	displayName, notes string,
	requestedBy uuid.UUID,
	sourceApprovedBy *uuid.UUID, sourceApprovedAt *time.Time,
	targetApprovedBy *uuid.UUID, targetApprovedAt *time.Time,
	isPrimaryBridge bool,
	primarySetBy *uuid.UUID, primarySetAt *time.Time,
	generationOverride *int,
	createdAt, updatedAt time.Time,
) BridgeLink {
	return BridgeLink{
		id:                 id,
		personID:           personID,
		sourceBranchID:     sourceBranchID,
		targetBranchID:     targetBranchID,
		status:             status,
		displayName:        displayName,
		notes:              notes,
		requestedBy:        requestedBy,
		sourceApprovedBy:   sourceApprovedBy,
		sourceApprovedAt:   sourceApprovedAt,
		targetApprovedBy:   targetApprovedBy,
		targetApprovedAt:   targetApprovedAt,
		isPrimaryBridge:    isPrimaryBridge,
		primarySetBy:       primarySetBy,
		primarySetAt:       primarySetAt,
		generationOverride: generationOverride,
		createdAt:          createdAt,
		updatedAt:          updatedAt,
	}
}

func (l BridgeLink) ID() uuid.UUID                { return l.id }
func (l BridgeLink) PersonID() uuid.UUID          { return l.personID }
func (l BridgeLink) SourceBranchID() uuid.UUID    { return l.sourceBranchID }
func (l BridgeLink) TargetBranchID() uuid.UUID    { return l.targetBranchID }
func (l BridgeLink) Status() Status               { return l.status }
func (l BridgeLink) DisplayName() string          { return l.displayName }
func (l BridgeLink) Notes() string                { return l.notes }
func (l BridgeLink) RequestedBy() uuid.UUID       { return l.requestedBy }
func (l BridgeLink) SourceApprovedBy() *uuid.UUID { return l.sourceApprovedBy }
func (l BridgeLink) SourceApprovedAt() *time.Time { return l.sourceApprovedAt }
func (l BridgeLink) TargetApprovedBy() *uuid.UUID { return l.targetApprovedBy }
func (l BridgeLink) TargetApprovedAt() *time.Time { return l.targetApprovedAt }
func (l BridgeLink) IsPrimaryBridge() bool        { return l.isPrimaryBridge }
func (l BridgeLink) PrimarySetBy() *uuid.UUID     { return l.primarySetBy }
func (l BridgeLink) PrimarySetAt() *time.Time     { return l.primarySetAt }
func (l BridgeLink) GenerationOverride() *int     { return l.generationOverride }
func (l BridgeLink) CreatedAt() time.Time         { return l.createdAt }
func (l BridgeLink) UpdatedAt() time.Time         { return l.updatedAt }
func (l BridgeLink) IsZero() bool                 { return l.id == uuid.Nil }

// IsActive reports whether the link still counts against the
// one-active-link-per-pair rule.
func (l BridgeLink) IsActive() bool { return l.status != StatusRejected }

// SideOf returns which end of the link the given branch occupies.
func (l BridgeLink) SideOf(branchID uuid.UUID) Side {
	switch branchID {
	case l.sourceBranchID:
		return SideSource
	case l.targetBranchID:
		return SideTarget
	default:
		return SideNone
	}
}

// ApprovedFrom reports whether the given side has recorded an approval.
func (l BridgeLink) ApprovedFrom(side Side) bool {
	switch side {
	case SideSource:
		return l.sourceApprovedBy != nil
	case SideTarget:
		return l.targetApprovedBy != nil
	default:
		return false
	}
}

// PairKey is the canonical identifier of the unordered branch pair this
// link connects: the two branch ids sorted lexicographically, joined by
// "::". All links bridging the same two branches share one pair key
// regardless of direction.
func (l BridgeLink) PairKey() string {
	return PairKey(l.sourceBranchID, l.targetBranchID)
}

func PairKey(a, b uuid.UUID) string {
	first, second := a.String(), b.String()
	if second < first {
		first, second = second, first
	}
	return first + "::" + second
}

func (l BridgeLink) WithSideApproval(side Side, userID uuid.UUID, at time.Time) BridgeLink {
	switch side {
	case SideSource:
		l.sourceApprovedBy = &userID
		l.sourceApprovedAt = &at
	case SideTarget:
		l.targetApprovedBy = &userID
		l.targetApprovedAt = &at
	}
	return l
}

func (l BridgeLink) WithStatus(status Status) BridgeLink {
	l.status = status
	return l
}

func (l BridgeLink) WithNotes(notes string) BridgeLink {
	l.notes = notes
	return l
}

func (l BridgeLink) WithPrimary(userID uuid.UUID, at time.Time) BridgeLink {
	l.isPrimaryBridge = true
	l.primarySetBy = &userID
	l.primarySetAt = &at
	return l
}

func (l BridgeLink) WithoutPrimary() BridgeLink {
	l.isPrimaryBridge = false
	l.primarySetBy = nil
	l.primarySetAt = nil
	return l
}

func (l BridgeLink) WithGenerationOverride(value *int) BridgeLink {
	l.generationOverride = value
	return l
}
