package events

import (
	"github.com/google/uuid"

	"github.com/shajara-uz/shajara/modules/genealogy/domain/aggregates/bridgelink"
)

type LinkRequested struct {
	Link bridgelink.BridgeLink
}

type LinkApproved struct {
	Link            bridgelink.BridgeLink
	ApprovingBranch uuid.UUID
	ApprovedBy      uuid.UUID
	FullyApproved   bool
}

type LinkRejected struct {
	Link            bridgelink.BridgeLink
	RejectingBranch uuid.UUID
	RejectedBy      uuid.UUID
}

type PrimaryBridgeChanged struct {
	Link    bridgelink.BridgeLink
	PairKey string
	SetBy   uuid.UUID
	Cleared bool
}

type GenerationsRecalculated struct {
	BranchID         uuid.UUID
	TotalPeople      int
	TotalGenerations int
	CycleAnomalies   int
}
