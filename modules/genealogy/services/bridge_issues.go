package services

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/shajara-uz/shajara/modules/genealogy/domain/aggregates/bridgelink"
)

// BridgePairIssue reports one branch pair connected by more than one
// active link. A pair with exactly one primary is healthy but still
// listed so operators see the full picture; zero or multiple primaries
// is an actionable ambiguity.
type BridgePairIssue struct {
	PairID        string
	BranchA       uuid.UUID
	BranchB       uuid.UUID
	TotalLinks    int
	HasPrimary    bool
	PrimaryLinkID *uuid.UUID
	Links         []bridgelink.BridgeLink
}

// DetectBridgeIssues groups every pending or approved link by unordered
// branch pair and reports the pairs carrying more than one. Pairs are
// ordered most-crowded first; within a pair the primary link leads,
// then approved links, then by display name.
func (s *BridgeLinkService) DetectBridgeIssues(ctx context.Context) ([]BridgePairIssue, error) {
	active, err := s.links.ListActive(ctx)
	if err != nil {
		return nil, mapPgError(err)
	}

	byPair := make(map[string][]bridgelink.BridgeLink)
	for _, link := range active {
		key := link.PairKey()
		byPair[key] = append(byPair[key], link)
	}

	var out []BridgePairIssue
	for key, links := range byPair {
		if len(links) < 2 {
			continue
		}

		sort.Slice(links, func(i, j int) bool {
			a, b := links[i], links[j]
			if a.IsPrimaryBridge() != b.IsPrimaryBridge() {
				return a.IsPrimaryBridge()
			}
			aApproved := a.Status() == bridgelink.StatusApproved
			bApproved := b.Status() == bridgelink.StatusApproved
			if aApproved != bApproved {
				return aApproved
			}
			return a.DisplayName() < b.DisplayName()
		})

		issue := BridgePairIssue{
			PairID:     key,
			TotalLinks: len(links),
			Links:      links,
		}
		first := links[0]
		issue.BranchA, issue.BranchB = orderedPair(first.SourceBranchID(), first.TargetBranchID())
		for _, link := range links {
			if link.IsPrimaryBridge() {
				issue.HasPrimary = true
				id := link.ID()
				issue.PrimaryLinkID = &id
				break
			}
		}
		out = append(out, issue)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].TotalLinks != out[j].TotalLinks {
			return out[i].TotalLinks > out[j].TotalLinks
		}
		return out[i].PairID < out[j].PairID
	})
	return out, nil
}

func orderedPair(a, b uuid.UUID) (uuid.UUID, uuid.UUID) {
	if b.String() < a.String() {
		return b, a
	}
	return a, b
}
