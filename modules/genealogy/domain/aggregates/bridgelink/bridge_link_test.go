package bridgelink_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/shajara-uz/shajara/modules/genealogy/domain/aggregates/bridgelink"
)

func TestPairKey_OrderIndependent(t *testing.T) {
	a := uuid.New()
	b := uuid.New()

	require.Equal(t, bridgelink.PairKey(a, b), bridgelink.PairKey(b, a))
	require.NotEqual(t, bridgelink.PairKey(a, b), bridgelink.PairKey(a, uuid.New()))
}

func TestSideOf(t *testing.T) {
	source := uuid.New()
	target := uuid.New()
	link := bridgelink.New(uuid.New(), source, target, uuid.New(), "X", "")

	require.Equal(t, bridgelink.SideSource, link.SideOf(source))
	require.Equal(t, bridgelink.SideTarget, link.SideOf(target))
	require.Equal(t, bridgelink.SideNone, link.SideOf(uuid.New()))
}

func TestIsActive(t *testing.T) {
	link := bridgelink.New(uuid.New(), uuid.New(), uuid.New(), uuid.New(), "X", "")

	require.True(t, link.IsActive())
	require.True(t, link.WithStatus(bridgelink.StatusApproved).IsActive())
	require.False(t, link.WithStatus(bridgelink.StatusRejected).IsActive())
}

func TestWithSideApproval(t *testing.T) {
	link := bridgelink.New(uuid.New(), uuid.New(), uuid.New(), uuid.New(), "X", "")
	approver := uuid.New()
	now := time.Now()

	approved := link.WithSideApproval(bridgelink.SideSource, approver, now)
	require.True(t, approved.ApprovedFrom(bridgelink.SideSource))
	require.False(t, approved.ApprovedFrom(bridgelink.SideTarget))
	require.Equal(t, approver, *approved.SourceApprovedBy())
	// Value receiver keeps the original untouched.
	require.False(t, link.ApprovedFrom(bridgelink.SideSource))
}

func TestWithoutPrimary(t *testing.T) {
	link := bridgelink.New(uuid.New(), uuid.New(), uuid.New(), uuid.New(), "X", "").
		WithPrimary(uuid.New(), time.Now())
	require.True(t, link.IsPrimaryBridge())

	cleared := link.WithoutPrimary()
	require.False(t, cleared.IsPrimaryBridge())
	require.Nil(t, cleared.PrimarySetBy())
	require.Nil(t, cleared.PrimarySetAt())
}
