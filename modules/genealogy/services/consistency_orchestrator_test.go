package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/shajara-uz/shajara/modules/genealogy/domain/entities/role"
)

type orchestratorFixture struct {
	*bridgeFixture
	orch *ConsistencyOrchestrator
}

func newOrchestratorFixture(t *testing.T) *orchestratorFixture {
	t.Helper()
	bf := newBridgeFixture(t)
	generations := NewGenerationService(bf.persons, bf.branches, bf.authz, bf.bus)
	orch := NewConsistencyOrchestrator(bf.persons, bf.links, generations, bf.svc, bf.authz)
	return &orchestratorFixture{bridgeFixture: bf, orch: orch}
}

func TestCreatePerson_RecalculatesBranch(t *testing.T) {
	f := newOrchestratorFixture(t)
	member := uuid.New()
	f.authz.grant(f.b1.ID(), member, role.Member)

	root, err := f.orch.CreatePerson(context.Background(), CreatePersonDTO{
		BranchID:  f.b1.ID(),
		GivenName: "Root",
		IsLiving:  true,
	}, member)
	require.NoError(t, err)
	require.NotNil(t, root.GenerationNumber())
	require.Equal(t, 1, *root.GenerationNumber())

	rootID := root.ID()
	child, err := f.orch.CreatePerson(context.Background(), CreatePersonDTO{
		BranchID:  f.b1.ID(),
		GivenName: "Child",
		FatherID:  &rootID,
		IsLiving:  true,
	}, member)
	require.NoError(t, err)
	require.Equal(t, 2, *child.GenerationNumber())
	require.Equal(t, "G2", child.GenerationLabel())

	// Branch stats follow: fixture already held P2, so three people now.
	require.Equal(t, [2]int{3, 2}, f.branches.stats[f.b1.ID()])
}

func TestCreatePerson_RequiresMembership(t *testing.T) {
	f := newOrchestratorFixture(t)

	_, err := f.orch.CreatePerson(context.Background(), CreatePersonDTO{
		BranchID:  f.b1.ID(),
		GivenName: "Intruder",
	}, uuid.New())
	requireServiceError(t, err, 403, "GENEALOGY_FORBIDDEN")
}

func TestCreatePerson_ParentFromOtherBranch(t *testing.T) {
	f := newOrchestratorFixture(t)
	member := uuid.New()
	f.authz.grant(f.b1.ID(), member, role.Member)
	outsider := f.persons.add(f.b2.ID(), "Outsider", nil, nil)
	outsiderID := outsider.ID()

	_, err := f.orch.CreatePerson(context.Background(), CreatePersonDTO{
		BranchID:  f.b1.ID(),
		GivenName: "Kid",
		MotherID:  &outsiderID,
	}, member)
	requireServiceError(t, err, 422, "GENEALOGY_PARENT_OTHER_BRANCH")
}

func TestUpdatePersonParents_CascadesGenerations(t *testing.T) {
	f := newOrchestratorFixture(t)
	member := uuid.New()
	f.authz.grant(f.b1.ID(), member, role.Member)
	root := f.persons.add(f.b1.ID(), "Root", nil, nil)
	rootID := root.ID()
	loose := f.persons.add(f.b1.ID(), "Loose", nil, nil)

	updated, err := f.orch.UpdatePersonParents(context.Background(), loose.ID(), &rootID, nil, member)
	require.NoError(t, err)
	require.Equal(t, 2, *updated.GenerationNumber())
}

func TestUpdatePersonParents_SelfParent(t *testing.T) {
	f := newOrchestratorFixture(t)
	member := uuid.New()
	f.authz.grant(f.b1.ID(), member, role.Member)
	pID := f.p2.ID()

	_, err := f.orch.UpdatePersonParents(context.Background(), pID, &pID, nil, member)
	requireServiceError(t, err, 400, "GENEALOGY_SELF_PARENT")
}

func TestDeletePerson_Guards(t *testing.T) {
	f := newOrchestratorFixture(t)
	root := f.persons.add(f.b1.ID(), "Root", nil, nil)
	rootID := root.ID()
	f.persons.add(f.b1.ID(), "Child", &rootID, nil)

	// Members cannot delete.
	member := uuid.New()
	f.authz.grant(f.b1.ID(), member, role.Member)
	err := f.orch.DeletePerson(context.Background(), rootID, member)
	requireServiceError(t, err, 403, "GENEALOGY_FORBIDDEN")

	// Moderators cannot delete a parent.
	err = f.orch.DeletePerson(context.Background(), rootID, f.guruB1)
	requireServiceError(t, err, 409, "GENEALOGY_PERSON_HAS_CHILDREN")

	// Nor a person with an active bridge link.
	f.requestP2toB2(t)
	err = f.orch.DeletePerson(context.Background(), f.p2.ID(), f.guruB1)
	requireServiceError(t, err, 409, "GENEALOGY_PERSON_BRIDGED")
}

func TestDeletePerson_RecalculatesBranch(t *testing.T) {
	f := newOrchestratorFixture(t)
	root := f.persons.add(f.b1.ID(), "Root", nil, nil)
	rootID := root.ID()
	leaf := f.persons.add(f.b1.ID(), "Leaf", &rootID, nil)

	err := f.orch.DeletePerson(context.Background(), leaf.ID(), f.guruB1)
	require.NoError(t, err)

	_, err = f.persons.GetByID(context.Background(), leaf.ID())
	requireServiceError(t, mapPgError(err), 404, "GENEALOGY_PERSON_NOT_FOUND")
	// Fixture P2 plus Root remain, both generation 1.
	require.Equal(t, [2]int{2, 1}, f.branches.stats[f.b1.ID()])
}

func TestPromotePrimaryBridge_CopiesResolvedGeneration(t *testing.T) {
	f := newOrchestratorFixture(t)
	// Give P2 a resolved generation of 2 in its home branch.
	root := f.persons.add(f.b1.ID(), "Root", nil, nil)
	rootID := root.ID()
	stored, err := f.persons.GetByID(context.Background(), f.p2.ID())
	require.NoError(t, err)
	_, err = f.persons.Update(context.Background(), stored.WithParents(&rootID, nil))
	require.NoError(t, err)
	generations := NewGenerationService(f.persons, f.branches, f.authz, f.bus)
	_, err = generations.Recalculate(context.Background(), f.b1.ID())
	require.NoError(t, err)

	link := f.requestP2toB2(t)
	promoted, err := f.orch.PromotePrimaryBridge(context.Background(), link.ID(), f.elevated)
	require.NoError(t, err)
	require.True(t, promoted.IsPrimaryBridge())
	require.NotNil(t, promoted.GenerationOverride())
	require.Equal(t, 2, *promoted.GenerationOverride())
}

func TestPromotePrimaryBridge_NoResolvedGeneration(t *testing.T) {
	f := newOrchestratorFixture(t)
	link := f.requestP2toB2(t)

	promoted, err := f.orch.PromotePrimaryBridge(context.Background(), link.ID(), f.elevated)
	require.NoError(t, err)
	require.True(t, promoted.IsPrimaryBridge())
	require.Nil(t, promoted.GenerationOverride())
}

func TestDisplayedGeneration(t *testing.T) {
	f := newOrchestratorFixture(t)
	link := f.requestP2toB2(t)

	p := f.p2.WithGeneration(3)
	require.Equal(t, 3, *DisplayedGeneration(link, p))

	override := 5
	withOverride := link.WithGenerationOverride(&override)
	require.Equal(t, 5, *DisplayedGeneration(withOverride, p))

	require.Nil(t, DisplayedGeneration(link, f.p2))
}
