package services

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/shajara-uz/shajara/modules/genealogy/domain/aggregates/branch"
	"github.com/shajara-uz/shajara/modules/genealogy/domain/aggregates/bridgelink"
	"github.com/shajara-uz/shajara/modules/genealogy/domain/aggregates/partnership"
	"github.com/shajara-uz/shajara/modules/genealogy/domain/aggregates/person"
	"github.com/shajara-uz/shajara/modules/genealogy/domain/entities/role"
)

type fakePersonRepo struct {
	persons map[uuid.UUID]person.Person
}

func newFakePersonRepo() *fakePersonRepo {
	return &fakePersonRepo{persons: make(map[uuid.UUID]person.Person)}
}

func (r *fakePersonRepo) GetByID(_ context.Context, id uuid.UUID) (person.Person, error) {
	p, ok := r.persons[id]
	if !ok {
		return person.Person{}, person.ErrNotFound
	}
	return p, nil
}

func (r *fakePersonRepo) ListByBranch(_ context.Context, branchID uuid.UUID) ([]person.Person, error) {
	var out []person.Person
	for _, p := range r.persons {
		if p.BranchID() == branchID {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID().String() < out[j].ID().String() })
	return out, nil
}

func (r *fakePersonRepo) HasChildren(_ context.Context, id uuid.UUID) (bool, error) {
	for _, p := range r.persons {
		if f := p.FatherID(); f != nil && *f == id {
			return true, nil
		}
		if m := p.MotherID(); m != nil && *m == id {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakePersonRepo) SearchOutsideBranch(_ context.Context, branchID uuid.UUID, query string, limit int) ([]person.Person, error) {
	var out []person.Person
	for _, p := range r.persons {
		if p.BranchID() == branchID {
			continue
		}
		if query != "" && !strings.Contains(strings.ToLower(p.FullName()), strings.ToLower(query)) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].FullName() < out[j].FullName() })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *fakePersonRepo) Create(_ context.Context, p person.Person) (person.Person, error) {
	stored := person.Hydrate(
		uuid.New(),
		p.BranchID(),
		p.FullName(), p.GivenName(), p.Surname(), p.MaidenName(),
		p.Gender(),
		p.FatherID(), p.MotherID(),
		p.GenerationNumber(), p.GenerationLabel(),
		p.BirthDate(), p.DeathDate(),
		p.IsLiving(),
		time.Now(), time.Now(),
	)
	r.persons[stored.ID()] = stored
	return stored, nil
}

func (r *fakePersonRepo) Update(_ context.Context, p person.Person) (person.Person, error) {
	if _, ok := r.persons[p.ID()]; !ok {
		return person.Person{}, person.ErrNotFound
	}
	r.persons[p.ID()] = p
	return p, nil
}

func (r *fakePersonRepo) UpdateGeneration(_ context.Context, id uuid.UUID, number int, _ string) error {
	p, ok := r.persons[id]
	if !ok {
		return person.ErrNotFound
	}
	r.persons[id] = p.WithGeneration(number)
	return nil
}

func (r *fakePersonRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := r.persons[id]; !ok {
		return person.ErrNotFound
	}
	delete(r.persons, id)
	return nil
}

func (r *fakePersonRepo) add(branchID uuid.UUID, name string, fatherID, motherID *uuid.UUID) person.Person {
	p := person.Hydrate(
		uuid.New(), branchID,
		name, name, "", "",
		person.GenderUnknown,
		fatherID, motherID,
		nil, "",
		nil, nil,
		true,
		time.Now(), time.Now(),
	)
	r.persons[p.ID()] = p
	return p
}

type fakeBranchRepo struct {
	branches map[uuid.UUID]branch.Branch
	stats    map[uuid.UUID][2]int
}

func newFakeBranchRepo() *fakeBranchRepo {
	return &fakeBranchRepo{
		branches: make(map[uuid.UUID]branch.Branch),
		stats:    make(map[uuid.UUID][2]int),
	}
}

func (r *fakeBranchRepo) GetByID(_ context.Context, id uuid.UUID) (branch.Branch, error) {
	b, ok := r.branches[id]
	if !ok {
		return branch.Branch{}, branch.ErrNotFound
	}
	return b, nil
}

func (r *fakeBranchRepo) GetByIDs(_ context.Context, ids []uuid.UUID) ([]branch.Branch, error) {
	var out []branch.Branch
	for _, id := range ids {
		if b, ok := r.branches[id]; ok {
			out = append(out, b)
		}
	}
	return out, nil
}

func (r *fakeBranchRepo) UpdateStats(_ context.Context, id uuid.UUID, totalPeople, totalGenerations int) error {
	if _, ok := r.branches[id]; !ok {
		return branch.ErrNotFound
	}
	r.stats[id] = [2]int{totalPeople, totalGenerations}
	return nil
}

func (r *fakeBranchRepo) add(surname string, adminRegionID *uuid.UUID) branch.Branch {
	b := branch.Hydrate(
		uuid.New(),
		surname, surname+"-city", "", "",
		adminRegionID,
		0, 0,
		time.Now(), time.Now(),
	)
	r.branches[b.ID()] = b
	return b
}

type fakePartnershipRepo struct {
	partnerships []partnership.Partnership
}

func (r *fakePartnershipRepo) ListByBranch(_ context.Context, branchID uuid.UUID) ([]partnership.Partnership, error) {
	var out []partnership.Partnership
	for _, pt := range r.partnerships {
		if pt.BranchID() == branchID {
			out = append(out, pt)
		}
	}
	return out, nil
}

func (r *fakePartnershipRepo) add(branchID, person1ID, person2ID uuid.UUID) partnership.Partnership {
	pt := partnership.Hydrate(
		uuid.New(), branchID,
		person1ID, person2ID,
		partnership.TypeMarriage,
		nil, nil,
		true,
		time.Now(), time.Now(),
	)
	r.partnerships = append(r.partnerships, pt)
	return pt
}

type fakeLinkRepo struct {
	links map[uuid.UUID]bridgelink.BridgeLink
}

func newFakeLinkRepo() *fakeLinkRepo {
	return &fakeLinkRepo{links: make(map[uuid.UUID]bridgelink.BridgeLink)}
}

func (r *fakeLinkRepo) GetByID(_ context.Context, id uuid.UUID) (bridgelink.BridgeLink, error) {
	l, ok := r.links[id]
	if !ok {
		return bridgelink.BridgeLink{}, bridgelink.ErrNotFound
	}
	return l, nil
}

func (r *fakeLinkRepo) List(_ context.Context, params *bridgelink.FindParams) ([]bridgelink.BridgeLink, error) {
	var out []bridgelink.BridgeLink
	for _, l := range r.links {
		if params != nil && params.BranchID != uuid.Nil &&
			l.SourceBranchID() != params.BranchID && l.TargetBranchID() != params.BranchID {
			continue
		}
		if params != nil && params.Status != nil && l.Status() != *params.Status {
			continue
		}
		out = append(out, l)
	}
	sortLinks(out)
	return out, nil
}

func (r *fakeLinkRepo) ListActive(_ context.Context) ([]bridgelink.BridgeLink, error) {
	var out []bridgelink.BridgeLink
	for _, l := range r.links {
		if l.IsActive() {
			out = append(out, l)
		}
	}
	sortLinks(out)
	return out, nil
}

func (r *fakeLinkRepo) ListActiveByPair(_ context.Context, a, b uuid.UUID) ([]bridgelink.BridgeLink, error) {
	key := bridgelink.PairKey(a, b)
	var out []bridgelink.BridgeLink
	for _, l := range r.links {
		if l.IsActive() && l.PairKey() == key {
			out = append(out, l)
		}
	}
	sortLinks(out)
	return out, nil
}

func (r *fakeLinkRepo) FindActiveForPersonAndTarget(_ context.Context, personID, targetBranchID uuid.UUID) (bridgelink.BridgeLink, error) {
	for _, l := range r.links {
		if l.IsActive() && l.PersonID() == personID && l.TargetBranchID() == targetBranchID {
			return l, nil
		}
	}
	return bridgelink.BridgeLink{}, bridgelink.ErrNotFound
}

func (r *fakeLinkRepo) HasActiveForPerson(_ context.Context, personID uuid.UUID) (bool, error) {
	for _, l := range r.links {
		if l.IsActive() && l.PersonID() == personID {
			return true, nil
		}
	}
	return false, nil
}

func (r *fakeLinkRepo) Create(_ context.Context, l bridgelink.BridgeLink) (bridgelink.BridgeLink, error) {
	stored := bridgelink.Hydrate(
		uuid.New(),
		l.PersonID(), l.SourceBranchID(), l.TargetBranchID(),
		l.Status(),
		l.DisplayName(), l.Notes(),
		l.RequestedBy(),
		l.SourceApprovedBy(), l.SourceApprovedAt(),
		l.TargetApprovedBy(), l.TargetApprovedAt(),
		l.IsPrimaryBridge(),
		l.PrimarySetBy(), l.PrimarySetAt(),
		l.GenerationOverride(),
		time.Now(), time.Now(),
	)
	r.links[stored.ID()] = stored
	return stored, nil
}

func (r *fakeLinkRepo) Update(_ context.Context, l bridgelink.BridgeLink) (bridgelink.BridgeLink, error) {
	if _, ok := r.links[l.ID()]; !ok {
		return bridgelink.BridgeLink{}, bridgelink.ErrNotFound
	}
	r.links[l.ID()] = l
	return l, nil
}

func (r *fakeLinkRepo) ClearPrimaryForPair(_ context.Context, a, b uuid.UUID) error {
	key := bridgelink.PairKey(a, b)
	for id, l := range r.links {
		if l.PairKey() == key && l.IsPrimaryBridge() {
			r.links[id] = l.WithoutPrimary()
		}
	}
	return nil
}

func sortLinks(links []bridgelink.BridgeLink) {
	sort.Slice(links, func(i, j int) bool {
		if !links[i].CreatedAt().Equal(links[j].CreatedAt()) {
			return links[i].CreatedAt().Before(links[j].CreatedAt())
		}
		return links[i].ID().String() < links[j].ID().String()
	})
}

// staticAuthorizer resolves roles from in-memory maps.
type staticAuthorizer struct {
	roles    map[uuid.UUID]map[uuid.UUID]role.Role
	elevated map[uuid.UUID]bool
}

func newStaticAuthorizer() *staticAuthorizer {
	return &staticAuthorizer{
		roles:    make(map[uuid.UUID]map[uuid.UUID]role.Role),
		elevated: make(map[uuid.UUID]bool),
	}
}

func (a *staticAuthorizer) grant(branchID, userID uuid.UUID, r role.Role) {
	if a.roles[branchID] == nil {
		a.roles[branchID] = make(map[uuid.UUID]role.Role)
	}
	a.roles[branchID][userID] = r
}

func (a *staticAuthorizer) elevate(userID uuid.UUID) {
	a.elevated[userID] = true
}

func (a *staticAuthorizer) RoleInBranch(_ context.Context, branchID, userID uuid.UUID) (role.Role, error) {
	if a.elevated[userID] {
		return role.ElevatedAuthority, nil
	}
	return a.roles[branchID][userID], nil
}

func (a *staticAuthorizer) HasElevatedAuthority(_ context.Context, userID uuid.UUID) (bool, error) {
	return a.elevated[userID], nil
}

// recordingBus captures published events for assertions.
type recordingBus struct {
	published []any
}

func (b *recordingBus) Publish(args ...any)        { b.published = append(b.published, args...) }
func (b *recordingBus) PublishE(args ...any) error { b.Publish(args...); return nil }
func (b *recordingBus) Subscribe(any)              {}
func (b *recordingBus) Unsubscribe(any)            {}
func (b *recordingBus) Clear()                     { b.published = nil }
func (b *recordingBus) SubscribersCount() int      { return 0 }

func (b *recordingBus) eventsOf(match func(any) bool) []any {
	var out []any
	for _, e := range b.published {
		if match(e) {
			out = append(out, e)
		}
	}
	return out
}
