package services

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/shajara-uz/shajara/modules/genealogy/domain/aggregates/branch"
	"github.com/shajara-uz/shajara/modules/genealogy/domain/aggregates/person"
	"github.com/shajara-uz/shajara/modules/genealogy/domain/entities/role"
	"github.com/shajara-uz/shajara/modules/genealogy/domain/events"
	"github.com/shajara-uz/shajara/pkg/eventbus"
)

const (
	generationMin = 1
	generationMax = 30
)

// Resolution is the output of one whole-branch generation pass.
type Resolution struct {
	Generations      map[uuid.UUID]int
	TotalPeople      int
	TotalGenerations int
	// CycleAnomalies counts persons whose generation was forced to 1 by
	// the parent-cycle guard. A non-zero count is a data-quality signal,
	// not an error.
	CycleAnomalies int
}

// resolveGenerations derives a generation for every person of a branch
// from its father/mother graph. The computation is pure: it never reads
// previously stored generation values, and running it twice over the
// same input yields identical output regardless of input order.
//
// Rules, per person:
//   - member of a father/mother cycle: generation 1 (counted as anomaly)
//   - no parents, no children: generation 1
//   - no parents, with children: max(1, min(child generations) - 1)
//   - otherwise: max(parent generations) + 1, a missing or dangling
//     parent reference contributing 0
//
// pins fixes the generation of specific persons before derivation so a
// moderator override cascades to descendants; pass nil for a plain pass.
func resolveGenerations(persons []person.Person, pins map[uuid.UUID]int) Resolution {
	byID := make(map[uuid.UUID]person.Person, len(persons))
	for _, p := range persons {
		byID[p.ID()] = p
	}

	children := make(map[uuid.UUID][]uuid.UUID)
	for _, p := range persons {
		if f := p.FatherID(); f != nil {
			children[*f] = append(children[*f], p.ID())
		}
		if m := p.MotherID(); m != nil {
			children[*m] = append(children[*m], p.ID())
		}
	}

	cyclic := parentCycleMembers(persons, byID)

	memo := make(map[uuid.UUID]int, len(persons))
	for id, gen := range pins {
		if _, ok := byID[id]; ok {
			memo[id] = clampGeneration(gen)
		}
	}
	for id := range cyclic {
		if _, pinned := memo[id]; !pinned {
			memo[id] = 1
		}
	}

	inProgress := make(map[uuid.UUID]struct{})

	var resolve func(id uuid.UUID) int
	resolve = func(id uuid.UUID) int {
		if g, ok := memo[id]; ok {
			return g
		}
		// Re-entry happens when a parentless person is inferred from a
		// child that in turn names them as parent; 1 is the value such a
		// root resolves to, so return it without memoizing.
		if _, ok := inProgress[id]; ok {
			return 1
		}
		p := byID[id]
		inProgress[id] = struct{}{}
		defer delete(inProgress, id)

		if !p.HasParents() {
			kids := children[id]
			if len(kids) == 0 {
				memo[id] = 1
				return 1
			}
			// A child currently being resolved would feed its guard value
			// back in here; skip it and leave this person unmemoized so a
			// later pass sees the child's settled generation.
			partial := false
			minChild := 0
			for _, kid := range kids {
				if _, busy := inProgress[kid]; busy {
					partial = true
					continue
				}
				g := resolve(kid)
				if minChild == 0 || g < minChild {
					minChild = g
				}
			}
			g := minChild - 1
			if g < 1 {
				g = 1
			}
			if !partial {
				memo[id] = g
			}
			return g
		}

		parentGen := 0
		if f := p.FatherID(); f != nil {
			if _, ok := byID[*f]; ok {
				if g := resolve(*f); g > parentGen {
					parentGen = g
				}
			}
		}
		if m := p.MotherID(); m != nil {
			if _, ok := byID[*m]; ok {
				if g := resolve(*m); g > parentGen {
					parentGen = g
				}
			}
		}
		g := parentGen + 1
		memo[id] = g
		return g
	}

	for _, p := range persons {
		resolve(p.ID())
	}

	maxGen := 0
	for _, g := range memo {
		if g > maxGen {
			maxGen = g
		}
	}

	return Resolution{
		Generations:      memo,
		TotalPeople:      len(persons),
		TotalGenerations: maxGen,
		CycleAnomalies:   len(cyclic),
	}
}

// parentCycleMembers returns every person sitting on a father/mother
// cycle, found via Tarjan's strongly connected components over the
// parent-edge graph. Corrupted parent data is the only way such cycles
// arise; members resolve to generation 1 deterministically instead of
// depending on traversal order.
func parentCycleMembers(persons []person.Person, byID map[uuid.UUID]person.Person) map[uuid.UUID]struct{} {
	index := make(map[uuid.UUID]int, len(persons))
	lowlink := make(map[uuid.UUID]int, len(persons))
	onStack := make(map[uuid.UUID]bool, len(persons))
	var stack []uuid.UUID
	next := 0

	cyclic := make(map[uuid.UUID]struct{})

	parentsOf := func(p person.Person) []uuid.UUID {
		var out []uuid.UUID
		if f := p.FatherID(); f != nil {
			if _, ok := byID[*f]; ok {
				out = append(out, *f)
			}
		}
		if m := p.MotherID(); m != nil {
			if _, ok := byID[*m]; ok {
				out = append(out, *m)
			}
		}
		return out
	}

	var strongConnect func(id uuid.UUID)
	strongConnect = func(id uuid.UUID) {
		index[id] = next
		lowlink[id] = next
		next++
		stack = append(stack, id)
		onStack[id] = true

		for _, parent := range parentsOf(byID[id]) {
			if _, seen := index[parent]; !seen {
				strongConnect(parent)
				if lowlink[parent] < lowlink[id] {
					lowlink[id] = lowlink[parent]
				}
			} else if onStack[parent] {
				if index[parent] < lowlink[id] {
					lowlink[id] = index[parent]
				}
			}
		}

		if lowlink[id] == index[id] {
			var component []uuid.UUID
			for {
				top := stack[len(stack)-1]
				stack = stack[:len(stack)-1]
				onStack[top] = false
				component = append(component, top)
				if top == id {
					break
				}
			}
			if len(component) > 1 {
				for _, member := range component {
					cyclic[member] = struct{}{}
				}
			} else if isSelfParent(byID[component[0]]) {
				cyclic[component[0]] = struct{}{}
			}
		}
	}

	for _, p := range persons {
		if _, seen := index[p.ID()]; !seen {
			strongConnect(p.ID())
		}
	}

	return cyclic
}

func isSelfParent(p person.Person) bool {
	if f := p.FatherID(); f != nil && *f == p.ID() {
		return true
	}
	if m := p.MotherID(); m != nil && *m == p.ID() {
		return true
	}
	return false
}

func clampGeneration(g int) int {
	if g < generationMin {
		return generationMin
	}
	if g > generationMax {
		return generationMax
	}
	return g
}

// RecalculationResult is what a whole-branch recalculation reports back
// to the caller.
type RecalculationResult struct {
	TotalPeople      int
	TotalGenerations int
	CycleAnomalies   int
	Generations      map[uuid.UUID]int
}

type GenerationService struct {
	persons  person.Repository
	branches branch.Repository
	authz    Authorizer
	bus      eventbus.EventBus
}

func NewGenerationService(persons person.Repository, branches branch.Repository, authz Authorizer, bus eventbus.EventBus) *GenerationService {
	return &GenerationService{persons: persons, branches: branches, authz: authz, bus: bus}
}

// Recalculate derives and persists generation numbers for every person
// of the branch, plus the branch aggregate stats, in one transaction.
func (s *GenerationService) Recalculate(ctx context.Context, branchID uuid.UUID) (*RecalculationResult, error) {
	if branchID == uuid.Nil {
		return nil, newServiceError(http.StatusBadRequest, "GENEALOGY_INVALID_BRANCH", "branch id is required", nil)
	}

	result, err := inTx(ctx, func(txCtx context.Context) (*RecalculationResult, error) {
		return s.recalculateLocked(txCtx, branchID, nil)
	})
	if err != nil {
		return nil, err
	}

	s.publishRecalculated(branchID, result)
	return result, nil
}

// OverrideGeneration pins one person's generation to a moderator-chosen
// value and immediately recomputes the whole branch so descendants
// cascade from the pinned value.
func (s *GenerationService) OverrideGeneration(ctx context.Context, branchID, personID uuid.UUID, value int, actorID uuid.UUID) (*RecalculationResult, error) {
	if value < generationMin || value > generationMax {
		return nil, newServiceError(http.StatusBadRequest, "GENEALOGY_GENERATION_OUT_OF_RANGE", "generation must be between 1 and 30", nil)
	}
	if err := requireBranchCapability(ctx, s.authz, branchID, actorID, role.OverrideGeneration); err != nil {
		return nil, err
	}

	result, err := inTx(ctx, func(txCtx context.Context) (*RecalculationResult, error) {
		p, err := s.persons.GetByID(txCtx, personID)
		if err != nil {
			return nil, mapPgError(err)
		}
		if p.BranchID() != branchID {
			return nil, newServiceError(http.StatusNotFound, "GENEALOGY_PERSON_NOT_FOUND", "person not found in this branch", nil)
		}
		return s.recalculateLocked(txCtx, branchID, map[uuid.UUID]int{personID: value})
	})
	if err != nil {
		return nil, err
	}

	s.publishRecalculated(branchID, result)
	return result, nil
}

// recalculateLocked runs inside an open transaction.
func (s *GenerationService) recalculateLocked(ctx context.Context, branchID uuid.UUID, pins map[uuid.UUID]int) (*RecalculationResult, error) {
	if _, err := s.branches.GetByID(ctx, branchID); err != nil {
		return nil, mapPgError(err)
	}

	persons, err := s.persons.ListByBranch(ctx, branchID)
	if err != nil {
		return nil, mapPgError(err)
	}

	resolution := resolveGenerations(persons, pins)
	for id, gen := range resolution.Generations {
		if err := s.persons.UpdateGeneration(ctx, id, gen, person.GenerationLabel(gen)); err != nil {
			return nil, mapPgError(err)
		}
	}
	if err := s.branches.UpdateStats(ctx, branchID, resolution.TotalPeople, resolution.TotalGenerations); err != nil {
		return nil, mapPgError(err)
	}

	return &RecalculationResult{
		TotalPeople:      resolution.TotalPeople,
		TotalGenerations: resolution.TotalGenerations,
		CycleAnomalies:   resolution.CycleAnomalies,
		Generations:      resolution.Generations,
	}, nil
}

func (s *GenerationService) publishRecalculated(branchID uuid.UUID, result *RecalculationResult) {
	generationRecalcs.Inc()
	if result.CycleAnomalies > 0 {
		generationCycleAnomalies.Add(float64(result.CycleAnomalies))
	}
	if s.bus != nil {
		s.bus.Publish(&events.GenerationsRecalculated{
			BranchID:         branchID,
			TotalPeople:      result.TotalPeople,
			TotalGenerations: result.TotalGenerations,
			CycleAnomalies:   result.CycleAnomalies,
		})
	}
}
