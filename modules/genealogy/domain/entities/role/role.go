package role

// Role is the closed set of actor roles the genealogy core distinguishes.
// Branch-scoped roles (Member, BranchModerator) are resolved per branch;
// ElevatedAuthority is global and spans branch pairs.
type Role int

const (
	None Role = iota
	Member
	BranchModerator
	ElevatedAuthority
)

func (r Role) String() string {
	switch r {
	case Member:
		return "member"
	case BranchModerator:
		return "branch_moderator"
	case ElevatedAuthority:
		return "elevated_authority"
	default:
		return "none"
	}
}

// Capability is an action the core gates on a role.
type Capability int

const (
	EditPersons Capability = iota
	ApproveLinks
	ModerateBranch
	OverrideGeneration
	ManagePrimaryBridge
)

// Can decides the full Role x Capability matrix. Every case is spelled
// out so adding a role or capability fails loudly in tests rather than
// silently defaulting.
func (r Role) Can(c Capability) bool {
	switch c {
	case EditPersons:
		return r == Member || r == BranchModerator || r == ElevatedAuthority
	case ApproveLinks, ModerateBranch, OverrideGeneration:
		return r == BranchModerator || r == ElevatedAuthority
	case ManagePrimaryBridge:
		return r == ElevatedAuthority
	default:
		return false
	}
}
