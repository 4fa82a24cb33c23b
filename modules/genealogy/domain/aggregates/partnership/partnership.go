package partnership

import (
	"time"

	"github.com/google/uuid"
)

type Type string

const (
	TypeMarriage Type = "marriage"
	TypeOther    Type = "other"
)

// Partnership is an unordered pair of persons recorded against a home
// branch. One of the two persons may belong to a different branch; such
// cross-branch partnerships are what seed bridge-link suggestions.
type Partnership struct {
	id              uuid.UUID
	branchID        uuid.UUID
	person1ID       uuid.UUID
	person2ID       uuid.UUID
	partnershipType Type
	startDate       *time.Time
	endDate         *time.Time
	isCurrent       bool
	createdAt       time.Time
	updatedAt       time.Time
}

func Hydrate(
	id uuid.UUID,
	branchID uuid.UUID,
	person1ID, person2ID uuid.UUID,
	partnershipType Type,
	startDate, endDate *time.Time,
	isCurrent bool,
	createdAt, updatedAt time.Time,
) Partnership {
	return Partnership{
		id:              id,
		branchID:        branchID,
		person1ID:       person1ID,
		person2ID:       person2ID,
		partnershipType: partnershipType,
		startDate:       startDate,
		endDate:         endDate,
		isCurrent:       isCurrent,
		createdAt:       createdAt,
		updatedAt:       updatedAt,
	}
}

func (p Partnership) ID() uuid.UUID         { return p.id }
func (p Partnership) BranchID() uuid.UUID   { return p.branchID }
func (p Partnership) Person1ID() uuid.UUID  { return p.person1ID }
func (p Partnership) Person2ID() uuid.UUID  { return p.person2ID }
func (p Partnership) Type() Type            { return p.partnershipType }
func (p Partnership) StartDate() *time.Time { return p.startDate }
func (p Partnership) EndDate() *time.Time   { return p.endDate }
func (p Partnership) IsCurrent() bool       { return p.isCurrent }
func (p Partnership) CreatedAt() time.Time  { return p.createdAt }
func (p Partnership) UpdatedAt() time.Time  { return p.updatedAt }

// Members returns both person ids in stored order.
func (p Partnership) Members() [2]uuid.UUID {
	return [2]uuid.UUID{p.person1ID, p.person2ID}
}
