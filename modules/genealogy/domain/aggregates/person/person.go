package person

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

type Gender string

const (
	GenderMale    Gender = "male"
	GenderFemale  Gender = "female"
	GenderUnknown Gender = "unknown"
)

// Person is a member of exactly one branch. Father and mother references
// always point at persons of the same branch; cross-branch parentage is
// not modeled.
type Person struct {
	id               uuid.UUID
	branchID         uuid.UUID
	fullName         string
	givenName        string
	surname          string
	maidenName       string
	gender           Gender
	fatherID         *uuid.UUID
	motherID         *uuid.UUID
	generationNumber *int
	generationLabel  string
	birthDate        *time.Time
	deathDate        *time.Time
	isLiving         bool
	createdAt        time.Time
	updatedAt        time.Time
}

func New(branchID uuid.UUID, givenName, surname string) Person {
	givenName = strings.TrimSpace(givenName)
	surname = strings.TrimSpace(surname)
	return Person{
		branchID:  branchID,
		givenName: givenName,
		surname:   surname,
		fullName:  strings.TrimSpace(givenName + " " + surname),
		gender:    GenderUnknown,
		isLiving:  true,
	}
}

func Hydrate(
	id uuid.UUID,
	branchID uuid.UUID,
	fullName, givenName, surname, maidenName string,
	gender Gender,
	fatherID, motherID *uuid.UUID,
	generationNumber *int,
	generationLabel string,
	birthDate, deathDate *time.Time,
	isLiving bool,
	createdAt, updatedAt time.Time,
) Person {
	return Person{
		id:               id,
		branchID:         branchID,
		fullName:         fullName,
		givenName:        givenName,
		surname:          surname,
		maidenName:       maidenName,
		gender:           gender,
		fatherID:         fatherID,
		motherID:         motherID,
		generationNumber: generationNumber,
		generationLabel:  generationLabel,
		birthDate:        birthDate,
		deathDate:        deathDate,
		isLiving:         isLiving,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

func (p Person) ID() uuid.UUID           { return p.id }
func (p Person) BranchID() uuid.UUID     { return p.branchID }
func (p Person) FullName() string        { return p.fullName }
func (p Person) GivenName() string       { return p.givenName }
func (p Person) Surname() string         { return p.surname }
func (p Person) MaidenName() string      { return p.maidenName }
func (p Person) Gender() Gender          { return p.gender }
func (p Person) FatherID() *uuid.UUID    { return p.fatherID }
func (p Person) MotherID() *uuid.UUID    { return p.motherID }
func (p Person) GenerationLabel() string { return p.generationLabel }
func (p Person) BirthDate() *time.Time   { return p.birthDate }
func (p Person) DeathDate() *time.Time   { return p.deathDate }
func (p Person) IsLiving() bool          { return p.isLiving }
func (p Person) CreatedAt() time.Time    { return p.createdAt }
func (p Person) UpdatedAt() time.Time    { return p.updatedAt }
func (p Person) IsZero() bool            { return p.id == uuid.Nil }

// GenerationNumber returns the resolved generation, or nil before the
// first branch resolution.
func (p Person) GenerationNumber() *int { return p.generationNumber }

func (p Person) HasParents() bool { return p.fatherID != nil || p.motherID != nil }

func (p Person) WithGender(g Gender) Person {
	p.gender = g
	return p
}

func (p Person) WithMaidenName(name string) Person {
	p.maidenName = strings.TrimSpace(name)
	return p
}

func (p Person) WithParents(fatherID, motherID *uuid.UUID) Person {
	p.fatherID = fatherID
	p.motherID = motherID
	return p
}

func (p Person) WithNames(givenName, surname string) Person {
	givenName = strings.TrimSpace(givenName)
	surname = strings.TrimSpace(surname)
	p.givenName = givenName
	p.surname = surname
	p.fullName = strings.TrimSpace(givenName + " " + surname)
	return p
}

func (p Person) WithLifespan(birthDate, deathDate *time.Time, isLiving bool) Person {
	p.birthDate = birthDate
	p.deathDate = deathDate
	p.isLiving = isLiving
	return p
}

func (p Person) WithGeneration(number int) Person {
	p.generationNumber = &number
	p.generationLabel = GenerationLabel(number)
	return p
}

func GenerationLabel(number int) string {
	return fmt.Sprintf("G%d", number)
}
