package branch

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Branch is an independently moderated family sub-tree, one per
// surname/city unit. Aggregate stats are derived by the generation
// resolver and overwritten on every recalculation.
type Branch struct {
	id               uuid.UUID
	surname          string
	cityName         string
	region           string
	country          string
	adminRegionID    *uuid.UUID
	totalPeople      int
	totalGenerations int
	createdAt        time.Time
	updatedAt        time.Time
}

func New(surname, cityName string) Branch {
	return Branch{
		surname:  strings.TrimSpace(surname),
		cityName: strings.TrimSpace(cityName),
	}
}

func Hydrate(
	id uuid.UUID,
	surname, cityName, region, country string,
	adminRegionID *uuid.UUID,
	totalPeople, totalGenerations int,
	createdAt, updatedAt time.Time,
) Branch {
	return Branch{
		id:               id,
		surname:          surname,
		cityName:         cityName,
		region:           region,
		country:          country,
		adminRegionID:    adminRegionID,
		totalPeople:      totalPeople,
		totalGenerations: totalGenerations,
		createdAt:        createdAt,
		updatedAt:        updatedAt,
	}
}

func (b Branch) ID() uuid.UUID             { return b.id }
func (b Branch) Surname() string           { return b.surname }
func (b Branch) CityName() string          { return b.cityName }
func (b Branch) Region() string            { return b.region }
func (b Branch) Country() string           { return b.country }
func (b Branch) AdminRegionID() *uuid.UUID { return b.adminRegionID }
func (b Branch) TotalPeople() int          { return b.totalPeople }
func (b Branch) TotalGenerations() int     { return b.totalGenerations }
func (b Branch) CreatedAt() time.Time      { return b.createdAt }
func (b Branch) UpdatedAt() time.Time      { return b.updatedAt }
func (b Branch) IsZero() bool              { return b.id == uuid.Nil }

// SameAdminRegion reports whether both branches are scoped to the same
// admin region. Branches without region scoping always match.
func (b Branch) SameAdminRegion(other Branch) bool {
	if b.adminRegionID == nil || other.adminRegionID == nil {
		return true
	}
	return *b.adminRegionID == *other.adminRegionID
}
