package filter

import (
	"fmt"
	"strings"

	"realtycrm/internal/models"
)

type Entity string

const (
	EntityLeads         Entity = "leads"
	EntityOpportunities Entity = "opportunities"
	EntitySiteVisits    Entity = "site_visits"
)

type typeSet map[models.DateFilterType]bool

// Policy declares, per entity, which date filter types narrow the result.
// A type that is not honoured for an entity passes every record through.
type Policy struct {
	Name          string
	Leads         typeSet
	Opportunities typeSet
	SiteVisits    typeSet
}

// ReferencePolicy applies today/week to leads only. Month and custom are
// accepted but do not narrow anything; opportunities and site visits ignore
// the date filter.
func ReferencePolicy() Policy {
	return Policy{
		Name:          "reference",
		Leads:         typeSet{models.DateToday: true, models.DateWeek: true},
		Opportunities: typeSet{},
		SiteVisits:    typeSet{},
	}
}

// FullPolicy applies every date filter type to every entity.
func FullPolicy() Policy {
	all := func() typeSet {
		return typeSet{models.DateToday: true, models.DateWeek: true, models.DateMonth: true, models.DateCustom: true}
	}
	return Policy{
		Name:          "full",
		Leads:         all(),
		Opportunities: all(),
		SiteVisits:    all(),
	}
}

func PolicyByName(name string) (Policy, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "reference":
		return ReferencePolicy(), nil
	case "full":
		return FullPolicy(), nil
	}
	return Policy{}, fmt.Errorf("unknown filter policy %q", name)
}

func (p Policy) honours(e Entity, t models.DateFilterType) bool {
	switch e {
	case EntityLeads:
		return p.Leads[t]
	case EntityOpportunities:
		return p.Opportunities[t]
	case EntitySiteVisits:
		return p.SiteVisits[t]
	}
	return false
}
