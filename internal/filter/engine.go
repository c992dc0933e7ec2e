// Package filter derives the dashboard's lead, opportunity and site visit
// views from raw collections, a date filter and an optional project.
//
// Every function is pure: inputs are never modified, input order is kept,
// and the result is always a fresh, non-nil slice.
package filter

import (
	"strings"
	"time"

	"realtycrm/internal/logger"
	"realtycrm/internal/metrics"
	"realtycrm/internal/models"
)

type Engine struct {
	now    func() time.Time
	policy Policy
	log    logger.Logger
}

type Option func(*Engine)

// WithClock sets the time source. Calendar days are computed in the
// location of the returned time.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func WithPolicy(p Policy) Option {
	return func(e *Engine) { e.policy = p }
}

func WithLogger(l logger.Logger) Option {
	return func(e *Engine) { e.log = l }
}

func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		now:    time.Now,
		policy: ReferencePolicy(),
		log:    logger.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Engine) Policy() Policy { return e.policy }

// FilterLeads keeps leads of projectID (nil = any project) whose CreatedAt
// falls inside df. Leads without CreatedAt never match a narrowing filter.
func (e *Engine) FilterLeads(leads []models.Lead, df models.DateFilter, projectID *int) []models.Lead {
	metrics.FilterInvocations.WithLabelValues(string(EntityLeads)).Inc()
	match := e.datePredicate(EntityLeads, df)

	out := make([]models.Lead, 0, len(leads))
	for _, l := range leads {
		if projectID != nil && l.ProjectID != *projectID {
			continue
		}
		if match != nil && !match(l.CreatedAt) {
			continue
		}
		out = append(out, l)
	}
	return out
}

// FilterOpportunities applies the project restriction only.
func (e *Engine) FilterOpportunities(opps []models.Opportunity, projectID *int) []models.Opportunity {
	return e.FilterOpportunitiesByDate(opps, models.DateFilter{}, projectID)
}

// FilterOpportunitiesByDate also applies df to VisitDate when the policy
// honours df for opportunities.
func (e *Engine) FilterOpportunitiesByDate(opps []models.Opportunity, df models.DateFilter, projectID *int) []models.Opportunity {
	metrics.FilterInvocations.WithLabelValues(string(EntityOpportunities)).Inc()
	var match func(time.Time) bool
	if df.Type != "" {
		match = e.datePredicate(EntityOpportunities, df)
	}

	out := make([]models.Opportunity, 0, len(opps))
	for _, o := range opps {
		if projectID != nil && o.ProjectID != *projectID {
			continue
		}
		if match != nil && (o.VisitDate == nil || !match(*o.VisitDate)) {
			continue
		}
		out = append(out, o)
	}
	return out
}

// FilterSiteVisits applies the project restriction only.
func (e *Engine) FilterSiteVisits(visits []models.SiteVisit, projectID *int) []models.SiteVisit {
	return e.FilterSiteVisitsByDate(visits, models.DateFilter{}, projectID)
}

func (e *Engine) FilterSiteVisitsByDate(visits []models.SiteVisit, df models.DateFilter, projectID *int) []models.SiteVisit {
	metrics.FilterInvocations.WithLabelValues(string(EntitySiteVisits)).Inc()
	var match func(time.Time) bool
	if df.Type != "" {
		match = e.datePredicate(EntitySiteVisits, df)
	}

	out := make([]models.SiteVisit, 0, len(visits))
	for _, v := range visits {
		if projectID != nil && v.ProjectID != *projectID {
			continue
		}
		if match != nil && !match(v.VisitDate) {
			continue
		}
		out = append(out, v)
	}
	return out
}

// SearchLeads keeps leads whose name, phone or email contains term,
// ignoring case. A blank term keeps everything.
func SearchLeads(leads []models.Lead, term string) []models.Lead {
	term = strings.ToLower(strings.TrimSpace(term))
	out := make([]models.Lead, 0, len(leads))
	for _, l := range leads {
		if term == "" || leadContains(l, term) {
			out = append(out, l)
		}
	}
	return out
}

func leadContains(l models.Lead, term string) bool {
	if strings.Contains(strings.ToLower(l.Name), term) || strings.Contains(strings.ToLower(l.Phone), term) {
		return true
	}
	return l.Email != nil && strings.Contains(strings.ToLower(*l.Email), term)
}

// datePredicate returns nil when df does not narrow e's records.
func (e *Engine) datePredicate(ent Entity, df models.DateFilter) func(time.Time) bool {
	if !df.Type.Valid() {
		metrics.FilterUnknownDateType.WithLabelValues(string(ent)).Inc()
		e.log.Warn("unrecognised date filter type, not filtering", map[string]interface{}{
			"entity": string(ent),
			"type":   string(df.Type),
		})
		return nil
	}
	if !e.policy.honours(ent, df.Type) {
		return nil
	}

	now := e.now()
	loc := now.Location()
	today := startOfDay(now)

	switch df.Type {
	case models.DateToday:
		return func(t time.Time) bool {
			return !t.IsZero() && startOfDay(t.In(loc)).Equal(today)
		}
	case models.DateWeek:
		from := today.AddDate(0, 0, -7)
		return func(t time.Time) bool {
			return !t.IsZero() && !t.Before(from)
		}
	case models.DateMonth:
		from := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, loc)
		return func(t time.Time) bool {
			return !t.IsZero() && !t.Before(from)
		}
	case models.DateCustom:
		if df.StartDate.IsZero() || df.EndDate.IsZero() || df.EndDate.Before(df.StartDate) {
			e.log.Warn("malformed custom date range, not filtering", map[string]interface{}{
				"entity": string(ent),
				"start":  df.StartDate,
				"end":    df.EndDate,
			})
			return nil
		}
		from := startOfDay(df.StartDate.In(loc))
		until := startOfDay(df.EndDate.In(loc)).AddDate(0, 0, 1)
		return func(t time.Time) bool {
			return !t.IsZero() && !t.Before(from) && t.Before(until)
		}
	}
	return nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
