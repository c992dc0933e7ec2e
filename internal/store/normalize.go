package store

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/nyaruka/phonenumbers"

	"realtycrm/internal/models"
)

// RawRecord is an entity as decoded from an untyped source. Keys may be
// camelCase or snake_case; Normalizer maps both onto the canonical models.
type RawRecord map[string]interface{}

type Normalizer struct {
	region string
	loc    *time.Location
}

func NewNormalizer(phoneRegion string, loc *time.Location) *Normalizer {
	if loc == nil {
		loc = time.Local
	}
	return &Normalizer{region: strings.ToUpper(phoneRegion), loc: loc}
}

func (n *Normalizer) Lead(rec RawRecord) (models.Lead, error) {
	id, ok := n.intField(rec, "id")
	if !ok {
		return models.Lead{}, fmt.Errorf("lead without id")
	}
	l := models.Lead{
		ID:        id,
		Name:      n.stringField(rec, "name", "fullName", "full_name"),
		Phone:     n.Phone(n.stringField(rec, "phone", "phoneNumber", "phone_number", "mobile")),
		Source:    n.stringField(rec, "source", "leadSource", "lead_source"),
		Status:    models.LeadStatus(canonicalEnum(n.stringField(rec, "status"), models.LeadStatuses)),
		Priority:  models.LeadPriority(canonicalEnum(n.stringField(rec, "priority"), models.LeadPriorities)),
		CreatedAt: n.timeField(rec, "createdAt", "created_at"),
	}
	l.ProjectID, _ = n.intField(rec, "projectId", "project_id")
	if email := strings.TrimSpace(n.stringField(rec, "email")); email != "" {
		l.Email = &email
	}
	if t := n.timeField(rec, "nextFollowUp", "next_follow_up", "followUpDate", "follow_up_date"); !t.IsZero() {
		l.NextFollowUp = &t
	}
	return l, nil
}

func (n *Normalizer) Opportunity(rec RawRecord) (models.Opportunity, error) {
	id, ok := n.intField(rec, "id")
	if !ok {
		return models.Opportunity{}, fmt.Errorf("opportunity without id")
	}
	o := models.Opportunity{
		ID:    id,
		Stage: models.OpportunityStage(canonicalEnum(n.stringField(rec, "stage"), models.OpportunityStages)),
	}
	o.LeadID, _ = n.intField(rec, "leadId", "lead_id")
	o.ProjectID, _ = n.intField(rec, "projectId", "project_id")
	if v, ok := n.floatField(rec, "value", "amount"); ok && v > 0 {
		o.Value = v
	}
	if p, ok := n.intField(rec, "probability"); ok {
		o.Probability = clamp(p, 0, 100)
	}
	if t := n.timeField(rec, "visitDate", "visit_date"); !t.IsZero() {
		o.VisitDate = &t
	}
	return o, nil
}

func (n *Normalizer) SiteVisit(rec RawRecord) (models.SiteVisit, error) {
	id, ok := n.intField(rec, "id")
	if !ok {
		return models.SiteVisit{}, fmt.Errorf("site visit without id")
	}
	v := models.SiteVisit{
		ID:        id,
		VisitDate: n.timeField(rec, "visitDate", "visit_date", "scheduledAt", "scheduled_at"),
		Status:    models.SiteVisitStatus(canonicalEnum(n.stringField(rec, "status"), models.SiteVisitStatuses)),
	}
	v.ProjectID, _ = n.intField(rec, "projectId", "project_id")
	if leadID, ok := n.intField(rec, "leadId", "lead_id"); ok {
		v.LeadID = &leadID
	}
	if oppID, ok := n.intField(rec, "opportunityId", "opportunity_id"); ok {
		v.OpportunityID = &oppID
	}
	return v, nil
}

func (n *Normalizer) Project(rec RawRecord) (models.Project, error) {
	id, ok := n.intField(rec, "id")
	if !ok {
		return models.Project{}, fmt.Errorf("project without id")
	}
	return models.Project{
		ID:       id,
		Name:     n.stringField(rec, "name", "projectName", "project_name"),
		Location: n.stringField(rec, "location", "city"),
	}, nil
}

// Phone formats a number as E.164. Numbers that do not parse as valid for
// the configured region are returned trimmed but otherwise untouched.
func (n *Normalizer) Phone(input string) string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return trimmed
	}
	number, err := phonenumbers.Parse(trimmed, n.region)
	if err != nil {
		return trimmed
	}
	if !phonenumbers.IsValidNumber(number) {
		return trimmed
	}
	return phonenumbers.Format(number, phonenumbers.E164)
}

func lookup(rec RawRecord, keys ...string) (interface{}, bool) {
	for _, k := range keys {
		if v, ok := rec[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func (n *Normalizer) stringField(rec RawRecord, keys ...string) string {
	v, ok := lookup(rec, keys...)
	if !ok {
		return ""
	}
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	default:
		return fmt.Sprint(t)
	}
}

func (n *Normalizer) intField(rec RawRecord, keys ...string) (int, bool) {
	v, ok := lookup(rec, keys...)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case int:
		return t, true
	case int64:
		return int(t), true
	case float64:
		if t != math.Trunc(t) {
			return 0, false
		}
		return int(t), true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(t))
		return i, err == nil
	}
	return 0, false
}

func (n *Normalizer) floatField(rec RawRecord, keys ...string) (float64, bool) {
	v, ok := lookup(rec, keys...)
	if !ok {
		return 0, false
	}
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(strings.ReplaceAll(strings.TrimSpace(t), ",", ""), 64)
		return f, err == nil
	}
	return 0, false
}

var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// timeField accepts RFC 3339 strings, zone-less datetimes and dates (read in
// the normaliser's location), and Unix epoch milliseconds. Anything else
// yields the zero time.
func (n *Normalizer) timeField(rec RawRecord, keys ...string) time.Time {
	v, ok := lookup(rec, keys...)
	if !ok {
		return time.Time{}
	}
	switch t := v.(type) {
	case time.Time:
		return t
	case float64:
		if t <= 0 {
			return time.Time{}
		}
		return time.UnixMilli(int64(t)).In(n.loc)
	case string:
		s := strings.TrimSpace(t)
		for _, layout := range timeLayouts {
			if parsed, err := time.ParseInLocation(layout, s, n.loc); err == nil {
				return parsed
			}
		}
	}
	return time.Time{}
}

// canonicalEnum matches raw against known values ignoring case, spaces,
// underscores and dashes, so "visit_done" and "Visit Done" both map to
// "VisitDone". Unknown values are returned trimmed.
func canonicalEnum[T ~string](raw string, known []T) string {
	key := squash(raw)
	for _, k := range known {
		if squash(string(k)) == key {
			return string(k)
		}
	}
	return strings.TrimSpace(raw)
}

func squash(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if r == ' ' || r == '_' || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
