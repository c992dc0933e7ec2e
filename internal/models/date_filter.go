package models

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

type DateFilterType string

const (
	DateToday  DateFilterType = "today"
	DateWeek   DateFilterType = "week"
	DateMonth  DateFilterType = "month"
	DateCustom DateFilterType = "custom"
)

const DateLayout = "2006-01-02"

var (
	ErrUnknownDateFilter = errors.New("unknown date filter type")
	ErrInvalidDateRange  = errors.New("invalid custom date range")
)

func (t DateFilterType) Valid() bool {
	switch t {
	case DateToday, DateWeek, DateMonth, DateCustom:
		return true
	}
	return false
}

// DateFilter is the time window selected in the dashboard. StartDate and
// EndDate are only meaningful for DateCustom.
type DateFilter struct {
	Type      DateFilterType `json:"type"`
	StartDate time.Time      `json:"start_date,omitzero"`
	EndDate   time.Time      `json:"end_date,omitzero"`
}

// ParseDateFilter builds a DateFilter from query values. An empty type
// defaults to today. Custom ranges are parsed in loc.
func ParseDateFilter(typ, start, end string, loc *time.Location) (DateFilter, error) {
	t := DateFilterType(strings.ToLower(strings.TrimSpace(typ)))
	if t == "" {
		t = DateToday
	}
	if !t.Valid() {
		return DateFilter{}, fmt.Errorf("%w: %q", ErrUnknownDateFilter, typ)
	}
	if t != DateCustom {
		return DateFilter{Type: t}, nil
	}
	if loc == nil {
		loc = time.Local
	}
	from, err := time.ParseInLocation(DateLayout, strings.TrimSpace(start), loc)
	if err != nil {
		return DateFilter{}, fmt.Errorf("%w: start: %v", ErrInvalidDateRange, err)
	}
	to, err := time.ParseInLocation(DateLayout, strings.TrimSpace(end), loc)
	if err != nil {
		return DateFilter{}, fmt.Errorf("%w: end: %v", ErrInvalidDateRange, err)
	}
	if to.Before(from) {
		return DateFilter{}, fmt.Errorf("%w: end before start", ErrInvalidDateRange)
	}
	return DateFilter{Type: DateCustom, StartDate: from, EndDate: to}, nil
}
