package models

import "time"

type LeadStatus string

const (
	LeadStatusNew         LeadStatus = "New"
	LeadStatusContacted   LeadStatus = "Contacted"
	LeadStatusQualified   LeadStatus = "Qualified"
	LeadStatusUnqualified LeadStatus = "Unqualified"
)

var LeadStatuses = []LeadStatus{LeadStatusNew, LeadStatusContacted, LeadStatusQualified, LeadStatusUnqualified}

func (s LeadStatus) Valid() bool {
	for _, v := range LeadStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type LeadPriority string

const (
	PriorityHigh   LeadPriority = "High"
	PriorityMedium LeadPriority = "Medium"
	PriorityLow    LeadPriority = "Low"
)

var LeadPriorities = []LeadPriority{PriorityHigh, PriorityMedium, PriorityLow}

func (p LeadPriority) Valid() bool {
	return p == PriorityHigh || p == PriorityMedium || p == PriorityLow
}

// Lead is a prospective customer captured from a marketing or referral source.
type Lead struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	Phone        string       `json:"phone"`
	Email        *string      `json:"email,omitempty"`
	Source       string       `json:"source"`
	ProjectID    int          `json:"project_id"`
	Status       LeadStatus   `json:"status"`
	Priority     LeadPriority `json:"priority"`
	CreatedAt    time.Time    `json:"created_at"`
	NextFollowUp *time.Time   `json:"next_follow_up,omitempty"`
}
