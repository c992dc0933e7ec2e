package models

import "time"

type SiteVisitStatus string

const (
	VisitScheduled   SiteVisitStatus = "Scheduled"
	VisitCompleted   SiteVisitStatus = "Completed"
	VisitMissed      SiteVisitStatus = "Missed"
	VisitCancelled   SiteVisitStatus = "Cancelled"
	VisitRescheduled SiteVisitStatus = "Rescheduled"
)

var SiteVisitStatuses = []SiteVisitStatus{VisitScheduled, VisitCompleted, VisitMissed, VisitCancelled, VisitRescheduled}

func (s SiteVisitStatus) Valid() bool {
	for _, v := range SiteVisitStatuses {
		if s == v {
			return true
		}
	}
	return false
}

type SiteVisit struct {
	ID            int             `json:"id"`
	LeadID        *int            `json:"lead_id,omitempty"`
	OpportunityID *int            `json:"opportunity_id,omitempty"`
	ProjectID     int             `json:"project_id"`
	VisitDate     time.Time       `json:"visit_date"`
	Status        SiteVisitStatus `json:"status"`
}
