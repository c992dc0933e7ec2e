package models

import "time"

// OpportunityStage is a position in the sales pipeline. Stages are ordered
// but any stage may follow any other.
type OpportunityStage string

const (
	StageScheduled   OpportunityStage = "Scheduled"
	StageVisitDone   OpportunityStage = "VisitDone"
	StageNegotiation OpportunityStage = "Negotiation"
	StageBooking     OpportunityStage = "Booking"
	StageLost        OpportunityStage = "Lost"
)

var OpportunityStages = []OpportunityStage{StageScheduled, StageVisitDone, StageNegotiation, StageBooking, StageLost}

// Index returns the pipeline position of s, or -1 if s is unknown.
func (s OpportunityStage) Index() int {
	for i, v := range OpportunityStages {
		if s == v {
			return i
		}
	}
	return -1
}

func (s OpportunityStage) Valid() bool { return s.Index() >= 0 }

type Opportunity struct {
	ID          int              `json:"id"`
	LeadID      int              `json:"lead_id"`
	ProjectID   int              `json:"project_id"`
	Stage       OpportunityStage `json:"stage"`
	Value       float64          `json:"value"`
	Probability int              `json:"probability"`
	VisitDate   *time.Time       `json:"visit_date,omitempty"`
}

// WeightedValue is Value scaled by Probability, clamped to [0, Value].
func (o Opportunity) WeightedValue() float64 {
	p := o.Probability
	if p < 0 {
		p = 0
	}
	if p > 100 {
		p = 100
	}
	return o.Value * float64(p) / 100
}
