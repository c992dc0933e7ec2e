package services

import (
	"context"
	"time"

	"realtycrm/internal/filter"
	"realtycrm/internal/logger"
	"realtycrm/internal/models"
	"realtycrm/internal/store"
)

// EntityStore is the part of *store.Store the dashboard reads from.
type EntityStore interface {
	Snapshot() store.Snapshot
	Refresh(ctx context.Context) error
	RefreshCollection(ctx context.Context, c store.Collection) error
}

type DashboardQuery struct {
	DateFilter models.DateFilter
	ProjectID  *int
	Search     string
}

func (q DashboardQuery) criteria() filter.Criteria {
	return filter.Criteria{DateFilter: q.DateFilter, ProjectID: q.ProjectID, Search: q.Search}
}

// Summary holds the headline figures computed from a filtered view.
type Summary struct {
	TotalLeads           int                             `json:"total_leads"`
	LeadsByStatus        map[models.LeadStatus]int       `json:"leads_by_status"`
	LeadsByPriority      map[models.LeadPriority]int     `json:"leads_by_priority"`
	TotalOpportunities   int                             `json:"total_opportunities"`
	OpportunitiesByStage map[models.OpportunityStage]int `json:"opportunities_by_stage"`
	PipelineValue        float64                         `json:"pipeline_value"`
	WeightedValue        float64                         `json:"weighted_value"`
	BookedValue          float64                         `json:"booked_value"`
	TotalSiteVisits      int                             `json:"total_site_visits"`
	SiteVisitsByStatus   map[models.SiteVisitStatus]int  `json:"site_visits_by_status"`
	UpcomingFollowUps    int                             `json:"upcoming_follow_ups"`
	OverdueFollowUps     int                             `json:"overdue_follow_ups"`
}

type DashboardView struct {
	filter.View
	Summary      Summary                     `json:"summary"`
	ProjectNames map[int]string              `json:"project_names"`
	Loading      map[store.Collection]bool   `json:"loading"`
	Errors       map[store.Collection]string `json:"errors,omitempty"`
}

type DashboardService struct {
	store  EntityStore
	engine *filter.Engine
	now    func() time.Time
	log    logger.Logger
}

func NewDashboardService(st EntityStore, engine *filter.Engine, now func() time.Time, log logger.Logger) *DashboardService {
	if now == nil {
		now = time.Now
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &DashboardService{store: st, engine: engine, now: now, log: log}
}

func (s *DashboardService) View(ctx context.Context, q DashboardQuery) DashboardView {
	snap := s.store.Snapshot()
	view := s.engine.Apply(filter.Input{
		Leads:         snap.Leads,
		Opportunities: snap.Opportunities,
		SiteVisits:    snap.SiteVisits,
		Projects:      snap.Projects,
	}, q.criteria())

	names := make(map[int]string, len(view.Projects))
	for _, p := range view.Projects {
		names[p.ID] = p.Name
	}

	return DashboardView{
		View:         view,
		Summary:      Summarize(view, s.now()),
		ProjectNames: names,
		Loading:      snap.Loading,
		Errors:       snap.Errors,
	}
}

// Projects returns the project reference list and whether it is loading.
func (s *DashboardService) Projects() ([]models.Project, bool) {
	snap := s.store.Snapshot()
	return snap.Projects, snap.Loading[store.CollectionProjects]
}

func (s *DashboardService) Refresh(ctx context.Context) error {
	return s.store.Refresh(ctx)
}

func (s *DashboardService) RefreshCollection(ctx context.Context, name string) error {
	c, err := store.ParseCollection(name)
	if err != nil {
		return err
	}
	return s.store.RefreshCollection(ctx, c)
}

const followUpWindow = 7 * 24 * time.Hour

// Summarize counts and totals the already-filtered view. Lost opportunities
// are excluded from pipeline and weighted value.
func Summarize(v filter.View, now time.Time) Summary {
	sum := Summary{
		TotalLeads:           len(v.Leads),
		LeadsByStatus:        make(map[models.LeadStatus]int, len(models.LeadStatuses)),
		LeadsByPriority:      make(map[models.LeadPriority]int, len(models.LeadPriorities)),
		TotalOpportunities:   len(v.Opportunities),
		OpportunitiesByStage: make(map[models.OpportunityStage]int, len(models.OpportunityStages)),
		TotalSiteVisits:      len(v.SiteVisits),
		SiteVisitsByStatus:   make(map[models.SiteVisitStatus]int, len(models.SiteVisitStatuses)),
	}
	for _, st := range models.LeadStatuses {
		sum.LeadsByStatus[st] = 0
	}
	for _, p := range models.LeadPriorities {
		sum.LeadsByPriority[p] = 0
	}
	for _, st := range models.OpportunityStages {
		sum.OpportunitiesByStage[st] = 0
	}
	for _, st := range models.SiteVisitStatuses {
		sum.SiteVisitsByStatus[st] = 0
	}

	horizon := now.Add(followUpWindow)
	for _, l := range v.Leads {
		sum.LeadsByStatus[l.Status]++
		sum.LeadsByPriority[l.Priority]++
		if l.NextFollowUp == nil {
			continue
		}
		switch {
		case l.NextFollowUp.Before(now):
			sum.OverdueFollowUps++
		case !l.NextFollowUp.After(horizon):
			sum.UpcomingFollowUps++
		}
	}

	for _, o := range v.Opportunities {
		sum.OpportunitiesByStage[o.Stage]++
		switch o.Stage {
		case models.StageLost:
		case models.StageBooking:
			sum.BookedValue += o.Value
			sum.PipelineValue += o.Value
			sum.WeightedValue += o.WeightedValue()
		default:
			sum.PipelineValue += o.Value
			sum.WeightedValue += o.WeightedValue()
		}
	}

	for _, sv := range v.SiteVisits {
		sum.SiteVisitsByStatus[sv.Status]++
	}
	return sum
}
