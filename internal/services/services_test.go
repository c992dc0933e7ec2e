package services

import (
	"context"
	"time"

	"realtycrm/internal/filter"
	"realtycrm/internal/models"
	"realtycrm/internal/store"
)

var ist = time.FixedZone("IST", 5*3600+1800)

func fixedNow() time.Time { return time.Date(2026, 3, 15, 14, 30, 0, 0, ist) }

func ptr[T any](v T) *T { return &v }

type fakeStore struct {
	snap         store.Snapshot
	refreshed    int
	refreshedCol []store.Collection
	err          error
}

func (f *fakeStore) Snapshot() store.Snapshot { return f.snap }

func (f *fakeStore) Refresh(ctx context.Context) error {
	f.refreshed++
	return f.err
}

func (f *fakeStore) RefreshCollection(ctx context.Context, c store.Collection) error {
	f.refreshedCol = append(f.refreshedCol, c)
	return f.err
}

func sampleStore() *fakeStore {
	now := fixedNow()
	return &fakeStore{snap: store.Snapshot{
		Leads: []models.Lead{
			{ID: 1, Name: "Asha Rao", Phone: "+919812345678", ProjectID: 1, Status: models.LeadStatusNew, Priority: models.PriorityHigh,
				CreatedAt: now.Add(-2 * time.Hour), NextFollowUp: ptr(now.Add(48 * time.Hour))},
			{ID: 2, Name: "Vikram Shah", Phone: "+919900112233", ProjectID: 2, Status: models.LeadStatusQualified, Priority: models.PriorityLow,
				CreatedAt: now.AddDate(0, 0, -3), NextFollowUp: ptr(now.Add(-24 * time.Hour))},
			{ID: 3, Name: "Old Lead", Phone: "+919811111111", ProjectID: 1, Status: models.LeadStatusContacted, Priority: models.PriorityMedium,
				CreatedAt: now.AddDate(0, 0, -30), NextFollowUp: ptr(now.AddDate(0, 0, 20))},
		},
		Opportunities: []models.Opportunity{
			{ID: 10, LeadID: 1, ProjectID: 1, Stage: models.StageNegotiation, Value: 1_000_000, Probability: 50},
			{ID: 11, LeadID: 2, ProjectID: 2, Stage: models.StageBooking, Value: 2_000_000, Probability: 90},
			{ID: 12, LeadID: 3, ProjectID: 1, Stage: models.StageLost, Value: 500_000, Probability: 0},
		},
		SiteVisits: []models.SiteVisit{
			{ID: 20, ProjectID: 1, VisitDate: now, Status: models.VisitScheduled},
			{ID: 21, ProjectID: 2, VisitDate: now.AddDate(0, 0, -1), Status: models.VisitCompleted},
		},
		Projects: []models.Project{{ID: 1, Name: "Skyline Towers", Location: "Pune"}, {ID: 2, Name: "Lake View", Location: "Bengaluru"}},
		Loading:  map[store.Collection]bool{store.CollectionLeads: false, store.CollectionOpportunities: true},
	}}
}

func newDashboard(st EntityStore) *DashboardService {
	engine := filter.NewEngine(filter.WithClock(fixedNow))
	return NewDashboardService(st, engine, fixedNow, nil)
}
