package store

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"realtycrm/internal/models"
)

type seedProject struct {
	Name     string
	Location string
}

var seedProjects = []seedProject{
	{Name: "Skyline Towers", Location: "Baner, Pune"},
	{Name: "Palm Grove Villas", Location: "Whitefield, Bengaluru"},
	{Name: "Lakeview Residency", Location: "Powai, Mumbai"},
	{Name: "Green Meadows", Location: "Gachibowli, Hyderabad"},
	{Name: "Riverside Enclave", Location: "Kharadi, Pune"},
}

var (
	seedFirstNames = []string{"Priya", "Arjun", "Kavya", "Rohan", "Ananya", "Vikram", "Sneha", "Aditya", "Meera", "Karan", "Isha", "Rahul"}
	seedLastNames  = []string{"Sharma", "Mehta", "Rao", "Iyer", "Patel", "Nair", "Gupta", "Reddy", "Joshi", "Kulkarni"}
	seedSources    = []string{"Website", "Facebook", "Google Ads", "Referral", "Walk-in", "99acres", "MagicBricks", "WhatsApp"}
)

// MockSource generates a deterministic demo dataset relative to the clock
// it was built with. The same seed always yields the same records.
type MockSource struct {
	seed int64
	now  func() time.Time

	once sync.Once
	data struct {
		leads    []models.Lead
		opps     []models.Opportunity
		projects []models.Project
		visits   []models.SiteVisit
	}
}

func NewMockSource(seed int64, now func() time.Time) *MockSource {
	if now == nil {
		now = time.Now
	}
	return &MockSource{seed: seed, now: now}
}

func (s *MockSource) Leads(ctx context.Context) ([]models.Lead, error) {
	s.once.Do(s.generate)
	return append([]models.Lead(nil), s.data.leads...), nil
}

func (s *MockSource) Opportunities(ctx context.Context) ([]models.Opportunity, error) {
	s.once.Do(s.generate)
	return append([]models.Opportunity(nil), s.data.opps...), nil
}

func (s *MockSource) Projects(ctx context.Context) ([]models.Project, error) {
	s.once.Do(s.generate)
	return append([]models.Project(nil), s.data.projects...), nil
}

func (s *MockSource) SiteVisits(ctx context.Context) ([]models.SiteVisit, error) {
	s.once.Do(s.generate)
	return append([]models.SiteVisit(nil), s.data.visits...), nil
}

func (s *MockSource) generate() {
	rng := rand.New(rand.NewSource(s.seed))
	now := s.now()

	for i, p := range seedProjects {
		s.data.projects = append(s.data.projects, models.Project{ID: i + 1, Name: p.Name, Location: p.Location})
	}

	const leadCount = 60
	for i := 1; i <= leadCount; i++ {
		first := seedFirstNames[rng.Intn(len(seedFirstNames))]
		last := seedLastNames[rng.Intn(len(seedLastNames))]
		email := fmt.Sprintf("%s.%s%d@example.com", strings.ToLower(first), strings.ToLower(last), i)
		lead := models.Lead{
			ID:        i,
			Name:      first + " " + last,
			Phone:     fmt.Sprintf("+9198%08d", rng.Intn(100000000)),
			Source:    seedSources[rng.Intn(len(seedSources))],
			ProjectID: rng.Intn(len(seedProjects)) + 1,
			Status:    models.LeadStatuses[rng.Intn(len(models.LeadStatuses))],
			Priority:  models.LeadPriorities[rng.Intn(len(models.LeadPriorities))],
			// spread over the last 45 days so every date window has hits
			CreatedAt: now.Add(-time.Duration(rng.Intn(45*24)) * time.Hour),
		}
		if rng.Intn(4) != 0 {
			lead.Email = &email
		}
		if rng.Intn(2) == 0 {
			f := now.Add(time.Duration(rng.Intn(10*24)) * time.Hour)
			lead.NextFollowUp = &f
		}
		s.data.leads = append(s.data.leads, lead)
	}

	const oppCount = 25
	for i := 1; i <= oppCount; i++ {
		lead := s.data.leads[rng.Intn(leadCount)]
		stage := models.OpportunityStages[rng.Intn(len(models.OpportunityStages))]
		opp := models.Opportunity{
			ID:          i,
			LeadID:      lead.ID,
			ProjectID:   lead.ProjectID,
			Stage:       stage,
			Value:       float64(40+rng.Intn(160)) * 100000,
			Probability: stageProbability(stage),
		}
		if stage != models.StageLost {
			v := now.Add(time.Duration(rng.Intn(20*24)-10*24) * time.Hour)
			opp.VisitDate = &v
		}
		s.data.opps = append(s.data.opps, opp)
	}

	const visitCount = 30
	for i := 1; i <= visitCount; i++ {
		visit := models.SiteVisit{
			ID:        i,
			VisitDate: now.Add(time.Duration(rng.Intn(30*24)-15*24) * time.Hour),
			Status:    models.SiteVisitStatuses[rng.Intn(len(models.SiteVisitStatuses))],
		}
		if rng.Intn(2) == 0 {
			opp := s.data.opps[rng.Intn(oppCount)]
			oppID, leadID := opp.ID, opp.LeadID
			visit.OpportunityID = &oppID
			visit.LeadID = &leadID
			visit.ProjectID = opp.ProjectID
		} else {
			lead := s.data.leads[rng.Intn(leadCount)]
			leadID := lead.ID
			visit.LeadID = &leadID
			visit.ProjectID = lead.ProjectID
		}
		s.data.visits = append(s.data.visits, visit)
	}
}

func stageProbability(s models.OpportunityStage) int {
	switch s {
	case models.StageScheduled:
		return 20
	case models.StageVisitDone:
		return 40
	case models.StageNegotiation:
		return 65
	case models.StageBooking:
		return 90
	}
	return 0
}
