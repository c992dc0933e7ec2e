package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"realtycrm/internal/logger"
	"realtycrm/internal/models"
)

var kolkata = time.FixedZone("IST", 5*3600+1800)

func TestNormalizer_LeadCamelAndSnakeAgree(t *testing.T) {
	n := NewNormalizer("IN", kolkata)

	camel := RawRecord{
		"id": float64(7), "name": "Priya Sharma", "phone": "098123 45678",
		"email": "priya@example.com", "source": "Website", "projectId": float64(2),
		"status": "contacted", "priority": "HIGH",
		"createdAt": "2026-03-10T09:15:00+05:30", "nextFollowUp": "2026-03-12",
	}
	snake := RawRecord{
		"id": "7", "full_name": "Priya Sharma", "phone_number": "+91 98123 45678",
		"email": "priya@example.com", "lead_source": "Website", "project_id": "2",
		"status": "Contacted", "priority": "high",
		"created_at": "2026-03-10 09:15:00", "next_follow_up": "2026-03-12",
	}

	a, err := n.Lead(camel)
	require.NoError(t, err)
	b, err := n.Lead(snake)
	require.NoError(t, err)

	assert.Equal(t, 7, a.ID)
	assert.Equal(t, "+919812345678", a.Phone)
	assert.Equal(t, models.LeadStatusContacted, a.Status)
	assert.Equal(t, models.PriorityHigh, a.Priority)
	assert.Equal(t, 2, a.ProjectID)
	assert.True(t, a.CreatedAt.Equal(time.Date(2026, 3, 10, 9, 15, 0, 0, kolkata)))

	assert.Equal(t, a.ID, b.ID)
	assert.Equal(t, a.Name, b.Name)
	assert.Equal(t, a.Phone, b.Phone)
	assert.Equal(t, a.Source, b.Source)
	assert.Equal(t, a.ProjectID, b.ProjectID)
	assert.True(t, a.CreatedAt.Equal(b.CreatedAt))
	require.NotNil(t, b.NextFollowUp)
	assert.True(t, a.NextFollowUp.Equal(*b.NextFollowUp))
}

func TestNormalizer_LeadMalformedFields(t *testing.T) {
	n := NewNormalizer("IN", kolkata)

	l, err := n.Lead(RawRecord{"id": 3, "createdAt": "last tuesday", "phone": "12", "email": "  "})
	require.NoError(t, err)
	assert.True(t, l.CreatedAt.IsZero())
	assert.Equal(t, "12", l.Phone)
	assert.Nil(t, l.Email)

	_, err = n.Lead(RawRecord{"name": "no id"})
	assert.Error(t, err)
}

func TestNormalizer_EpochMillis(t *testing.T) {
	n := NewNormalizer("IN", kolkata)
	ts := time.Date(2026, 3, 10, 4, 0, 0, 0, time.UTC)
	l, err := n.Lead(RawRecord{"id": 1, "createdAt": float64(ts.UnixMilli())})
	require.NoError(t, err)
	assert.True(t, l.CreatedAt.Equal(ts))
}

func TestNormalizer_Opportunity(t *testing.T) {
	n := NewNormalizer("IN", kolkata)

	o, err := n.Opportunity(RawRecord{
		"id": 4, "lead_id": 9, "project_id": 1, "stage": "visit_done",
		"value": "7,500,000", "probability": float64(140), "visit_date": "2026-03-14",
	})
	require.NoError(t, err)
	assert.Equal(t, models.StageVisitDone, o.Stage)
	assert.Equal(t, 7500000.0, o.Value)
	assert.Equal(t, 100, o.Probability)
	require.NotNil(t, o.VisitDate)

	o, err = n.Opportunity(RawRecord{"id": 5, "stage": "Lost", "value": float64(-10)})
	require.NoError(t, err)
	assert.Equal(t, 0.0, o.Value)
	assert.Nil(t, o.VisitDate)
}

func TestNormalizer_SiteVisitAndProject(t *testing.T) {
	n := NewNormalizer("IN", kolkata)

	v, err := n.SiteVisit(RawRecord{"id": 1, "opportunityId": 3, "projectId": 2, "visitDate": "2026-03-15T11:00:00Z", "status": "rescheduled"})
	require.NoError(t, err)
	assert.Nil(t, v.LeadID)
	require.NotNil(t, v.OpportunityID)
	assert.Equal(t, 3, *v.OpportunityID)
	assert.Equal(t, models.VisitRescheduled, v.Status)

	p, err := n.Project(RawRecord{"id": "2", "project_name": "Palm Grove Villas", "city": "Bengaluru"})
	require.NoError(t, err)
	assert.Equal(t, models.Project{ID: 2, Name: "Palm Grove Villas", Location: "Bengaluru"}, p)
}

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "crm.json")
	body := `{
		"projects": [{"id": 1, "name": "Skyline Towers", "location": "Pune"}],
		"leads": [
			{"id": 1, "name": "Priya", "projectId": 1, "createdAt": "2026-03-10"},
			{"name": "missing id"},
			{"id": 2, "name": "Arjun", "project_id": 1, "created_at": "2026-03-11"}
		],
		"opportunities": [{"id": 1, "leadId": 1, "projectId": 1, "stage": "Booking", "value": 5000000, "probability": 90}],
		"site_visits": [{"id": 1, "lead_id": 2, "project_id": 1, "visit_date": "2026-03-12", "status": "Completed"}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	src := NewFileSource(path, NewNormalizer("IN", kolkata), logger.NewTestLogger(t))
	ctx := context.Background()

	leads, err := src.Leads(ctx)
	require.NoError(t, err)
	require.Len(t, leads, 2)
	assert.Equal(t, "Arjun", leads[1].Name)

	visits, err := src.SiteVisits(ctx)
	require.NoError(t, err)
	require.Len(t, visits, 1)
	assert.Equal(t, models.VisitCompleted, visits[0].Status)

	opps, err := src.Opportunities(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.StageBooking, opps[0].Stage)

	projects, err := src.Projects(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Skyline Towers", projects[0].Name)
}

func TestFileSource_MissingFile(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "absent.json"), NewNormalizer("IN", nil), logger.NewNoOpLogger())
	_, err := src.Leads(context.Background())
	assert.Error(t, err)
}

func TestMockSource_Deterministic(t *testing.T) {
	clock := func() time.Time { return time.Date(2026, 3, 15, 12, 0, 0, 0, kolkata) }
	a := NewMockSource(42, clock)
	b := NewMockSource(42, clock)
	ctx := context.Background()

	la, err := a.Leads(ctx)
	require.NoError(t, err)
	lb, err := b.Leads(ctx)
	require.NoError(t, err)
	assert.Equal(t, la, lb)
	assert.Len(t, la, 60)

	projects, _ := a.Projects(ctx)
	opps, _ := a.Opportunities(ctx)
	visits, _ := a.SiteVisits(ctx)
	assert.Len(t, projects, len(seedProjects))
	assert.Len(t, opps, 25)
	assert.Len(t, visits, 30)

	known := map[int]bool{}
	for _, p := range projects {
		known[p.ID] = true
	}
	for _, l := range la {
		assert.True(t, known[l.ProjectID])
		assert.True(t, l.Status.Valid())
		assert.False(t, l.CreatedAt.After(clock()))
	}
	for _, o := range opps {
		assert.True(t, o.Stage.Valid())
		assert.GreaterOrEqual(t, o.Value, 0.0)
	}
}
