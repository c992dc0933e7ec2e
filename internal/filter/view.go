package filter

import "realtycrm/internal/models"

// Criteria are the dashboard's filter controls.
type Criteria struct {
	DateFilter models.DateFilter
	ProjectID  *int
	Search     string
}

type Input struct {
	Leads         []models.Lead
	Opportunities []models.Opportunity
	SiteVisits    []models.SiteVisit
	Projects      []models.Project
}

// View is what list and chart consumers render. Treat it as read-only.
type View struct {
	Leads         []models.Lead        `json:"leads"`
	Opportunities []models.Opportunity `json:"opportunities"`
	SiteVisits    []models.SiteVisit   `json:"site_visits"`
	Projects      []models.Project     `json:"projects"`
}

func (e *Engine) Apply(in Input, c Criteria) View {
	leads := e.FilterLeads(in.Leads, c.DateFilter, c.ProjectID)
	if c.Search != "" {
		leads = SearchLeads(leads, c.Search)
	}
	projects := make([]models.Project, len(in.Projects))
	copy(projects, in.Projects)

	return View{
		Leads:         leads,
		Opportunities: e.FilterOpportunitiesByDate(in.Opportunities, c.DateFilter, c.ProjectID),
		SiteVisits:    e.FilterSiteVisitsByDate(in.SiteVisits, c.DateFilter, c.ProjectID),
		Projects:      projects,
	}
}
