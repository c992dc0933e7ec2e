package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"realtycrm/internal/logger"
	"realtycrm/internal/models"
	"realtycrm/internal/repositories"
)

// Source fetches raw collections. Each collection is fetched independently
// so a store can track and refresh them separately.
type Source interface {
	Leads(ctx context.Context) ([]models.Lead, error)
	Opportunities(ctx context.Context) ([]models.Opportunity, error)
	Projects(ctx context.Context) ([]models.Project, error)
	SiteVisits(ctx context.Context) ([]models.SiteVisit, error)
}

// RepositorySource reads every collection from PostgreSQL.
type RepositorySource struct {
	leads    *repositories.LeadRepository
	opps     *repositories.OpportunityRepository
	projects *repositories.ProjectRepository
	visits   *repositories.SiteVisitRepository
}

func NewRepositorySource(
	leads *repositories.LeadRepository,
	opps *repositories.OpportunityRepository,
	projects *repositories.ProjectRepository,
	visits *repositories.SiteVisitRepository,
) *RepositorySource {
	return &RepositorySource{leads: leads, opps: opps, projects: projects, visits: visits}
}

func (s *RepositorySource) Leads(ctx context.Context) ([]models.Lead, error) {
	return s.leads.ListAll(ctx)
}

func (s *RepositorySource) Opportunities(ctx context.Context) ([]models.Opportunity, error) {
	return s.opps.ListAll(ctx)
}

func (s *RepositorySource) Projects(ctx context.Context) ([]models.Project, error) {
	return s.projects.ListAll(ctx)
}

func (s *RepositorySource) SiteVisits(ctx context.Context) ([]models.SiteVisit, error) {
	return s.visits.ListAll(ctx)
}

// fixture is the on-disk layout read by FileSource. Both spellings of the
// site visit key are accepted.
type fixture struct {
	Leads         []RawRecord `json:"leads"`
	Opportunities []RawRecord `json:"opportunities"`
	Projects      []RawRecord `json:"projects"`
	SiteVisits    []RawRecord `json:"siteVisits"`
	SiteVisitsAlt []RawRecord `json:"site_visits"`
}

// FileSource reads a JSON fixture of raw records on every fetch and passes
// them through a Normalizer. Records that cannot be normalised are skipped.
type FileSource struct {
	path string
	norm *Normalizer
	log  logger.Logger
}

func NewFileSource(path string, norm *Normalizer, log logger.Logger) *FileSource {
	return &FileSource{path: path, norm: norm, log: log}
}

func (s *FileSource) read() (*fixture, error) {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("read fixture: %w", err)
	}
	var fx fixture
	if err := json.Unmarshal(raw, &fx); err != nil {
		return nil, fmt.Errorf("decode fixture: %w", err)
	}
	if len(fx.SiteVisits) == 0 {
		fx.SiteVisits = fx.SiteVisitsAlt
	}
	return &fx, nil
}

func (s *FileSource) Leads(ctx context.Context) ([]models.Lead, error) {
	fx, err := s.read()
	if err != nil {
		return nil, err
	}
	return normalizeAll(fx.Leads, s.norm.Lead, "lead", s.log), nil
}

func (s *FileSource) Opportunities(ctx context.Context) ([]models.Opportunity, error) {
	fx, err := s.read()
	if err != nil {
		return nil, err
	}
	return normalizeAll(fx.Opportunities, s.norm.Opportunity, "opportunity", s.log), nil
}

func (s *FileSource) Projects(ctx context.Context) ([]models.Project, error) {
	fx, err := s.read()
	if err != nil {
		return nil, err
	}
	return normalizeAll(fx.Projects, s.norm.Project, "project", s.log), nil
}

func (s *FileSource) SiteVisits(ctx context.Context) ([]models.SiteVisit, error) {
	fx, err := s.read()
	if err != nil {
		return nil, err
	}
	return normalizeAll(fx.SiteVisits, s.norm.SiteVisit, "site_visit", s.log), nil
}

func normalizeAll[T any](recs []RawRecord, fn func(RawRecord) (T, error), kind string, log logger.Logger) []T {
	out := make([]T, 0, len(recs))
	for i, rec := range recs {
		v, err := fn(rec)
		if err != nil {
			log.Warn("skipping malformed record", map[string]interface{}{
				"kind":  kind,
				"index": i,
				"error": err.Error(),
			})
			continue
		}
		out = append(out, v)
	}
	return out
}
