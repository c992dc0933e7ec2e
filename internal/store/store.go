// Package store owns the raw CRM collections the dashboard filters. It
// fetches them from a Source, tracks a loading flag and last error per
// collection, and hands out copies so readers never share backing arrays.
package store

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"realtycrm/internal/logger"
	"realtycrm/internal/metrics"
	"realtycrm/internal/models"
)

type Collection string

const (
	CollectionLeads         Collection = "leads"
	CollectionOpportunities Collection = "opportunities"
	CollectionProjects      Collection = "projects"
	CollectionSiteVisits    Collection = "site_visits"
)

var AllCollections = []Collection{CollectionLeads, CollectionOpportunities, CollectionProjects, CollectionSiteVisits}

var ErrUnknownCollection = errors.New("unknown collection")

func ParseCollection(s string) (Collection, error) {
	for _, c := range AllCollections {
		if string(c) == s {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCollection, s)
}

// Snapshot is a point-in-time copy of the store.
type Snapshot struct {
	Leads         []models.Lead            `json:"leads"`
	Opportunities []models.Opportunity     `json:"opportunities"`
	Projects      []models.Project         `json:"projects"`
	SiteVisits    []models.SiteVisit       `json:"site_visits"`
	Loading       map[Collection]bool      `json:"loading"`
	Errors        map[Collection]string    `json:"errors,omitempty"`
	RefreshedAt   map[Collection]time.Time `json:"refreshed_at"`
}

type Store struct {
	src   Source
	cache SnapshotCache
	log   logger.Logger
	now   func() time.Time

	mu          sync.RWMutex
	leads       []models.Lead
	opps        []models.Opportunity
	projects    []models.Project
	visits      []models.SiteVisit
	loading     map[Collection]bool
	lastErr     map[Collection]error
	refreshedAt map[Collection]time.Time
}

func New(src Source, cache SnapshotCache, log logger.Logger) *Store {
	if cache == nil {
		cache = NewNoopCache()
	}
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Store{
		src:         src,
		cache:       cache,
		log:         log,
		now:         time.Now,
		leads:       []models.Lead{},
		opps:        []models.Opportunity{},
		projects:    []models.Project{},
		visits:      []models.SiteVisit{},
		loading:     map[Collection]bool{},
		lastErr:     map[Collection]error{},
		refreshedAt: map[Collection]time.Time{},
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := Snapshot{
		Leads:         append([]models.Lead{}, s.leads...),
		Opportunities: append([]models.Opportunity{}, s.opps...),
		Projects:      append([]models.Project{}, s.projects...),
		SiteVisits:    append([]models.SiteVisit{}, s.visits...),
		Loading:       make(map[Collection]bool, len(AllCollections)),
		Errors:        map[Collection]string{},
		RefreshedAt:   map[Collection]time.Time{},
	}
	for _, c := range AllCollections {
		snap.Loading[c] = s.loading[c]
		if err := s.lastErr[c]; err != nil {
			snap.Errors[c] = err.Error()
		}
		if t, ok := s.refreshedAt[c]; ok {
			snap.RefreshedAt[c] = t
		}
	}
	return snap
}

// Refresh re-fetches every collection concurrently. A collection whose fetch
// fails keeps its previous contents; the failures are joined into the
// returned error. The cache is only written when every fetch succeeded.
func (s *Store) Refresh(ctx context.Context) error {
	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs []error
	)
	for _, c := range AllCollections {
		c := c
		g.Go(func() error {
			if err := s.RefreshCollection(ctx, c); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	if err := s.cache.Save(ctx, s.collections()); err != nil {
		s.log.WithError(err).Warn("snapshot cache write failed", nil)
	}
	return nil
}

// RefreshCollection replaces one collection wholesale.
func (s *Store) RefreshCollection(ctx context.Context, c Collection) error {
	s.setLoading(c, true)
	defer s.setLoading(c, false)

	start := time.Now()
	n, err := s.fetch(ctx, c)
	metrics.StoreRefreshDuration.WithLabelValues(string(c)).Observe(time.Since(start).Seconds())

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		metrics.StoreRefreshFailures.WithLabelValues(string(c)).Inc()
		s.lastErr[c] = err
		s.log.WithError(err).Error("collection refresh failed", map[string]interface{}{"collection": string(c)})
		return fmt.Errorf("refresh %s: %w", c, err)
	}
	delete(s.lastErr, c)
	s.refreshedAt[c] = s.now()
	metrics.StoreCollectionSize.WithLabelValues(string(c)).Set(float64(n))
	s.log.Debug("collection refreshed", map[string]interface{}{"collection": string(c), "count": n})
	return nil
}

// fetch loads c from the source and swaps it in under the write lock.
func (s *Store) fetch(ctx context.Context, c Collection) (int, error) {
	switch c {
	case CollectionLeads:
		v, err := s.src.Leads(ctx)
		if err != nil {
			return 0, err
		}
		s.swap(func() { s.leads = nonNil(v) })
		return len(v), nil
	case CollectionOpportunities:
		v, err := s.src.Opportunities(ctx)
		if err != nil {
			return 0, err
		}
		s.swap(func() { s.opps = nonNil(v) })
		return len(v), nil
	case CollectionProjects:
		v, err := s.src.Projects(ctx)
		if err != nil {
			return 0, err
		}
		s.swap(func() { s.projects = nonNil(v) })
		return len(v), nil
	case CollectionSiteVisits:
		v, err := s.src.SiteVisits(ctx)
		if err != nil {
			return 0, err
		}
		s.swap(func() { s.visits = nonNil(v) })
		return len(v), nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownCollection, c)
}

// Warm loads the last cached snapshot, if any, so the dashboard has data
// before the first refresh completes.
func (s *Store) Warm(ctx context.Context) (bool, error) {
	cached, ok, err := s.cache.Load(ctx)
	if err != nil || !ok {
		return false, err
	}
	s.mu.Lock()
	s.leads = nonNil(cached.Leads)
	s.opps = nonNil(cached.Opportunities)
	s.projects = nonNil(cached.Projects)
	s.visits = nonNil(cached.SiteVisits)
	for _, c := range AllCollections {
		s.refreshedAt[c] = cached.SavedAt
	}
	s.mu.Unlock()
	s.log.Info("store warmed from cache", map[string]interface{}{"saved_at": cached.SavedAt})
	return true, nil
}

// Run refreshes on every tick until ctx is cancelled.
func (s *Store) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Refresh(ctx); err != nil {
				s.log.WithError(err).Warn("periodic refresh incomplete", nil)
			}
		}
	}
}

func (s *Store) collections() *Collections {
	snap := s.Snapshot()
	return &Collections{
		Leads:         snap.Leads,
		Opportunities: snap.Opportunities,
		Projects:      snap.Projects,
		SiteVisits:    snap.SiteVisits,
		SavedAt:       s.now(),
	}
}

func (s *Store) swap(fn func()) {
	s.mu.Lock()
	fn()
	s.mu.Unlock()
}

func (s *Store) setLoading(c Collection, v bool) {
	s.mu.Lock()
	s.loading[c] = v
	s.mu.Unlock()
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
