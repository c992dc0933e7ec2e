// Package uistate keeps per-user panel and modal visibility for the
// dashboard. Handlers call explicit commands instead of mutating shared
// flags.
package uistate

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

var ErrUnknownPanel = errors.New("unknown panel")

const (
	PanelLeadForm        = "lead_form"
	PanelOpportunityForm = "opportunity_form"
	PanelSiteVisitForm   = "site_visit_form"
	PanelWhatsApp        = "whatsapp_composer"
	PanelFilters         = "filters"
	PanelProjectPicker   = "project_picker"
	PanelSettings        = "settings"
)

var DefaultPanels = []string{
	PanelLeadForm,
	PanelOpportunityForm,
	PanelSiteVisitForm,
	PanelWhatsApp,
	PanelFilters,
	PanelProjectPicker,
	PanelSettings,
}

// Manager is safe for concurrent use.
type Manager struct {
	known map[string]bool

	mu   sync.Mutex
	open map[int]map[string]bool
}

func NewManager(panels ...string) *Manager {
	if len(panels) == 0 {
		panels = DefaultPanels
	}
	known := make(map[string]bool, len(panels))
	for _, p := range panels {
		known[p] = true
	}
	return &Manager{known: known, open: map[int]map[string]bool{}}
}

// Panels lists the known panel names, sorted.
func (m *Manager) Panels() []string {
	out := make([]string, 0, len(m.known))
	for p := range m.known {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

func (m *Manager) checkPanel(name string) error {
	if !m.known[name] {
		return fmt.Errorf("%w: %q", ErrUnknownPanel, name)
	}
	return nil
}

func (m *Manager) set(user int, name string, fn func(bool) bool) (bool, error) {
	if err := m.checkPanel(name); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	flags := m.open[user]
	if flags == nil {
		flags = map[string]bool{}
		m.open[user] = flags
	}
	v := fn(flags[name])
	if v {
		flags[name] = true
	} else {
		delete(flags, name)
	}
	return v, nil
}

func (m *Manager) Open(user int, name string) error {
	_, err := m.set(user, name, func(bool) bool { return true })
	return err
}

func (m *Manager) Close(user int, name string) error {
	_, err := m.set(user, name, func(bool) bool { return false })
	return err
}

// Toggle flips the panel and returns its new state.
func (m *Manager) Toggle(user int, name string) (bool, error) {
	return m.set(user, name, func(v bool) bool { return !v })
}

func (m *Manager) IsOpen(user int, name string) (bool, error) {
	if err := m.checkPanel(name); err != nil {
		return false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.open[user][name], nil
}

// Snapshot returns every known panel with its state for user.
func (m *Manager) Snapshot(user int) map[string]bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make(map[string]bool, len(m.known))
	for p := range m.known {
		out[p] = m.open[user][p]
	}
	return out
}

// CloseAll closes every panel for user, e.g. on logout.
func (m *Manager) CloseAll(user int) {
	m.mu.Lock()
	delete(m.open, user)
	m.mu.Unlock()
}
