package uistate

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_OpenCloseToggle(t *testing.T) {
	m := NewManager()

	require.NoError(t, m.Open(1, PanelLeadForm))
	open, err := m.IsOpen(1, PanelLeadForm)
	require.NoError(t, err)
	assert.True(t, open)

	open, err = m.IsOpen(2, PanelLeadForm)
	require.NoError(t, err)
	assert.False(t, open, "state is per user")

	v, err := m.Toggle(1, PanelLeadForm)
	require.NoError(t, err)
	assert.False(t, v)

	v, err = m.Toggle(1, PanelWhatsApp)
	require.NoError(t, err)
	assert.True(t, v)

	require.NoError(t, m.Close(1, PanelWhatsApp))
	require.NoError(t, m.Close(1, PanelWhatsApp), "closing a closed panel is fine")

	snap := m.Snapshot(1)
	assert.Len(t, snap, len(DefaultPanels))
	for _, open := range snap {
		assert.False(t, open)
	}
}

func TestManager_UnknownPanel(t *testing.T) {
	m := NewManager("a", "b")

	assert.ErrorIs(t, m.Open(1, "lead_form"), ErrUnknownPanel)
	_, err := m.Toggle(1, "c")
	assert.ErrorIs(t, err, ErrUnknownPanel)
	_, err = m.IsOpen(1, "")
	assert.ErrorIs(t, err, ErrUnknownPanel)
	assert.Equal(t, []string{"a", "b"}, m.Panels())
}

func TestManager_CloseAll(t *testing.T) {
	m := NewManager()
	require.NoError(t, m.Open(7, PanelFilters))
	require.NoError(t, m.Open(7, PanelSettings))

	m.CloseAll(7)
	assert.False(t, m.Snapshot(7)[PanelFilters])
	assert.False(t, m.Snapshot(7)[PanelSettings])
}

func TestManager_ConcurrentToggles(t *testing.T) {
	m := NewManager()
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = m.Toggle(1, PanelFilters)
		}()
	}
	wg.Wait()

	open, err := m.IsOpen(1, PanelFilters)
	require.NoError(t, err)
	assert.False(t, open, "an even number of toggles leaves the panel closed")
}
