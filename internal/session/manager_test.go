package session

import (
	"errors"
	"testing"
	"time"

	"github.com/pdftools/backend/internal/models"
	"github.com/pdftools/backend/internal/registry"
	"github.com/pdftools/backend/internal/testutil"
	"github.com/pdftools/backend/internal/upload"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(maxSessions int) (*Manager, *testutil.ManualClock) {
	clk := testutil.NewManualClock(time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC))
	m := NewManager(registry.Default(), Options{
		MaxSessions: maxSessions,
		KeepAlive:   time.Minute,
		Clock:       clk,
	})
	return m, clk
}

func TestManager_StartAndGet(t *testing.T) {
	m, _ := newTestManager(0)
	defer m.Shutdown()

	w, err := m.Start("merge-pdf")
	require.NoError(t, err)
	assert.Equal(t, models.StepUpload, w.Step())
	assert.Equal(t, "merge-pdf", w.Tool().ID)
	assert.Equal(t, 1, m.Len())

	got, err := m.Get(w.ID())
	require.NoError(t, err)
	assert.Same(t, w, got)

	_, err = m.Get("missing")
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestManager_StartUnknownTool(t *testing.T) {
	m, _ := newTestManager(0)

	_, err := m.Start("not-a-tool")
	assert.True(t, errors.Is(err, registry.ErrToolNotFound))
	assert.Zero(t, m.Len())
}

func TestManager_VisitsAreIndependent(t *testing.T) {
	m, _ := newTestManager(0)
	defer m.Shutdown()

	first, err := m.Start("merge-pdf")
	require.NoError(t, err)
	_, err = first.AddFiles([]upload.Selection{{Name: "a.pdf"}})
	require.NoError(t, err)

	second, err := m.Start("merge-pdf")
	require.NoError(t, err)
	assert.NotEqual(t, first.ID(), second.ID())
	assert.Empty(t, second.Snapshot().Files)
	assert.Len(t, first.Snapshot().Files, 1)
}

func TestManager_EndClosesWizard(t *testing.T) {
	m, _ := newTestManager(0)

	w, err := m.Start("split-pdf")
	require.NoError(t, err)

	require.NoError(t, m.End(w.ID()))
	assert.True(t, w.Closed())
	assert.Zero(t, m.Len())

	assert.True(t, errors.Is(m.End(w.ID()), ErrSessionNotFound))
}

func TestManager_Touch(t *testing.T) {
	m, _ := newTestManager(0)
	defer m.Shutdown()

	w, err := m.Start("split-pdf")
	require.NoError(t, err)

	assert.True(t, m.Touch(w.ID()))
	assert.False(t, m.Touch("missing"))
}

func TestManager_CleanupOldSessions(t *testing.T) {
	m, clk := newTestManager(0)
	defer m.Shutdown()

	stale, err := m.Start("merge-pdf")
	require.NoError(t, err)
	fresh, err := m.Start("split-pdf")
	require.NoError(t, err)

	clk.Advance(45 * time.Minute)
	m.Touch(fresh.ID())

	assert.Equal(t, 1, m.CleanupOldSessions(SessionMaxAge))
	assert.True(t, stale.Closed())
	assert.False(t, fresh.Closed())

	_, err = m.Get(stale.ID())
	assert.True(t, errors.Is(err, ErrSessionNotFound))
	_, err = m.Get(fresh.ID())
	assert.NoError(t, err)

	// Nothing is older than maxAge yet.
	clk.Advance(10 * time.Minute)
	assert.Zero(t, m.CleanupOldSessions(SessionMaxAge))
}

func TestManager_EvictsIdleBeforeActive(t *testing.T) {
	m, clk := newTestManager(3)
	defer m.Shutdown()

	oldest, err := m.Start("merge-pdf")
	require.NoError(t, err)
	clk.Advance(time.Second)
	idle, err := m.Start("split-pdf")
	require.NoError(t, err)
	clk.Advance(time.Second)
	active, err := m.Start("rotate-pdf")
	require.NoError(t, err)

	// oldest stays in use; idle and active age past the keep-alive window
	// but active is touched again.
	clk.Advance(2 * time.Minute)
	m.Touch(oldest.ID())
	m.Touch(active.ID())

	_, err = m.Start("watermark")
	require.NoError(t, err)

	assert.Equal(t, 3, m.Len())
	assert.True(t, idle.Closed())
	assert.False(t, oldest.Closed())
	assert.False(t, active.Closed())
}

func TestManager_EvictsLeastRecentlyUsedWhenAllActive(t *testing.T) {
	m, clk := newTestManager(2)
	defer m.Shutdown()

	a, err := m.Start("merge-pdf")
	require.NoError(t, err)
	clk.Advance(time.Second)
	b, err := m.Start("split-pdf")
	require.NoError(t, err)
	clk.Advance(time.Second)
	m.Touch(a.ID())

	_, err = m.Start("rotate-pdf")
	require.NoError(t, err)

	assert.Equal(t, 2, m.Len())
	assert.True(t, b.Closed())
	assert.False(t, a.Closed())
}

func TestManager_Shutdown(t *testing.T) {
	m, _ := newTestManager(0)

	a, err := m.Start("merge-pdf")
	require.NoError(t, err)
	b, err := m.Start("split-pdf")
	require.NoError(t, err)

	m.Shutdown()
	assert.Zero(t, m.Len())
	assert.True(t, a.Closed())
	assert.True(t, b.Closed())
}
