package tally_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/tally"
	"github.com/aretw0/tally/pkg/adapters/memory"
	"github.com/aretw0/tally/pkg/domain"
	"github.com/aretw0/tally/pkg/ports"
	"github.com/aretw0/tally/pkg/signals"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDashboard(t *testing.T, opts ...tally.Option) *tally.Dashboard {
	t.Helper()
	d, err := tally.New(opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	require.NoError(t, d.Initialize(context.Background()))
	return d
}

func TestDashboard_StoreWritesRefreshCharts(t *testing.T) {
	var reasons []string
	d := newDashboard(t, tally.WithLifecycleHooks(domain.LifecycleHooks{
		OnRefresh: func(_ context.Context, e *domain.RefreshEvent) {
			reasons = append(reasons, e.Reason)
		},
	}))

	err := d.Store().ReplaceProjects(context.Background(), []domain.Project{
		{ID: "p1", Status: domain.ProjectCompleted, Budget: 1200},
	})
	require.NoError(t, err)

	assert.Equal(t, []string{"projects:changed"}, reasons)
	cfg, ok := d.Chart(domain.SlotProjects)
	require.True(t, ok)
	assert.Equal(t, []float64{0, 0, 0, 1}, cfg.Data.Datasets[0].Data)
	assert.Equal(t, []float64{0, 0, 0, 1200}, cfg.Data.Datasets[1].Data)
}

func TestDashboard_SetThemeRefreshes(t *testing.T) {
	d := newDashboard(t)

	require.NoError(t, d.SetTheme("dark"))
	assert.Equal(t, "#f3f4f6", d.Style().Text)

	cfg, _ := d.Chart(domain.SlotStatus)
	assert.Equal(t, "#f3f4f6", cfg.Options.Legend.Color)

	assert.ErrorIs(t, d.SetTheme("sepia"), domain.ErrUnknownTheme)
}

func TestDashboard_ResizeIsDebounced(t *testing.T) {
	refreshed := make(chan string, 8)
	d := newDashboard(t,
		tally.WithDebounce(10*time.Millisecond),
		tally.WithLifecycleHooks(domain.LifecycleHooks{
			OnRefresh: func(_ context.Context, e *domain.RefreshEvent) {
				refreshed <- e.Reason
			},
		}),
	)

	for i := 0; i < 4; i++ {
		d.Resize("test")
	}

	select {
	case reason := <-refreshed:
		assert.Equal(t, "viewport:resized", reason)
	case <-time.After(time.Second):
		t.Fatal("debounced refresh never ran")
	}
	time.Sleep(30 * time.Millisecond)
	assert.Empty(t, refreshed)
}

func TestDashboard_SharedBus(t *testing.T) {
	bus := signals.NewBus(nil)
	store := memory.NewStore(bus)
	d := newDashboard(t, tally.WithBus(bus), tally.WithStore(store))

	require.NoError(t, store.ReplaceLeads(context.Background(), []domain.Lead{{ID: "l1", Status: domain.LeadLost}}))

	cfg, _ := d.Chart(domain.SlotStatus)
	assert.Equal(t, 1.0, cfg.Total())
}

func TestDashboard_CloseEmptiesSlots(t *testing.T) {
	d := newDashboard(t)
	require.NoError(t, d.Close())
	require.NoError(t, d.Close())

	for _, slot := range domain.Slots() {
		assert.Equal(t, domain.SlotEmpty, d.State(slot))
	}
}

func TestRefreshAll_Shim(t *testing.T) {
	tally.SetDefault(nil)
	assert.ErrorIs(t, tally.RefreshAll(context.Background()), tally.ErrNoDefault)

	var refreshes int
	d := newDashboard(t, tally.WithLifecycleHooks(domain.LifecycleHooks{
		OnRefresh: func(context.Context, *domain.RefreshEvent) { refreshes++ },
	}))
	tally.SetDefault(d)
	require.NoError(t, tally.RefreshAll(context.Background()))
	assert.Equal(t, 1, refreshes)

	require.NoError(t, d.Close())
	assert.Nil(t, tally.Default(), "closing the default dashboard unregisters it")
}

type failingSource struct{ err error }

func (s failingSource) Run(ctx context.Context, pub ports.Publisher) error {
	pub.Publish(domain.NewTrigger(domain.TriggerLeadsChanged, "failing"))
	return s.err
}

func TestDashboard_RunStopsOnSourceFailure(t *testing.T) {
	d := newDashboard(t)
	boom := errors.New("source lost")

	err := d.Run(context.Background(), failingSource{err: boom})
	assert.ErrorIs(t, err, boom)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, tally.Version)
}

type staticSource struct{ snap domain.Snapshot }

func (s staticSource) Snapshot(context.Context) (*domain.Snapshot, error) { return s.snap.Clone(), nil }

func TestDashboard_ReadOnlySource(t *testing.T) {
	d := newDashboard(t, tally.WithSource(staticSource{snap: domain.Snapshot{
		Payments: []domain.Payment{{ID: "p", Amount: 40, Status: domain.PaymentPaid, PaidAt: time.Date(2026, 5, 2, 0, 0, 0, 0, time.UTC)}},
	}}))

	cfg, _ := d.Chart(domain.SlotRevenue)
	assert.Equal(t, []string{"2026-05"}, cfg.Data.Labels)

	err := d.Store().ReplaceLeads(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrReadOnly)
}
