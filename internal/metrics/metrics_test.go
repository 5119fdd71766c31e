package metrics_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/tally"
	"github.com/aretw0/tally/internal/metrics"
	"github.com/aretw0/tally/pkg/adapters/memory"
	"github.com/aretw0/tally/pkg/domain"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHooks_RecordLifecycle(t *testing.T) {
	m := metrics.New()
	renderer := memory.NewRenderer()
	d, err := tally.New(tally.WithLifecycleHooks(m.Hooks(nil)), tally.WithRenderer(renderer))
	require.NoError(t, err)
	defer d.Close()

	ctx := context.Background()
	require.NoError(t, d.Initialize(ctx))
	require.NoError(t, d.Store().ReplaceLeads(ctx, nil))

	renderer.FailUpdate(domain.SlotRevenue, errors.New("gone"))
	renderer.FailCreate(domain.SlotRevenue, errors.New("gone"))
	assert.Error(t, d.RefreshAll(ctx))

	reg := m.Registry()
	assert.Equal(t, 2, testutil.CollectAndCount(reg, "tally_refreshes_total"), "manual and leads:changed")
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "tally_triggers_total"))
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "tally_refresh_slot_failures_total"))

	// Three created, then revenue destroyed and not recreated.
	assert.Equal(t, 2.0, liveGauge(t, m))
}

func liveGauge(t *testing.T, m *metrics.Metrics) float64 {
	t.Helper()
	families, err := m.Registry().Gather()
	require.NoError(t, err)
	for _, f := range families {
		if f.GetName() == "tally_live_charts" {
			return f.GetMetric()[0].GetGauge().GetValue()
		}
	}
	t.Fatal("tally_live_charts not gathered")
	return 0
}

func TestHandler_ServesRegistry(t *testing.T) {
	m := metrics.New()
	m.Hooks(nil).OnDebounced(context.Background(), domain.NewTrigger(domain.TriggerViewportResized, "test"))

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	assert.True(t, strings.Contains(body, "tally_resize_debounced_total 1"), body)
}
