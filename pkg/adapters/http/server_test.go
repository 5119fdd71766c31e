package http

import (
	"bufio"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/tally"
	"github.com/aretw0/tally/pkg/domain"
	"github.com/aretw0/tally/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestDashboard(t *testing.T, opts ...tally.Option) (*tally.Dashboard, *StreamManager) {
	t.Helper()
	streams := NewStreamManager(nil)
	d, err := tally.New(append([]tally.Option{tally.WithRenderer(NewRenderer(streams))}, opts...)...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = d.Close() })
	require.NoError(t, d.Initialize(context.Background()))
	return d, streams
}

func do(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestHealthAndInfo(t *testing.T) {
	d, streams := newTestDashboard(t)
	h := NewHandler(d, WithStreams(streams))

	w := do(h, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())

	w = do(h, http.MethodGet, "/info", "")
	require.Equal(t, http.StatusOK, w.Code)
	var info map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &info))
	assert.Equal(t, "1.0.0", info["api_version"])
	assert.Equal(t, tally.Version, info["version"])
}

func TestOpenAPIDocument(t *testing.T) {
	doc, err := loadSpec()
	require.NoError(t, err)
	assert.NotNil(t, doc.Paths.Find("/charts/{slot}"))

	d, _ := newTestDashboard(t)
	w := do(NewHandler(d), http.MethodGet, "/openapi.yaml", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, rawSpec, w.Body.Bytes())
}

func TestCharts(t *testing.T) {
	d, _ := newTestDashboard(t)
	h := NewHandler(d)

	w := do(h, http.MethodGet, "/charts", "")
	require.Equal(t, http.StatusOK, w.Code)
	var all map[string]domain.ChartConfig
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &all))
	assert.Len(t, all, 3)
	assert.Equal(t, domain.ChartLine, all["revenue"].Type)

	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/charts/status", "").Code)
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/charts/pipeline", "").Code)

	require.NoError(t, d.TeardownAll())
	assert.Equal(t, http.StatusNotFound, do(h, http.MethodGet, "/charts/status", "").Code)
}

func TestReplaceRecords(t *testing.T) {
	d, _ := newTestDashboard(t)
	h := NewHandler(d)

	w := do(h, http.MethodPost, "/leads", `[{"id":"1","status":"won"},{"id":"2","status":"qualified"}]`)
	require.Equal(t, http.StatusNoContent, w.Code)

	cfg, ok := d.Chart(domain.SlotStatus)
	require.True(t, ok)
	assert.Equal(t, []float64{0, 0, 1, 1, 0}, cfg.Data.Datasets[0].Data)

	w = do(h, http.MethodPost, "/payments", `[{"id":"p","amount":75,"status":"paid","paid_at":"2026-04-10T00:00:00Z"}]`)
	require.Equal(t, http.StatusNoContent, w.Code)
	cfg, _ = d.Chart(domain.SlotRevenue)
	assert.Equal(t, []string{"2026-04"}, cfg.Data.Labels)

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/projects", `{"not":"a list"}`).Code)
}

type frozenSource struct{}

func (frozenSource) Snapshot(context.Context) (*domain.Snapshot, error) { return &domain.Snapshot{}, nil }

func TestReplaceRecords_ReadOnly(t *testing.T) {
	d, _ := newTestDashboard(t, tally.WithSource(frozenSource{}))
	w := do(NewHandler(d), http.MethodPost, "/leads", `[]`)
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestThemeAndStyle(t *testing.T) {
	d, _ := newTestDashboard(t)
	h := NewHandler(d)

	w := do(h, http.MethodPost, "/theme", `{"theme":"dark"}`)
	require.Equal(t, http.StatusOK, w.Code)
	var resp styleResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "dark", resp.Theme)
	assert.Equal(t, []string{"dark", "light"}, resp.Themes)
	assert.Equal(t, "#f3f4f6", resp.Style.Text)

	cfg, _ := d.Chart(domain.SlotStatus)
	assert.Equal(t, "#f3f4f6", cfg.Options.Legend.Color)

	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/theme", `{"theme":"neon"}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(h, http.MethodPost, "/theme", `{}`).Code)

	w = do(h, http.MethodGet, "/style", "")
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "dark", resp.Theme)
}

func TestRefreshAndViewport(t *testing.T) {
	d, _ := newTestDashboard(t)
	h := NewHandler(d)

	assert.Equal(t, http.StatusNoContent, do(h, http.MethodPost, "/refresh", "").Code)
	assert.Equal(t, http.StatusAccepted, do(h, http.MethodPost, "/viewport", `{"width":800,"height":600}`).Code)
	assert.Equal(t, http.StatusAccepted, do(h, http.MethodPost, "/viewport", "").Code)

	require.NoError(t, d.Close())
	assert.Equal(t, http.StatusConflict, do(h, http.MethodPost, "/refresh", "").Code)
}

func TestCORSPreflight(t *testing.T) {
	d, _ := newTestDashboard(t)
	w := do(NewHandler(d), http.MethodOptions, "/charts", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
}

func TestSubscribeEvents(t *testing.T) {
	d, streams := newTestDashboard(t)
	srv := httptest.NewServer(NewHandler(d, WithStreams(streams)))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?slot=status", nil)
	require.NoError(t, err)
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	lines := make(chan string, 64)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			lines <- sc.Text()
		}
	}()
	next := func() string {
		select {
		case l := <-lines:
			return l
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for SSE line")
			return ""
		}
	}

	assert.Equal(t, "event: ping", next())
	assert.Equal(t, "data: connected", next())
	assert.Equal(t, "", next())
	assert.Equal(t, "event: update", next())
	assert.Contains(t, next(), `"slot":"status"`)
	assert.Equal(t, "", next())

	require.Eventually(t, func() bool { return streams.Subscribers() == 1 }, time.Second, 10*time.Millisecond)
	require.NoError(t, d.Store().ReplaceLeads(context.Background(), []domain.Lead{{ID: "x", Status: domain.LeadLost}}))

	assert.Equal(t, "event: update", next())
	data := strings.TrimPrefix(next(), "data: ")
	var evt ChartEvent
	require.NoError(t, json.Unmarshal([]byte(data), &evt))
	assert.Equal(t, domain.SlotStatus, evt.Slot)
	require.NotNil(t, evt.Config)
	assert.Equal(t, []float64{0, 0, 0, 0, 1}, evt.Config.Data.Datasets[0].Data)
}

func TestSubscribeEvents_BadSlot(t *testing.T) {
	d, _ := newTestDashboard(t)
	w := do(NewHandler(d), http.MethodGet, "/events?slot=nope", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStreamManager_FiltersAndDrops(t *testing.T) {
	sm := NewStreamManager(nil)
	statusOnly, cancelStatus := sm.Subscribe(domain.SlotStatus)
	defer cancelStatus()
	all, cancelAll := sm.Subscribe()

	sm.Broadcast(ChartEvent{Kind: EventDestroy, Slot: domain.SlotRevenue})
	assert.Len(t, statusOnly, 0)
	assert.Len(t, all, 1)

	for i := 0; i < 40; i++ {
		sm.Broadcast(ChartEvent{Kind: EventUpdate, Slot: domain.SlotStatus})
	}
	assert.Len(t, statusOnly, 16, "full buffers drop instead of blocking")

	cancelAll()
	cancelAll()
	assert.Equal(t, 1, sm.Subscribers())
}

func TestRenderer_Contract(t *testing.T) {
	sm := NewStreamManager(nil)
	events, cancel := sm.Subscribe()
	defer cancel()

	ports.RunRendererContract(t, NewRenderer(sm))

	kinds := make(map[string]int)
	for len(events) > 0 {
		kinds[(<-events).Kind]++
	}
	assert.Equal(t, map[string]int{EventCreate: 3, EventUpdate: 3, EventDestroy: 3}, kinds)
}
