package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/aretw0/tally/internal/config"
	"github.com/aretw0/tally/internal/logging"
	"github.com/aretw0/tally/internal/metrics"
	"github.com/aretw0/tally/internal/testutils"
	"github.com/aretw0/tally/pkg/adapters/memory"
	"github.com/aretw0/tally/pkg/adapters/redis"
	"github.com/aretw0/tally/pkg/domain"
	"github.com/aretw0/tally/pkg/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func build(t *testing.T, cfg *config.Config, opts ...BuildOption) *App {
	t.Helper()
	require.NoError(t, cfg.Validate())
	app, err := Build(cfg, logging.NewNop(), opts...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	return app
}

func TestBuild_MemoryStore(t *testing.T) {
	renderer := memory.NewRenderer()
	m := metrics.New()
	app := build(t, config.Default(), WithRenderer(renderer), WithMetrics(m))
	assert.Empty(t, app.Sources)
	assert.Same(t, m, app.Metrics)

	ctx := context.Background()
	d := app.Dashboard
	require.NoError(t, d.Initialize(ctx))
	assert.Equal(t, 3, renderer.Live())

	require.NoError(t, d.Store().ReplaceLeads(ctx, []domain.Lead{{ID: "l1", Status: domain.LeadNew}}))
	cfg, ok := d.Chart(domain.SlotStatus)
	require.True(t, ok)
	assert.Equal(t, 1.0, cfg.Total())
}

func TestBuild_RecreateMode(t *testing.T) {
	cfg := config.Default()
	cfg.RefreshMode = "recreate"
	renderer := memory.NewRenderer()
	d := build(t, cfg, WithRenderer(renderer)).Dashboard

	ctx := context.Background()
	require.NoError(t, d.Initialize(ctx))
	require.NoError(t, d.RefreshAll(ctx))
	assert.Equal(t, 6, renderer.Created())
	assert.Equal(t, 3, renderer.Live())
}

func TestBuild_InvalidRefreshMode(t *testing.T) {
	cfg := config.Default()
	cfg.RefreshMode = "sometimes"
	_, err := Build(cfg, logging.NewNop())
	assert.Error(t, err)
}

func TestBuild_RedisStore(t *testing.T) {
	mr := miniredis.RunT(t)
	cfg := config.Default()
	cfg.Store = config.StoreRedis
	cfg.Redis.Addr = mr.Addr()
	cfg.Redis.Prefix = "test:"

	app := build(t, cfg)
	require.Len(t, app.Sources, 1)
	changes, ok := app.Sources[0].(*redis.ChangeSource)
	require.True(t, ok)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	d := app.Dashboard
	require.NoError(t, d.Initialize(ctx))
	go d.Run(ctx, app.Sources...)

	select {
	case <-changes.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("change source did not subscribe")
	}

	require.NoError(t, d.Store().ReplaceProjects(ctx, []domain.Project{
		{ID: "p1", Status: domain.ProjectActive},
		{ID: "p2", Status: domain.ProjectActive},
	}))
	assert.True(t, mr.Exists("test:projects"))

	require.Eventually(t, func() bool {
		cfg, ok := d.Chart(domain.SlotProjects)
		return ok && cfg.Total() == 2
	}, 2*time.Second, 10*time.Millisecond)
}

func TestBuild_LoamSource(t *testing.T) {
	dir, _ := testutils.SetupRecordRepo(t, testutils.Records{
		"leads/acme.json": `{"name": "Acme", "status": "won"}`,
	})

	cfg := config.Default()
	cfg.Store = config.StoreLoam
	cfg.DataDir = dir

	app := build(t, cfg)
	assert.Len(t, app.Sources, 1)

	ctx := context.Background()
	d := app.Dashboard
	require.NoError(t, d.Initialize(ctx))
	chart, ok := d.Chart(domain.SlotStatus)
	require.True(t, ok)
	assert.Equal(t, 1.0, chart.Total())

	assert.ErrorIs(t, d.Store().ReplaceLeads(ctx, nil), domain.ErrReadOnly)
}

func TestBuild_ThemeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "themes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`default: night
themes:
  night:
    --text-color: "#eeeeee"
    --card-bg: "#000000"
  day:
    --text-color: "#111111"
`), 0o644))

	cfg := config.Default()
	cfg.ThemeFile = path

	app := build(t, cfg)
	require.Len(t, app.Sources, 1)
	_, ok := app.Sources[0].(*theme.FileWatcher)
	assert.True(t, ok)

	d := app.Dashboard
	assert.Equal(t, "night", d.Theme(), "unknown configured theme falls back to the file default")
	assert.Equal(t, "#eeeeee", d.Style().Text)

	cfg.Theme = "day"
	d = build(t, cfg).Dashboard
	assert.Equal(t, "#111111", d.Style().Text)
	assert.Equal(t, "", d.Style().Background)
}

func TestBuild_MissingThemeFile(t *testing.T) {
	cfg := config.Default()
	cfg.ThemeFile = filepath.Join(t.TempDir(), "nope.yaml")
	_, err := Build(cfg, logging.NewNop())
	assert.Error(t, err)
}

func TestReport(t *testing.T) {
	d := build(t, config.Default()).Dashboard
	ctx := context.Background()
	require.NoError(t, d.Store().ReplacePayments(ctx, []domain.Payment{
		{ID: "p1", Amount: 1500, Status: domain.PaymentPaid, PaidAt: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)},
	}))

	md, err := Report(ctx, d, time.Date(2026, 2, 3, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Contains(t, md, "# Tally report")
	assert.Contains(t, md, "| 2026-02 | 1,500 |")
}

func TestRunReport_Raw(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tally.yaml")
	require.NoError(t, os.WriteFile(path, []byte("theme: dark\nlog_level: error\n"), 0o644))

	var buf bytes.Buffer
	err := RunReport(context.Background(), &buf, ReportOptions{
		Options: Options{ConfigPath: path},
		Raw:     true,
	})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(buf.String(), "# Tally report"))
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tally.yaml")
	require.NoError(t, os.WriteFile(path, []byte("log_level: warn\naddr: \":9000\"\n"), 0o644))
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("TALLY_THEME=dark\n"), 0o644))

	cfg, err := LoadConfig(Options{ConfigPath: path, EnvFiles: []string{envFile}})
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, ":9000", cfg.Addr)
	assert.Equal(t, "dark", cfg.Theme)

	cfg, err = LoadConfig(Options{ConfigPath: path, Debug: true})
	require.NoError(t, err)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestSignalContext_Cancel(t *testing.T) {
	sc := NewSignalContext(context.Background())
	sc.Cancel()
	<-sc.Done()
	assert.Nil(t, sc.Signal())
}
