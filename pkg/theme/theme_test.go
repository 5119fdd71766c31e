package theme_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/tally/internal/logging"
	"github.com/aretw0/tally/pkg/domain"
	"github.com/aretw0/tally/pkg/ports"
	"github.com/aretw0/tally/pkg/theme"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapSource map[string]string

func (m mapSource) Lookup(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

func TestResolve_ReadsAllFourVariables(t *testing.T) {
	src := mapSource{
		domain.VarText:       "#111",
		domain.VarTextMuted:  "#222",
		domain.VarBorder:     "#333",
		domain.VarBackground: "#444",
	}
	style := theme.NewResolver(src).Resolve()

	assert.Equal(t, "#111", style.Text)
	assert.Equal(t, "#222", style.TextMuted)
	assert.Equal(t, "#333", style.Border)
	assert.Equal(t, "#444", style.Background)
}

func TestResolve_MissingVariablesAreEmpty(t *testing.T) {
	style := theme.NewResolver(mapSource{}).Resolve()
	assert.Empty(t, style.Text)
	assert.Empty(t, style.Background)
	assert.Len(t, style.Palette.Hues(), 5)

	assert.Empty(t, theme.NewResolver(nil).Resolve().Border)
}

func TestResolve_ChangesIffVariablesChange(t *testing.T) {
	src := mapSource{domain.VarText: "#000"}
	r := theme.NewResolver(src)

	a := r.Resolve()
	b := r.Resolve()
	assert.Equal(t, a, b, "unchanged variables resolve identically")

	src[domain.VarText] = "#fff"
	c := r.Resolve()
	assert.NotEqual(t, a, c)
	assert.Equal(t, "#fff", c.Text)
	assert.Equal(t, a.Palette, c.Palette, "palette is constant")
}

func TestPalette_FillAndStroke(t *testing.T) {
	p := theme.Palette()
	assert.Equal(t, "rgba(59, 130, 246, 0.2)", p.Blue.Fill)
	assert.Equal(t, "rgba(59, 130, 246, 1)", p.Blue.Stroke)
	for _, h := range p.Hues() {
		assert.NotEmpty(t, h.Name)
		assert.Contains(t, h.Fill, "0.2)")
	}

	_, err := theme.NewHue("bogus", "not-a-color")
	assert.Error(t, err)
}

func TestRoot_SetThemeNotifiesAndResolverFollows(t *testing.T) {
	root, err := theme.NewRoot(nil, "light")
	require.NoError(t, err)
	r := theme.NewResolver(root)

	var changes []string
	dispose := root.Observe(func(attr, oldValue, newValue string) {
		changes = append(changes, oldValue+"->"+newValue)
	})

	assert.Equal(t, "#1f2937", r.Resolve().Text)
	require.NoError(t, root.SetTheme("dark"))
	assert.Equal(t, "#f3f4f6", r.Resolve().Text)
	assert.Equal(t, "#1f2937", r.Resolve().Background)

	require.NoError(t, root.SetTheme("dark"), "same theme does not notify")
	assert.Equal(t, []string{"light->dark"}, changes)

	dispose()
	require.NoError(t, root.SetTheme("light"))
	assert.Len(t, changes, 1)

	assert.ErrorIs(t, root.SetTheme("sepia"), domain.ErrUnknownTheme)
}

func TestNewRoot_UnknownActive(t *testing.T) {
	_, err := theme.NewRoot(nil, "sepia")
	assert.ErrorIs(t, err, domain.ErrUnknownTheme)
}

func TestBind_PublishesThemeTrigger(t *testing.T) {
	root, err := theme.NewRoot(nil, "light")
	require.NoError(t, err)

	var got []domain.Trigger
	dispose := theme.Bind(root, ports.PublisherFunc(func(tr domain.Trigger) {
		got = append(got, tr)
	}))

	root.SetAttribute("lang", "en")
	assert.Empty(t, got, "other attributes are not theme changes")

	require.NoError(t, root.SetTheme("dark"))
	require.Len(t, got, 1)
	assert.Equal(t, domain.TriggerThemeChanged, got[0].Kind)
	assert.Equal(t, "root", got[0].Source)

	dispose()
	require.NoError(t, root.SetTheme("light"))
	assert.Len(t, got, 1, "nothing is published after dispose")
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "themes.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
themes:
  paper:
    --text-color: "#222222"
  night:
    --text-color: "#eeeeee"
`), 0o644))

	f, err := theme.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "night", f.Default, "first theme by name when no default is set")
	assert.Equal(t, "#222222", f.Themes["paper"][domain.VarText])

	require.NoError(t, os.WriteFile(path, []byte("themes: {}\n"), 0o644))
	_, err = theme.LoadFile(path)
	assert.Error(t, err)
}

func TestFileWatcher_ReloadsThemes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "themes.yaml")
	write := func(color string) {
		require.NoError(t, os.WriteFile(path, []byte("default: main\nthemes:\n  main:\n    --text-color: \""+color+"\"\n"), 0o644))
	}
	write("#000000")

	f, err := theme.LoadFile(path)
	require.NoError(t, err)
	root, err := theme.NewRoot(f.Themes, f.Default)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w := &theme.FileWatcher{Path: path, Root: root, Logger: logging.NewNop()}
	go func() { _ = w.Watch(ctx) }()

	require.Eventually(t, func() bool {
		write("#ffffff")
		v, _ := root.Lookup(domain.VarText)
		return v == "#ffffff"
	}, 3*time.Second, 50*time.Millisecond)
}
