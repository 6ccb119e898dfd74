package main

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func TestLoadConfigMissingFileUsesDefaults(t *testing.T) {
	config, err := loadConfig(filepath.Join(t.TempDir(), "absent.yaml"))

	require.NoError(t, err)
	assert.Equal(t, defaultConfig(), config)
}

func TestLoadConfig(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	path := filepath.Join(home, configFileName)
	writeFile(t, path, `
save_directory: ~/sketches
theme: light
stroke_width: 2
connector_style: straight
log_file: ~/logs/sketchflow.log
debug: true
watch_config: false
`)

	config, err := loadConfig(path)

	require.NoError(t, err)
	assert.Equal(t, filepath.Join(home, "sketches"), config.SaveDirectory)
	assert.Equal(t, filepath.Join(home, "logs", "sketchflow.log"), config.LogFile)
	assert.Equal(t, ThemeLight, config.Theme)
	assert.Equal(t, 2.0, config.StrokeWidth)
	assert.Equal(t, "straight", config.ConnectorStyle)
	assert.True(t, config.Debug)
	assert.False(t, config.WatchConfig)
	assert.Empty(t, config.MetricsFile)
}

func TestLoadConfigRejects(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"malformed yaml", "theme: [dark"},
		{"unknown theme", "theme: purple"},
		{"stroke too wide", "stroke_width: 9"},
		{"stroke too thin", "stroke_width: 0.5"},
		{"unknown connector style", "connector_style: wavy"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			writeFile(t, path, tt.content)

			config, err := loadConfig(path)

			assert.Error(t, err)
			assert.Equal(t, defaultConfig(), config)
		})
	}
}

func TestConfigSettings(t *testing.T) {
	config := defaultConfig()
	config.StrokeWidth = 4
	config.ConnectorStyle = "straight"

	s := config.Settings(false)
	assert.Equal(t, 4.0, s.StrokeWidth)
	assert.Equal(t, StyleStraight, s.ConnectorStyle)
	assert.Equal(t, ThemeLight, s.Theme)

	assert.Equal(t, ThemeDark, config.Settings(true).Theme)
}

func TestResolveTheme(t *testing.T) {
	tests := []struct {
		pref    Theme
		hasDark bool
		want    Theme
	}{
		{ThemeDark, false, ThemeDark},
		{ThemeLight, true, ThemeLight},
		{ThemeSystem, true, ThemeDark},
		{ThemeSystem, false, ThemeLight},
		{"", false, ThemeLight},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, resolveTheme(tt.pref, tt.hasDark), "pref=%q hasDark=%v", tt.pref, tt.hasDark)
	}
}

func TestExpandPath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	assert.Empty(t, expandPath(""))
	assert.Equal(t, filepath.Join(home, "a", "b"), expandPath("~/a/b"))
	assert.Equal(t, "/tmp/x", expandPath("/tmp/x"))

	wd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(wd, "rel"), expandPath("rel"))
}

func TestGetSavePath(t *testing.T) {
	config := defaultConfig()
	assert.Equal(t, "out.svg", config.GetSavePath("out.svg"))

	config.SaveDirectory = filepath.Join(t.TempDir(), "exports")
	path := config.GetSavePath("out.svg")

	assert.Equal(t, filepath.Join(config.SaveDirectory, "out.svg"), path)
	assert.DirExists(t, config.SaveDirectory)
}

func TestStatePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	config := defaultConfig()

	assert.Equal(t, filepath.Join(home, ".sketchflow", "state.json"), config.statePath())

	config.StateFile = "/var/tmp/state.json"
	assert.Equal(t, "/var/tmp/state.json", config.statePath())
}

func TestExportFileName(t *testing.T) {
	assert.Equal(t, "sketchflow-2024-03-01.svg", exportFileName("svg", t0))
	assert.Equal(t, "sketchflow-2024-03-01.json", exportFileName("json", t0))
}

func TestConfigWatcherReloadsOnWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "theme: dark\n")

	changes := make(chan *Config, 4)
	w, err := NewConfigWatcher(path, zaptest.NewLogger(t), func(c *Config) { changes <- c })
	require.NoError(t, err)
	defer w.Stop()

	writeFile(t, path, "theme: light\nstroke_width: 1\n")

	var got *Config
	assert.Eventually(t, func() bool {
		select {
		case got = <-changes:
			return true
		default:
			return false
		}
	}, 5*time.Second, 20*time.Millisecond)
	require.NotNil(t, got)
	assert.Equal(t, ThemeLight, got.Theme)
	assert.Equal(t, 1.0, got.StrokeWidth)
}

func TestConfigWatcherSkipsInvalidReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	writeFile(t, path, "theme: dark\n")

	changes := make(chan *Config, 4)
	w, err := NewConfigWatcher(path, zaptest.NewLogger(t), func(c *Config) { changes <- c })
	require.NoError(t, err)
	defer w.Stop()

	writeFile(t, path, "theme: purple\n")
	writeFile(t, filepath.Join(filepath.Dir(path), "other.yaml"), "theme: light\n")

	assert.Never(t, func() bool { return len(changes) > 0 }, 600*time.Millisecond, 20*time.Millisecond)
}

func TestConfigWatcherStopIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	w, err := NewConfigWatcher(path, zaptest.NewLogger(t), nil)
	require.NoError(t, err)

	w.Stop()
	w.Stop()
}

func TestStateStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	store := NewStateStore(path)

	theme, entries, cursor, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, theme)
	assert.Empty(t, entries)
	assert.Equal(t, -1, cursor)

	src := newTestEditor(t)
	src.Canvas().Add(rectShape("s1", 0, 0, 100, 60))
	src.saveNow()
	require.NoError(t, store.Save(ThemeLight, src.History().Entries(), src.History().Cursor()))

	theme, entries, cursor, err = store.Load()
	require.NoError(t, err)
	assert.Equal(t, ThemeLight, theme)
	assert.Equal(t, src.History().Entries(), entries)
	assert.Equal(t, 1, cursor)

	leftovers, err := filepath.Glob(filepath.Join(filepath.Dir(path), ".state-*"))
	require.NoError(t, err)
	assert.Empty(t, leftovers)
}

func TestStateStoreRejectsBadFiles(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"not json", "{"},
		{"bad theme", `{"theme":"purple","history":[],"cursor":-1}`},
		{"bad cursor", `{"history":[],"cursor":-3}`},
		{"too many entries", `{"history":[{},{},{},{},{},{},{},{},{},{},{}],"cursor":0}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "state.json")
			writeFile(t, path, tt.content)

			_, entries, cursor, err := NewStateStore(path).Load()

			assert.Error(t, err)
			assert.Nil(t, entries)
			assert.Equal(t, -1, cursor)
		})
	}
}

func TestStateStoreWithoutPath(t *testing.T) {
	store := NewStateStore("")

	assert.NoError(t, store.Save(ThemeDark, nil, -1))
	_, entries, cursor, err := store.Load()
	assert.NoError(t, err)
	assert.Nil(t, entries)
	assert.Equal(t, -1, cursor)
}

func TestNewLogger(t *testing.T) {
	nop, err := newLogger("", true)
	require.NoError(t, err)
	nop.Info("dropped")

	path := filepath.Join(t.TempDir(), "logs", "app.log")
	logger, err := newLogger(path, true)
	require.NoError(t, err)
	logger.Debug("hello")
	_ = logger.Sync()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"logger":"sketchflow"`)
	assert.Contains(t, string(data), `"msg":"hello"`)
}

func TestMetricsWriteToFile(t *testing.T) {
	e := newTestEditor(t)
	path := filepath.Join(t.TempDir(), "metrics.prom")

	require.NoError(t, e.metrics.WriteToFile(""))
	require.NoError(t, e.metrics.WriteToFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), `sketchflow_history_saves_total{mode="immediate"} 1`)
}
