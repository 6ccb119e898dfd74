package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

const configFileName = ".sketchflow.yaml"

type Config struct {
	SaveDirectory  string  `yaml:"save_directory"`
	Theme          Theme   `yaml:"theme" validate:"omitempty,oneof=dark light system"`
	StrokeWidth    float64 `yaml:"stroke_width" validate:"omitempty,min=1,max=4"`
	ConnectorStyle string  `yaml:"connector_style" validate:"omitempty,oneof=bezier straight"`
	LogFile        string  `yaml:"log_file"`
	Debug          bool    `yaml:"debug"`
	MetricsFile    string  `yaml:"metrics_file"`
	StateFile      string  `yaml:"state_file"`
	WatchConfig    bool    `yaml:"watch_config"`
}

func defaultConfig() *Config {
	return &Config{
		Theme:          ThemeSystem,
		StrokeWidth:    defaultStroke,
		ConnectorStyle: string(StyleBezier),
		WatchConfig:    true,
	}
}

func defaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return configFileName
	}
	return filepath.Join(homeDir, configFileName)
}

// loadConfig reads path over the defaults. A missing file is not an error.
func loadConfig(path string) (*Config, error) {
	config := defaultConfig()

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return config, nil
	}
	if err != nil {
		return config, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, config); err != nil {
		return defaultConfig(), fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := validate.Struct(config); err != nil {
		return defaultConfig(), fmt.Errorf("invalid config %s: %w", path, err)
	}

	config.SaveDirectory = expandPath(config.SaveDirectory)
	config.LogFile = expandPath(config.LogFile)
	config.MetricsFile = expandPath(config.MetricsFile)
	config.StateFile = expandPath(config.StateFile)
	return config, nil
}

func expandPath(value string) string {
	if value == "" {
		return value
	}
	if strings.HasPrefix(value, "~") {
		if homeDir, err := os.UserHomeDir(); err == nil {
			value = filepath.Join(homeDir, strings.TrimPrefix(value, "~"))
		}
	}
	if !filepath.IsAbs(value) {
		if absPath, err := filepath.Abs(value); err == nil {
			value = absPath
		}
	}
	return value
}

func (c *Config) GetSavePath(filename string) string {
	if c.SaveDirectory == "" {
		return filename
	}
	os.MkdirAll(c.SaveDirectory, 0755)
	return filepath.Join(c.SaveDirectory, filename)
}

func (c *Config) statePath() string {
	if c.StateFile != "" {
		return c.StateFile
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(homeDir, ".sketchflow", "state.json")
}

// Settings turns the file's preferences into editor defaults. hasDark
// resolves the "system" theme.
func (c *Config) Settings(hasDark bool) Settings {
	s := DefaultSettings()
	if c.StrokeWidth > 0 {
		s.StrokeWidth = c.StrokeWidth
	}
	if c.ConnectorStyle != "" {
		s.ConnectorStyle = ConnectorStyle(c.ConnectorStyle)
	}
	s.Theme = resolveTheme(c.Theme, hasDark)
	return s
}

func resolveTheme(pref Theme, hasDark bool) Theme {
	switch pref {
	case ThemeLight, ThemeDark:
		return pref
	}
	if hasDark {
		return ThemeDark
	}
	return ThemeLight
}

// ConfigWatcher reloads the config file when it changes on disk and hands
// the new value to onChange. Editors often replace files by rename, so the
// directory is watched and events are filtered by name.
type ConfigWatcher struct {
	path     string
	onChange func(*Config)
	logger   *zap.Logger
	watcher  *fsnotify.Watcher
	stopCh   chan struct{}
	stopOnce sync.Once
	delay    time.Duration
}

func NewConfigWatcher(path string, logger *zap.Logger, onChange func(*Config)) (*ConfigWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if err := fsWatcher.Add(filepath.Dir(path)); err != nil {
		fsWatcher.Close()
		return nil, fmt.Errorf("failed to watch %s: %w", path, err)
	}
	w := &ConfigWatcher{
		path:     path,
		onChange: onChange,
		logger:   logger,
		watcher:  fsWatcher,
		stopCh:   make(chan struct{}),
		delay:    200 * time.Millisecond,
	}
	go w.watchLoop()
	logger.Info("watching config", zap.String("path", path))
	return w, nil
}

func (w *ConfigWatcher) watchLoop() {
	defer w.watcher.Close()

	var debounceTimer *time.Timer
	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.path) {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(w.delay, w.reload)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("config watcher error", zap.Error(err))

		case <-w.stopCh:
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			return
		}
	}
}

func (w *ConfigWatcher) reload() {
	config, err := loadConfig(w.path)
	if err != nil {
		w.logger.Warn("config reload rejected", zap.Error(err))
		return
	}
	w.logger.Info("config reloaded", zap.String("theme", string(config.Theme)))
	if w.onChange != nil {
		w.onChange(config)
	}
}

func (w *ConfigWatcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}
