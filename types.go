package main

import (
	"time"

	"go.uber.org/zap"
)

type model struct {
	width  int
	height int

	editor     *Editor
	config     *Config
	configPath string
	store      *StateStore
	logger     *zap.Logger
	metrics    *Metrics

	themePref    Theme
	hasDark      bool
	savedVersion int
	savedTheme   Theme

	help           bool
	helpScroll     int
	successMessage string
	errorMessage   string
	mouseDown      bool
	importPath     string
}

// frameMsg drives long-press, debounced saves and the dash animation.
type frameMsg time.Time

type configChangedMsg struct {
	config *Config
}

type stateSavedMsg struct {
	err error
}

// importFileMsg carries a scene file read off the UI goroutine.
type importFileMsg struct {
	source string
	data   []byte
	err    error
}
