package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripRTF(t *testing.T) {
	in := `{\rtf1\ansi{\fonttbl}\f0 hello\par world \{x\}}`

	assert.True(t, isRTF(in))
	assert.Equal(t, "hello\nworld {x}", stripRTF(in))
}

func TestCleanClipboardText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"line endings", "a\r\nb\rc", "a\nb\nc"},
		{"control characters", "a\x01b\tc\x7f", "ab\tc\x7f"},
		{"html", `<html><body><pre>{"a":&quot;x &amp; y&quot;}</pre></body></html>`, `{"a":"x & y"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanClipboardText(tt.in))
		})
	}
}

func TestSnapshotFromClipboardText(t *testing.T) {
	got, err := snapshotFromClipboardText("scene:\r\n{\"version\":1,\"items\":[]}\r\nend")
	require.NoError(t, err)
	assert.Equal(t, `{"version":1,"items":[]}`, got)

	_, err = snapshotFromClipboardText("no scene here")
	assert.ErrorIs(t, err, errNoSnapshotInClipboard)

	_, err = snapshotFromClipboardText("} backwards {")
	assert.ErrorIs(t, err, errNoSnapshotInClipboard)
}

func TestIsHTML(t *testing.T) {
	assert.True(t, isHTML("  <div>x</div>"))
	assert.False(t, isHTML("<not html"))
	assert.False(t, isHTML("plain"))
}
