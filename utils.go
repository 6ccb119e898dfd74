package main

import (
	"errors"
	"fmt"
	"os/exec"
	"runtime"
	"strings"
	"time"

	"github.com/atotto/clipboard"
)

var errNoSnapshotInClipboard = errors.New("clipboard holds no scene")

func readClipboardText() (string, error) {
	if runtime.GOOS == "darwin" {
		if output, err := exec.Command("pbpaste", "-Prefer", "txt").Output(); err == nil {
			return string(output), nil
		}
	}
	return clipboard.ReadAll()
}

func writeClipboardText(text string) error {
	return clipboard.WriteAll(text)
}

func isRTF(text string) bool {
	return strings.HasPrefix(text, "{\\rtf") || strings.Contains(text, "\\rtf1")
}

func isHTML(text string) bool {
	trimmed := strings.TrimSpace(text)
	return strings.HasPrefix(trimmed, "<") &&
		(strings.Contains(text, "<html") || strings.Contains(text, "<body") || strings.Contains(text, "<div") || strings.Contains(text, "<pre"))
}

// stripRTF drops groups and control words, keeping escaped braces and
// backslashes, which JSON payloads are full of.
func stripRTF(text string) string {
	var result strings.Builder
	result.Grow(len(text))
	runes := []rune(text)
	for i := 0; i < len(runes); i++ {
		r := runes[i]
		switch r {
		case '{', '}':
			continue
		case '\\':
			if i+1 >= len(runes) {
				continue
			}
			next := runes[i+1]
			if next == '\\' || next == '{' || next == '}' {
				result.WriteRune(next)
				i++
				continue
			}
			j := i + 1
			for j < len(runes) && ((runes[j] >= 'a' && runes[j] <= 'z') || (runes[j] >= 'A' && runes[j] <= 'Z')) {
				j++
			}
			word := string(runes[i+1 : j])
			for j < len(runes) && (runes[j] == '-' || (runes[j] >= '0' && runes[j] <= '9')) {
				j++
			}
			if j < len(runes) && runes[j] == ' ' {
				j++
			}
			if word == "par" || word == "line" {
				result.WriteRune('\n')
			}
			i = j - 1
		default:
			result.WriteRune(r)
		}
	}
	return result.String()
}

var htmlEntities = strings.NewReplacer(
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", "\"",
	"&#39;", "'",
	"&nbsp;", " ",
	"&amp;", "&",
)

func extractTextFromHTML(html string) string {
	var result strings.Builder
	result.Grow(len(html))
	inTag := false
	for _, r := range html {
		switch {
		case r == '<':
			inTag = true
		case r == '>':
			inTag = false
		case !inTag:
			result.WriteRune(r)
		}
	}
	return htmlEntities.Replace(result.String())
}

// cleanClipboardText reduces rich clipboard content to plain text with
// normalized line endings and no control characters.
func cleanClipboardText(text string) string {
	if text == "" {
		return text
	}
	if isRTF(text) {
		text = stripRTF(text)
	} else if isHTML(text) {
		text = extractTextFromHTML(text)
	}
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	var result strings.Builder
	result.Grow(len(text))
	for _, r := range text {
		if r == '\n' || r == '\t' || r >= 32 {
			result.WriteRune(r)
		}
	}
	return result.String()
}

// snapshotFromClipboardText finds the scene document inside pasted text.
// Surrounding prose or markup is ignored.
func snapshotFromClipboardText(text string) (string, error) {
	text = cleanClipboardText(text)
	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return "", errNoSnapshotInClipboard
	}
	return text[start : end+1], nil
}

func exportFileName(ext string, now time.Time) string {
	return fmt.Sprintf("sketchflow-%s.%s", now.Format("2006-01-02"), ext)
}
