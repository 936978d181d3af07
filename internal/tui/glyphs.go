package tui

import (
	"strings"
	"sync"
)

// Some terminals and fonts render box and arrow glyphs poorly, so the TUI can
// fall back to an ASCII set.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

func setGlyphPreference(name string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "ascii":
		setGlyphs(glyphSetASCII)
	case "", "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	default:
		// Unknown value: ignore.
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	gs := currentGlyphs
	glyphsMu.RUnlock()
	return gs
}

// glyphCarried marks the row that is currently picked up.
func glyphCarried() string {
	if glyphs() == glyphSetASCII {
		return "*"
	}
	return "◆"
}

func glyphArrow() string {
	if glyphs() == glyphSetASCII {
		return "->"
	}
	return "→"
}

func glyphSeparator() string {
	if glyphs() == glyphSetASCII {
		return "|"
	}
	return "·"
}
