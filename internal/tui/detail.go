package tui

import (
	"fmt"
	"strings"

	"cachemaker/internal/model"

	"github.com/charmbracelet/lipgloss"
)

// geocacheMarkdown describes g for the detail pane.
func geocacheMarkdown(g model.Geocache) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", displayName(g))
	if s := strings.TrimSpace(g.Summary); s != "" {
		b.WriteString(s)
		b.WriteString("\n\n")
	}
	if g.HasLocation() {
		fmt.Fprintf(&b, "| Latitude | Longitude |\n|---|---|\n| %.6f | %.6f |\n\n", g.Latitude, g.Longitude)
	} else {
		b.WriteString("_No location yet._\n\n")
	}
	if g.HasImage() {
		fmt.Fprintf(&b, "Image attached (%d bytes).\n", len(g.Image))
	}
	return b.String()
}

func renderDetail(g *model.Geocache, width, height int) string {
	box := lipgloss.NewStyle().Width(width).Height(height).Padding(0, 1)
	if g == nil {
		return box.Render(styleMuted().Render("Nothing selected."))
	}
	return box.Render(renderMarkdown(geocacheMarkdown(*g), width-2))
}
