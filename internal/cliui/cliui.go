// Package cliui renders categorisation results and history graphs for the
// terminal.
package cliui

import (
	"fmt"
	"io"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/starford/histmap/internal/categorize"
	"github.com/starford/histmap/internal/mindmap"
	"github.com/starford/histmap/internal/models"
)

// Color Palette

var (
	colorCyan   = lipgloss.Color("36")
	colorRed    = lipgloss.Color("167")
	colorGray   = lipgloss.Color("245")
	colorDim    = lipgloss.Color("240")
	colorBlue   = lipgloss.Color("75")
	colorWhite  = lipgloss.Color("255")
	colorYellow = lipgloss.Color("220")
)

// categoryColors gives every category a fixed terminal colour.
var categoryColors = map[models.Category]lipgloss.Color{
	models.CategorySocial:   lipgloss.Color("33"),  // blue
	models.CategoryWork:     lipgloss.Color("35"),  // green
	models.CategoryNews:     lipgloss.Color("167"), // red
	models.CategoryDev:      lipgloss.Color("135"), // purple
	models.CategoryShopping: lipgloss.Color("214"), // orange
	models.CategoryOther:    lipgloss.Color("245"), // gray
}

var (
	// StyleTitle for main headings.
	StyleTitle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)

	// StyleDim for secondary text.
	StyleDim = lipgloss.NewStyle().Foreground(colorDim)

	styleLink    = lipgloss.NewStyle().Foreground(colorBlue).Underline(true)
	styleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	styleError   = lipgloss.NewStyle().Foreground(colorRed)
	styleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	styleSubtle  = lipgloss.NewStyle().Foreground(colorGray)
	styleSameHit = lipgloss.NewStyle().Foreground(colorYellow)
)

const (
	iconError = "✗"
	iconArrow = "→"
	iconEdge  = "—"
)

// CategoryLabel returns the category name in its palette colour, padded to a
// fixed width so columns line up.
func CategoryLabel(c models.Category) string {
	color, ok := categoryColors[c]
	if !ok {
		color = colorGray
	}
	return lipgloss.NewStyle().Foreground(color).Bold(true).Width(8).Render(string(c))
}

// RenderCategorized writes one line per URL with its category, or the error
// for URLs that could not be parsed.
func RenderCategorized(w io.Writer, rawURL string, c models.Category, err error) {
	if err != nil {
		fmt.Fprintf(w, "%s %s %s\n", styleError.Render(iconError), styleLink.Render(rawURL), styleError.Render(err.Error()))
		return
	}
	fmt.Fprintf(w, "%s %s %s\n", CategoryLabel(c), styleSubtle.Render(iconArrow), styleLink.Render(rawURL))
}

// RenderGraph writes a textual view of g: one row per node with its angle and
// category, followed by the edge list.
func RenderGraph(w io.Writer, g *mindmap.Graph) {
	fmt.Fprintln(w, StyleTitle.Render(fmt.Sprintf("History graph: %d visits, %d relations", len(g.Nodes), len(g.Edges))))
	if len(g.Nodes) == 0 {
		fmt.Fprintln(w, StyleDim.Render("  no visits in the current window"))
		return
	}

	for _, n := range g.Nodes {
		host, _ := categorize.Hostname(n.URL)
		fmt.Fprintf(w, "  %s %s %s %s %s\n",
			styleNumber.Render(fmt.Sprintf("%3d", n.Index)),
			StyleDim.Render(fmt.Sprintf("%6.1f°", n.Angle*180/math.Pi)),
			CategoryLabel(n.Category),
			styleValue.Render(truncate(n.Title, 48)),
			StyleDim.Render(host),
		)
	}

	if len(g.Edges) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, StyleTitle.Render("Relations"))
	for _, e := range g.Edges {
		reason := styleSubtle.Render("same category")
		if e.SameHost {
			reason = styleSameHit.Render("same host")
		}
		fmt.Fprintf(w, "  %s %s %s  %s\n",
			styleNumber.Render(fmt.Sprintf("%3d", e.SourceIndex)),
			StyleDim.Render(iconEdge),
			styleNumber.Render(fmt.Sprintf("%-3d", e.TargetIndex)),
			reason,
		)
	}
}

// RenderTaxonomy writes the ordered categorisation rules.
func RenderTaxonomy(w io.Writer) {
	fmt.Fprintln(w, StyleTitle.Render("Categories (first match wins)"))
	for _, r := range categorize.Rules() {
		fmt.Fprintf(w, "  %s %s\n", CategoryLabel(r.Category), StyleDim.Render(strings.Join(r.Patterns, ", ")))
	}
	fmt.Fprintf(w, "  %s %s\n", CategoryLabel(models.CategoryOther), StyleDim.Render("anything else"))
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
