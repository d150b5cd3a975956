// Package theme provides the Lip Gloss color palette and reusable styles
// for the JobHub TUI. It is a leaf package with no internal imports
// to avoid import cycles.
package theme

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Brand colors.
var (
	ColorPrimary   = lipgloss.Color("#6366f1")
	ColorSecondary = lipgloss.Color("#06b6d4")
	ColorAccent    = lipgloss.Color("#f59e0b")
)

// Category colors.
var (
	ColorWebDev     = lipgloss.Color("#3b82f6")
	ColorMarketing  = lipgloss.Color("#ec4899")
	ColorGraphics   = lipgloss.Color("#a855f7")
	ColorWriting    = lipgloss.Color("#22c55e")
	ColorAssistant  = lipgloss.Color("#f97316")
	ColorCategoryNA = lipgloss.Color("#9ca3af")
)

// UI chrome colors.
var (
	ColorBorder  = lipgloss.Color("#4b5563")
	ColorDimmed  = lipgloss.Color("#6b7280")
	ColorBright  = lipgloss.Color("#f9fafb")
	ColorBg      = lipgloss.Color("#111827")
	ColorSuccess = lipgloss.Color("#22c55e")
	ColorWarning = lipgloss.Color("#d97706")
	ColorDanger  = lipgloss.Color("#dc2626")
	ColorInfo    = lipgloss.Color("#2563eb")
)

// CategoryColor returns the color for a job category.
func CategoryColor(category string) lipgloss.Color {
	switch category {
	case "Web Development":
		return ColorWebDev
	case "Digital Marketing":
		return ColorMarketing
	case "Graphics Design":
		return ColorGraphics
	case "Content Writing":
		return ColorWriting
	case "Virtual Assistant":
		return ColorAssistant
	default:
		return ColorCategoryNA
	}
}

// CategoryBadge renders a category as a colored tag.
func CategoryBadge(category string) string {
	return lipgloss.NewStyle().Foreground(CategoryColor(category)).Render("[" + category + "]")
}

// PriceRange formats a min/max budget.
func PriceRange(min, max float64) string {
	return fmt.Sprintf("$%s - $%s", trimFloat(min), trimFloat(max))
}

func trimFloat(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimSuffix(s, ".")
}

// Truncate shortens s to max runes, marking the cut with "...".
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 3 || len(r) <= max {
		return s
	}
	return string(r[:max-3]) + "..."
}

// Reusable styles.
var (
	StyleBorder = lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(ColorBorder)

	StyleHeader = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleTitle = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorPrimary)

	StyleDimmed = lipgloss.NewStyle().
			Foreground(ColorDimmed)

	StyleSelected = lipgloss.NewStyle().
			Bold(true).
			Foreground(ColorBright)

	StyleError = lipgloss.NewStyle().
			Foreground(ColorDanger)

	StyleSuccess = lipgloss.NewStyle().
			Foreground(ColorSuccess)

	StyleButton = lipgloss.NewStyle().
			Padding(0, 2).
			Foreground(ColorBright).
			Background(ColorPrimary)

	StyleButtonInactive = lipgloss.NewStyle().
				Padding(0, 2).
				Foreground(ColorDimmed).
				Background(lipgloss.Color("#1f2937"))
)

// Button renders a label as a focused or unfocused button.
func Button(label string, focused bool) string {
	if focused {
		return StyleButton.Render(label)
	}
	return StyleButtonInactive.Render(label)
}
