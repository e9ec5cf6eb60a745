package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/vanderheijden86/relmap/pkg/model"
	"github.com/vanderheijden86/relmap/pkg/viewer"
)

// Adaptive colors for light and dark terminals.
var (
	ColorText    = lipgloss.AdaptiveColor{Light: "#1A1A1A", Dark: "#F8F8F2"}
	ColorSubtext = lipgloss.AdaptiveColor{Light: "#555555", Dark: "#BFBFBF"}
	ColorMuted   = lipgloss.AdaptiveColor{Light: "#666666", Dark: "#6272A4"}

	ColorPrimary = lipgloss.AdaptiveColor{Light: "#6B47D9", Dark: "#BD93F9"}
	ColorInfo    = lipgloss.AdaptiveColor{Light: "#006080", Dark: "#8BE9FD"}
	ColorSuccess = lipgloss.AdaptiveColor{Light: "#007700", Dark: "#50FA7B"}
	ColorWarning = lipgloss.AdaptiveColor{Light: "#B06800", Dark: "#FFB86C"}
	ColorDanger  = lipgloss.AdaptiveColor{Light: "#CC0000", Dark: "#FF5555"}

	// Node glyph colors by classification; unclassified nodes fall back to
	// the node-type color.
	classificationTermColors = map[string]lipgloss.AdaptiveColor{
		"Champion":       {Light: "#007700", Dark: "#50FA7B"},
		"Decision Maker": {Light: "#0066CC", Dark: "#6699FF"},
		"Influencer":     {Light: "#6B47D9", Dark: "#BD93F9"},
		"Gatekeeper":     {Light: "#B06800", Dark: "#FFB86C"},
		"Detractor":      {Light: "#CC0000", Dark: "#FF5555"},
		"Neutral":        {Light: "#666666", Dark: "#6272A4"},
	}

	nodeTypeTermColors = map[model.NodeType]lipgloss.AdaptiveColor{
		model.NodePerson:         {Light: "#006080", Dark: "#8BE9FD"},
		model.NodeOrganization:   {Light: "#1A1A1A", Dark: "#F8F8F2"},
		model.NodeDeal:           {Light: "#007700", Dark: "#50FA7B"},
		model.NodeExternalPerson: {Light: "#008080", Dark: "#00CED1"},
		model.NodeDestination:    {Light: "#888888", Dark: "#6272A4"},
	}
)

var (
	statusBarStyle = lipgloss.NewStyle().
			Foreground(ColorSubtext).
			Padding(0, 1)

	panelStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(ColorMuted).
			Padding(0, 1)

	panelTitleStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	selectedStyle = lipgloss.NewStyle().
			Foreground(ColorPrimary).
			Bold(true)

	hoveredStyle = lipgloss.NewStyle().
			Foreground(ColorInfo).
			Bold(true)

	edgeRuneStyle = lipgloss.NewStyle().
			Foreground(ColorMuted)

	riskStyle = lipgloss.NewStyle().
			Foreground(ColorDanger).
			Bold(true)

	clusterLabelStyle = lipgloss.NewStyle().
				Foreground(ColorSubtext).
				Italic(true)

	notifyStyles = map[viewer.Level]lipgloss.Style{
		viewer.LevelInfo:    lipgloss.NewStyle().Foreground(ColorInfo),
		viewer.LevelSuccess: lipgloss.NewStyle().Foreground(ColorSuccess),
		viewer.LevelWarning: lipgloss.NewStyle().Foreground(ColorWarning),
		viewer.LevelError:   lipgloss.NewStyle().Foreground(ColorDanger),
	}
)

// nodeTermColor picks the terminal color for a node, honoring the active
// classification filters the same way the raster renderer does.
func nodeTermColor(n *model.Node, filters map[string]bool) lipgloss.AdaptiveColor {
	if n.Moved || n.Left {
		return ColorMuted
	}
	if len(filters) > 0 && !filters[n.Classification] {
		return ColorMuted
	}
	if c, ok := classificationTermColors[n.Classification]; ok {
		return c
	}
	if c, ok := nodeTypeTermColors[n.Type]; ok {
		return c
	}
	return ColorMuted
}
