package formatter

import "github.com/charmbracelet/lipgloss"

var palette = newPalette("#7D56F4", "#04B575", "#626262", "#FFA500", "#FF5F87", "#FFD700")

// stylesheet is a simple set built with named [lipgloss.Style] fields
type stylesheet struct {
	title     lipgloss.Style
	matched   lipgloss.Style
	persisted lipgloss.Style
	spotify   lipgloss.Style
	netease   lipgloss.Style
	elsewhere lipgloss.Style
}

func newPalette(title, matched, persisted, spotify, netease, elsewhere string) *stylesheet {
	return &stylesheet{
		title:     newBold(title),
		matched:   newBold(matched),
		persisted: newStyle(persisted),
		spotify:   newEm(spotify),
		netease:   newEm(netease),
		elsewhere: newBold(elsewhere),
	}
}

func newStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func newBold(fg string) lipgloss.Style {
	return newStyle(fg).Bold(true)
}

func newEm(fg string) lipgloss.Style {
	return newStyle(fg).Italic(true)
}

// painter renders through the palette, or returns text unchanged when disabled.
type painter struct {
	enabled bool
}

func newPainter(enabled bool) painter {
	return painter{enabled: enabled}
}

func (p painter) title(s string) string {
	if !p.enabled {
		return s
	}
	return palette.title.Render(s)
}

func (p painter) status(s, label string) string {
	if !p.enabled {
		return s
	}
	switch label {
	case StatusPersisted:
		return palette.persisted.Render(s)
	case StatusMatched:
		return palette.matched.Render(s)
	case StatusPairedElsewhere:
		return palette.elsewhere.Render(s)
	case StatusSpotifyOnly:
		return palette.spotify.Render(s)
	default:
		return palette.netease.Render(s)
	}
}
