package ui

import (
	"github.com/charmbracelet/lipgloss"
)

var styles = NewPalette("#04B575", "#FF0000", "#626262")

// Palette is a simple stylesheet built with named [lipgloss.Style] fields
type Palette struct {
	ok      lipgloss.Style
	err     lipgloss.Style
	watched lipgloss.Style
}

func NewPalette(s, e, muted string) *Palette {
	return &Palette{
		ok:      NewBold(s),
		err:     NewBold(e),
		watched: NewEm(muted),
	}
}

func NewStyle(fg string) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(fg))
}

func NewBold(fg string) lipgloss.Style {
	return NewStyle(fg).Bold(true)
}

func NewEm(fg string) lipgloss.Style {
	return NewStyle(fg).Italic(true)
}
