package render

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

// styles holds the text styles, bound to a renderer for the output writer so
// color is only emitted on terminals.
type styles struct {
	title   lipgloss.Style
	label   lipgloss.Style
	dim     lipgloss.Style
	warning lipgloss.Style
	failure lipgloss.Style
	success lipgloss.Style
	path    lipgloss.Style
}

func newStyles(w io.Writer) styles {
	r := lipgloss.NewRenderer(w)
	return styles{
		title:   r.NewStyle().Bold(true),
		label:   r.NewStyle().Foreground(lipgloss.Color("247")),
		dim:     r.NewStyle().Foreground(lipgloss.Color("241")),
		warning: r.NewStyle().Foreground(lipgloss.Color("214")),
		failure: r.NewStyle().Foreground(lipgloss.Color("196")),
		success: r.NewStyle().Foreground(lipgloss.Color("82")),
		path:    r.NewStyle().Foreground(lipgloss.Color("81")),
	}
}
