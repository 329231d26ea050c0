package tui

import (
	"fmt"

	"github.com/muesli/termenv"

	"github.com/aretw0/mosaic/pkg/domain"
)

var phaseColors = map[domain.Phase]string{
	domain.PhaseIdle:       "#9ca3af",
	domain.PhasePending:    "#eab308",
	domain.PhaseConfirming: "#3b82f6",
}

// Phase renders the connection phase as a colored label.
func Phase(p domain.Phase) string {
	profile := termenv.ColorProfile()
	return termenv.String(string(p)).Foreground(profile.Color(phaseColors[p])).Bold().String()
}

// Badge renders the template glyph of a node in its template color.
func Badge(t domain.Template) string {
	d := t.Decoration()
	return termenv.String(d.Glyph).Foreground(termenv.ColorProfile().Color(d.Color)).String()
}

// EdgeLine renders an edge, dimming pending ones.
func EdgeLine(e domain.Edge) string {
	line := fmt.Sprintf("%s → %s", e.Source, e.Target)
	if e.Pending() {
		return termenv.String(line + " (pending)").Faint().String()
	}
	return line
}
