package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the mosaic banner followed by version.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct{ text, color string }{
		{"                              _      ", "#22c55e"},
		{"  _ __ ___   ___  ___  __ _(_) ___ ", "#14b8a6"},
		{" | '_ ` _ \\ / _ \\/ __|/ _` | |/ __|", "#3b82f6"},
		{" | | | | | | (_) \\__ \\ (_| | | (__ ", "#a855f7"},
		{" |_| |_| |_|\\___/|___/\\__,_|_|\\___|", "#ec4899"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  v"+version).Faint())
	fmt.Fprintln(w)
}
