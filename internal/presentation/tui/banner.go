package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the Trestle ASCII art banner.
func PrintBanner(w io.Writer, p termenv.Profile) {
	lines := []struct {
		text  string
		color string
	}{
		{"  _____               _   _", "#34d399"},
		{" |_   _| __ ___  ___| |_| | ___", "#2dd4bf"},
		{"   | || '__/ _ \\/ __| __| |/ _ \\", "#22d3ee"},
		{"   | || | |  __/\\__ \\ |_| |  __/", "#38bdf8"},
		{"   |_||_|  \\___||___/\\__|_|\\___|", "#60a5fa"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, p.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
