package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the ASCII art banner to w.
func PrintBanner(w io.Writer) {
	p := termenv.ColorProfile()
	// Teal to amber, left to right along the funnel.
	lines := []struct {
		text  string
		color string
	}{
		{"       _                                ", "#2dd4bf"},
		{"      | | ___  _   _ _ __ _ __   ___ _   _ ", "#34d399"},
		{"   _  | |/ _ \\| | | | '__| '_ \\ / _ \\ | | |", "#a3e635"},
		{"  | |_| | (_) | |_| | |  | | | |  __/ |_| |", "#facc15"},
		{"   \\___/ \\___/ \\__,_|_|  |_| |_|\\___|\\__, |", "#fbbf24"},
		{"                                     |___/ ", "#f59e0b"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w)
}
