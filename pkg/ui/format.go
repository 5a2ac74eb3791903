package ui

import (
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/muesli/termenv"

	"github.com/canastawiki/canasta-modules/pkg/errors"
)

// Format is how command results are written
type Format int

const (
	// FormatAuto picks FormatTerminal or FormatText from the output
	FormatAuto Format = iota
	// FormatTerminal renders tables and colors
	FormatTerminal
	// FormatText renders plain lines suitable for build logs
	FormatText
	// FormatJSON renders machine-readable JSON output
	FormatJSON
	// FormatYAML renders machine-readable YAML output
	FormatYAML
)

// formatNames lists accepted names per format; the first is canonical
var formatNames = map[Format][]string{
	FormatAuto:     {"auto", ""},
	FormatTerminal: {"term", "terminal"},
	FormatText:     {"text", "plain"},
	FormatJSON:     {"json"},
	FormatYAML:     {"yaml", "yml"},
}

// String returns the canonical name of the format
func (f Format) String() string {
	if names, ok := formatNames[f]; ok {
		return names[0]
	}
	return "unknown"
}

// ParseFormat parses a --format value, case-insensitively
func ParseFormat(s string) (Format, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	for f, names := range formatNames {
		for _, name := range names {
			if name == s {
				return f, nil
			}
		}
	}
	return FormatAuto, errors.Newf(errors.ErrInvalidInput, "unknown format: %s", s).
		WithDetail("format", s)
}

// DetectFormat picks rich output only for a color terminal. Anything that is
// not a file descriptor, NO_COLOR, CI and redirected output get plain text.
func DetectFormat(out io.Writer) Format {
	if os.Getenv("NO_COLOR") != "" || os.Getenv("CI") != "" {
		return FormatText
	}

	f, ok := out.(interface{ Fd() uintptr })
	if !ok {
		return FormatText
	}
	if !isatty.IsTerminal(f.Fd()) && !isatty.IsCygwinTerminal(f.Fd()) {
		return FormatText
	}

	if termenv.ColorProfile() == termenv.Ascii {
		return FormatText
	}
	return FormatTerminal
}
