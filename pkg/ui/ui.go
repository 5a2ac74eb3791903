// Package ui renders command results as rich terminal output, plain text,
// JSON or YAML.
package ui

import (
	"io"

	"github.com/canastawiki/canasta-modules/pkg/errors"
)

// Renderer writes results, errors and messages in one output format
type Renderer interface {
	RenderResult(result interface{}) error
	RenderError(err error) error
	RenderMessage(msg string) error
}

// NewRenderer creates a renderer for format. FormatAuto inspects output.
func NewRenderer(format Format, output io.Writer) (Renderer, error) {
	switch format {
	case FormatAuto:
		return NewRenderer(DetectFormat(output), output)
	case FormatTerminal:
		return &terminalRenderer{out: output}, nil
	case FormatText:
		return &textRenderer{out: output}, nil
	case FormatJSON:
		return newJSONRenderer(output), nil
	case FormatYAML:
		return &yamlRenderer{out: output}, nil
	default:
		return nil, errors.Newf(errors.ErrInvalidInput, "unknown format: %v", format)
	}
}
