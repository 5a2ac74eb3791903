package ui

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/canastawiki/canasta-modules/pkg/installer"
)

// textRenderer writes unstyled, tab-aligned output for build logs
type textRenderer struct {
	out io.Writer
}

func (r *textRenderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case *installer.Report:
		return r.renderReport(v)
	case *Resolution:
		return r.renderResolution(v)
	case *Fingerprint:
		_, err := fmt.Fprintln(r.out, v.Digest)
		return err
	default:
		_, err := fmt.Fprintf(r.out, "%+v\n", result)
		return err
	}
}

func (r *textRenderer) renderResolution(res *Resolution) error {
	w := tabwriter.NewWriter(r.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, strings.Join(moduleHeader, "\t"))
	for _, m := range res.Modules {
		fmt.Fprintln(w, strings.Join(moduleRow(m), "\t"))
	}
	for _, name := range res.Removed {
		fmt.Fprintf(w, "%s\tremoved\n", name)
	}
	return w.Flush()
}

func (r *textRenderer) renderReport(rep *installer.Report) error {
	for _, m := range rep.Modules {
		line := fmt.Sprintf("%s %s", m.Module(), m.Mode)
		if m.Revision != "" {
			line += " " + m.Revision
		}
		if m.Package != "" {
			line += " " + m.Package
		}
		if _, err := fmt.Fprintln(r.out, line); err != nil {
			return err
		}
		for _, w := range m.Warnings {
			if _, err := fmt.Fprintf(r.out, "WARNING: %s: %s\n", m.Module(), w); err != nil {
				return err
			}
		}
	}
	for _, w := range rep.Warnings {
		if _, err := fmt.Fprintf(r.out, "WARNING: %s\n", w); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(r.out, "fingerprint %s\n", rep.Fingerprint)
	return err
}

func (r *textRenderer) RenderError(err error) error {
	_, werr := fmt.Fprintf(r.out, "Error: %v\n", err)
	return werr
}

func (r *textRenderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.out, msg)
	return err
}
