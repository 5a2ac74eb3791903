package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/pterm/pterm"

	"github.com/canastawiki/canasta-modules/pkg/errors"
	"github.com/canastawiki/canasta-modules/pkg/installer"
)

type terminalRenderer struct {
	out io.Writer
}

func (r *terminalRenderer) RenderResult(result interface{}) error {
	switch v := result.(type) {
	case *installer.Report:
		return r.renderReport(v)
	case *Resolution:
		return r.renderResolution(v)
	case *Fingerprint:
		_, err := fmt.Fprintf(r.out, "%s %s\n%s\n",
			titleStyle.Render("Fingerprint"), v.Digest, mutedStyle.Render(v.Path))
		return err
	default:
		_, err := fmt.Fprintf(r.out, "%+v\n", result)
		return err
	}
}

func (r *terminalRenderer) renderResolution(res *Resolution) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Resolved modules") + " " + mutedStyle.Render(res.Locator) + "\n\n")

	data := pterm.TableData{moduleHeader}
	for _, m := range res.Modules {
		data = append(data, moduleRow(m))
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	b.WriteString(table + "\n")

	if len(res.Removed) > 0 {
		b.WriteString("\n" + mutedStyle.Render("Removed: "+strings.Join(res.Removed, ", ")) + "\n")
	}
	_, err = io.WriteString(r.out, b.String())
	return err
}

func (r *terminalRenderer) renderReport(rep *installer.Report) error {
	var b strings.Builder
	b.WriteString(titleStyle.Render("Installed modules") + "\n\n")

	data := pterm.TableData{{"Module", "Mode", "Revision", "Patches", "Steps", "Provenance", "Relocated"}}
	for _, m := range rep.Modules {
		steps := make([]string, len(m.Steps))
		for i, s := range m.Steps {
			steps[i] = string(s)
		}
		revision := m.Revision
		if m.Package != "" {
			revision = m.Package
		}
		provenance := "-"
		if m.Provenance {
			provenance = "yes"
		}
		data = append(data, []string{
			m.Module(),
			string(m.Mode),
			dash(revision),
			dash(strings.Join(m.Patches, ", ")),
			dash(strings.Join(steps, ", ")),
			provenance,
			dash(strings.Join(m.Relocated, ", ")),
		})
	}
	table, err := pterm.DefaultTable.WithHasHeader().WithData(data).Srender()
	if err != nil {
		return err
	}
	b.WriteString(table + "\n\n")

	for _, m := range rep.Modules {
		for _, w := range m.Warnings {
			b.WriteString(warningStyle.Render("warning") + " " + m.Module() + ": " + w + "\n")
		}
	}
	for _, w := range rep.Warnings {
		b.WriteString(warningStyle.Render("warning") + " " + w + "\n")
	}

	b.WriteString(fmt.Sprintf("%s %d modules, %d links, %d composer includes\n",
		successStyle.Render("Done"), len(rep.Modules), rep.Links, len(rep.Includes)))
	b.WriteString(mutedStyle.Render("fingerprint "+rep.Fingerprint) + "\n")

	_, err = io.WriteString(r.out, b.String())
	return err
}

func (r *terminalRenderer) RenderError(err error) error {
	msg := errorStyle.Render("Error") + " " + err.Error() + "\n"
	if code := errors.GetErrorCode(err); code != errors.ErrUnknown {
		msg += mutedStyle.Render("code "+string(code)) + "\n"
	}
	_, werr := io.WriteString(r.out, msg)
	return werr
}

func (r *terminalRenderer) RenderMessage(msg string) error {
	_, err := fmt.Fprintln(r.out, msg)
	return err
}
