package reporter

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/subtag/pkg/domain/model"
)

// Table renders a report as aligned plain text, colored when the output is a terminal
type Table struct {
	noColor bool
}

type TableOption func(*Table)

// WithNoColor disables coloring regardless of the terminal
func WithNoColor() TableOption {
	return func(t *Table) {
		t.noColor = true
	}
}

func NewTable(opts ...TableOption) *Table {
	t := &Table{noColor: color.NoColor}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (x *Table) paint(attr color.Attribute, s string) string {
	c := color.New(attr)
	if x.noColor {
		c.DisableColor()
	} else {
		c.EnableColor()
	}
	return c.Sprint(s)
}

func (x *Table) stateColor(state model.PropagationState) color.Attribute {
	switch state {
	case model.StateCreated:
		return color.FgGreen
	case model.StatePlanned:
		return color.FgCyan
	case model.StateFailed:
		return color.FgRed
	default:
		return color.FgYellow
	}
}

func (x *Table) Report(w io.Writer, report *model.RunReport) error {
	var b strings.Builder

	mode := "apply"
	if report.DryRun {
		mode = "dry-run"
	}
	fmt.Fprintf(&b, "Run     %s\n", report.RunID)
	fmt.Fprintf(&b, "Parent  %s\n", report.ParentRepo)
	fmt.Fprintf(&b, "Tags    %s -> %s\n", report.OldTag, report.NewTag)
	fmt.Fprintf(&b, "Mode    %s\n", mode)

	rows := [][]string{{"NAME", "STATE", "TAG", "REPOSITORY ID", "ERROR"}}
	states := []model.PropagationState{""}
	var failures [][2]string

	for _, res := range report.Results {
		rows = append(rows, []string{res.Name, string(res.State), res.Tag, string(res.RepositoryID), res.ErrorKind})
		states = append(states, res.State)
		if res.Error != "" {
			failures = append(failures, [2]string{res.Name, res.Error})
		}
	}
	for _, res := range report.ResolutionFailures {
		rows = append(rows, []string{res.Name, "unresolved", "", "", res.ErrorKind})
		states = append(states, model.StateFailed)
		if res.Error != "" {
			failures = append(failures, [2]string{res.Name, res.Error})
		}
	}

	if len(rows) > 1 {
		b.WriteString("\n")
		writeRows(&b, rows, func(row, col int, cell string) string {
			switch {
			case row == 0:
				return x.paint(color.Bold, cell)
			case col == 1:
				return x.paint(x.stateColor(states[row]), cell)
			}
			return cell
		})
	}

	if len(failures) > 0 {
		b.WriteString("\nFailures:\n")
		for _, f := range failures {
			fmt.Fprintf(&b, "  %s: %s\n", f[0], f[1])
		}
	}

	s := report.Summary()
	b.WriteString("\n")
	summary := fmt.Sprintf("changed=%d created=%d planned=%d failed=%d", s.Changed, s.Created, s.Planned, s.Failed)
	if s.Failed > 0 {
		summary = x.paint(color.FgRed, summary)
	}
	b.WriteString(summary + "\n")

	if _, err := io.WriteString(w, b.String()); err != nil {
		return goerr.Wrap(err, "failed to write table report")
	}
	return nil
}

// writeRows pads cells to the widest value of each column before decorating them
func writeRows(b *strings.Builder, rows [][]string, decorate func(row, col int, cell string) string) {
	widths := make([]int, len(rows[0]))
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], len(cell))
		}
	}

	for r, row := range rows {
		var line strings.Builder
		for c, cell := range row {
			padded := cell
			if c < len(row)-1 {
				padded += strings.Repeat(" ", widths[c]-len(cell)+2)
			}
			line.WriteString(decorate(r, c, padded))
		}
		b.WriteString(strings.TrimRight(line.String(), " ") + "\n")
	}
}
