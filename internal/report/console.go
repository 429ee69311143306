package report

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"stackctl/internal/health"
)

// Console writes operator output to a terminal.
type Console struct {
	out        io.Writer
	useSpinner bool
}

// NewConsole constructs a console sink. Spinners are suppressed when the
// output is not an interactive terminal.
func NewConsole(out io.Writer, useSpinner bool) *Console {
	return &Console{
		out:        out,
		useSpinner: useSpinner,
	}
}

// IsTerminal reports whether f is attached to an interactive terminal.
func IsTerminal(f *os.File) bool {
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

func (c *Console) Infof(format string, args ...any) {
	fmt.Fprintf(c.out, format+"\n", args...)
}

func (c *Console) Successf(format string, args ...any) {
	fmt.Fprintln(c.out, text.FgGreen.Sprintf(format, args...))
}

func (c *Console) Warnf(format string, args ...any) {
	fmt.Fprintln(c.out, text.FgYellow.Sprintf(format, args...))
}

func (c *Console) Errorf(format string, args ...any) {
	fmt.Fprintln(c.out, text.FgRed.Sprintf(format, args...))
}

// HealthReport renders each check's status and detail plus the composite
// verdict.
func (c *Console) HealthReport(report health.Report) {
	tw := table.NewWriter()
	tw.SetOutputMirror(c.out)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Check", "Status", "Detail"})
	for _, check := range report.Checks {
		tw.AppendRow(table.Row{check.Name, colorStatus(check.Status), check.Detail})
	}
	tw.Render()

	if report.Healthy {
		c.Successf("overall: healthy")
	} else {
		c.Errorf("overall: unhealthy")
	}
}

// Endpoints renders the post-start summary table.
func (c *Console) Endpoints(endpoints []Endpoint) {
	tw := table.NewWriter()
	tw.SetOutputMirror(c.out)
	tw.SetStyle(table.StyleLight)
	tw.AppendHeader(table.Row{"Service", "Endpoint", "Credentials"})
	for _, endpoint := range endpoints {
		tw.AppendRow(table.Row{endpoint.Name, endpoint.URL, endpoint.Credentials})
	}
	tw.Render()
}

func (c *Console) Logs(logs string) {
	fmt.Fprint(c.out, logs)
}

// Busy shows a spinner with the given message until the returned func runs.
// Without a terminal it degrades to a single informational line.
func (c *Console) Busy(message string) func() {
	if !c.useSpinner {
		c.Infof("%s...", message)
		return func() {}
	}

	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(c.out))
	s.Suffix = " " + message
	s.Start()
	return s.Stop
}

func colorStatus(status health.Status) string {
	switch status {
	case health.StatusOK:
		return text.FgGreen.Sprint(status)
	case health.StatusDegraded:
		return text.FgYellow.Sprint(status)
	default:
		return text.FgRed.Sprint(status)
	}
}
