// Package output renders smm-asset results for the terminal.
package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/canterburyairpatrol/smm-asset/packages/asset"
	"github.com/canterburyairpatrol/smm-asset/packages/session"
	"github.com/canterburyairpatrol/smm-asset/packages/stats"
)

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatState(host string, state session.State) {
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold(host), stateColor(state)(state.String()))
}

func stateColor(state session.State) func(a ...interface{}) string {
	switch state {
	case session.StateConnected:
		return color.New(color.FgGreen).SprintFunc()
	case session.StateUnknown:
		return color.New(color.FgYellow).SprintFunc()
	default:
		return color.New(color.FgRed).SprintFunc()
	}
}

func (f *ConsoleFormatter) FormatAssets(assets []*asset.Asset) {
	cyan := color.New(color.FgCyan).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	if len(assets) == 0 {
		fmt.Fprintf(f.writer, "%s\n", gray("no assets"))
		return
	}
	for _, a := range assets {
		fmt.Fprintf(f.writer, "  %s %s", cyan(fmt.Sprintf("%4d", a.ID)), a.Name)
		if a.Type != "" {
			fmt.Fprintf(f.writer, " %s", gray("("+a.Type+")"))
		}
		fmt.Fprintf(f.writer, "\n")
	}
}

func (f *ConsoleFormatter) FormatCommand(a *asset.Asset, cmd asset.Command) {
	yellow := color.New(color.FgYellow).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "%s %s", bold(a.Name), yellow(cmd.String()))
	if lat, lon, ok := a.LastGotoPosition(); ok {
		fmt.Fprintf(f.writer, " %.6f,%.6f", lat, lon)
	}
	fmt.Fprintf(f.writer, "\n")
}

func (f *ConsoleFormatter) FormatSearch(s *asset.Search, waypoints []asset.Waypoint) {
	bold := color.New(color.Bold).SprintFunc()
	gray := color.New(color.FgHiBlack).SprintFunc()

	fmt.Fprintf(f.writer, "%s %s\n", bold("Search"), s.URL)
	fmt.Fprintf(f.writer, "  distance:    %dm\n", s.Distance)
	fmt.Fprintf(f.writer, "  length:      %dm\n", s.Length)
	fmt.Fprintf(f.writer, "  sweep width: %dm\n", s.SweepWidth)
	if len(waypoints) == 0 {
		return
	}
	fmt.Fprintf(f.writer, "  waypoints:   %d\n", len(waypoints))
	if !f.verbose {
		return
	}
	for i, wp := range waypoints {
		fmt.Fprintf(f.writer, "    %s %.6f,%.6f\n", gray(fmt.Sprintf("%3d", i+1)), wp.Latitude, wp.Longitude)
	}
}

func (f *ConsoleFormatter) FormatSummary(s stats.Summary) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	fmt.Fprintf(f.writer, "\n%s\n", bold("Reports"))
	fmt.Fprintf(f.writer, "  sent:    %s", green(s.Total-s.Errors))
	if s.Errors > 0 {
		fmt.Fprintf(f.writer, ", %s", red(fmt.Sprintf("%d failed", s.Errors)))
	}
	fmt.Fprintf(f.writer, "\n")
	if s.Retried > 0 {
		fmt.Fprintf(f.writer, "  retried: %d\n", s.Retried)
	}
	fmt.Fprintf(f.writer, "  latency: p50=%s p95=%s p99=%s max=%s\n", s.P50, s.P95, s.P99, s.Max)
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}
