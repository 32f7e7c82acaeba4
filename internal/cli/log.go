// Package cli implements the flowlens command-line interface.
//
// Commands:
//   - analyze: build control-flow and call graphs of Go packages
//   - convert: translate between DOT and the JSON document form
//   - merge: combine JSON documents into one graph
//   - layout: compute node positions for a graph
//   - render: draw a graph or layout as SVG, PNG, DOT or JSON
//   - deps: print the call-dependency report
//   - serve: run the HTTP API
//   - watch: re-analyse on every source change
//   - pick: choose a function interactively and draw its graph
//   - cache, config, version: housekeeping
//
// Every command accepts --verbose (-v) for debug logging. The logger travels
// through the command context; library packages receive it as an option.
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns a logger with "HH:MM:SS.cc" timestamps.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs how long a step took. Not safe for concurrent use.
type progress struct {
	logger *log.Logger
	start  time.Time
}

func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg with the elapsed time, e.g. "Laid out 42 blocks (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}

type ctxKey int

const loggerKey ctxKey = 0

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default() when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
