package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger creates a logger writing to w that drops messages below level.
// Timestamps read "HH:MM:SS.ms", e.g. "09:41:07.25".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress logs the elapsed time of an operation when it completes.
// It is meant for one goroutine at a time.
type progress struct {
	logger *log.Logger
	start  time.Time
}

// newProgress starts the clock. Call done once the operation finishes.
func newProgress(l *log.Logger) *progress {
	return &progress{logger: l, start: time.Now()}
}

// done logs msg at info level with the elapsed time rounded to the
// millisecond, e.g. "Converted 3 artboards (12ms)".
func (p *progress) done(msg string) {
	p.logger.Infof("%s (%s)", msg, time.Since(p.start).Round(time.Millisecond))
}
