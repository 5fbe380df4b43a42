// Package report prints short user-facing notifications in the style of an
// editor's status bar: one line per message, tagged with its level.
package report

import (
	"fmt"
	"io"
	"sync"

	"github.com/muesli/termenv"

	"github.com/Faultbox/ccexport/internal/logger"
)

// Level is the severity of a notification.
type Level int

const (
	Info Level = iota
	Warning
	Error
)

// String returns the tag printed before a message.
func (l Level) String() string {
	switch l {
	case Info:
		return "INFO"
	case Warning:
		return "WARNING"
	case Error:
		return "ERROR"
	default:
		return fmt.Sprintf("Level(%d)", int(l))
	}
}

// Reporter writes notifications to an output. Colours are used only when the
// output is a terminal that supports them.
type Reporter struct {
	mu  sync.Mutex
	out *termenv.Output
}

// New returns a Reporter writing to w.
func New(w io.Writer) *Reporter {
	return &Reporter{out: termenv.NewOutput(w)}
}

// Report prints one notification and mirrors it into the log.
func (r *Reporter) Report(level Level, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)

	switch level {
	case Warning:
		logger.Warn(msg)
	case Error:
		logger.Error(msg)
	default:
		logger.Info(msg)
	}

	tag := r.out.String("[" + level.String() + "]").Bold()
	switch level {
	case Warning:
		tag = tag.Foreground(r.out.Color("3"))
	case Error:
		tag = tag.Foreground(r.out.Color("1"))
	default:
		tag = tag.Foreground(r.out.Color("4"))
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintf(r.out, "%s %s\n", tag, msg)
}

// Infof reports at Info level.
func (r *Reporter) Infof(format string, args ...any) { r.Report(Info, format, args...) }

// Warnf reports at Warning level.
func (r *Reporter) Warnf(format string, args ...any) { r.Report(Warning, format, args...) }

// Errorf reports at Error level.
func (r *Reporter) Errorf(format string, args ...any) { r.Report(Error, format, args...) }
