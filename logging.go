// logging.go - structured logging for the reactor package.
//
// Logging uses github.com/joeycumines/logiface with the stumpy JSON backend
// directly, rather than a hand-rolled interface: both are real dependencies
// already carried by the teacher module, and the point of this package is to
// exercise the ecosystem's own logging stack, not reinvent one.

package reactor

import (
	"os"
	"sync"

	"github.com/joeycumines/logiface"
	"github.com/joeycumines/stumpy"
)

// Logger is the structured logger type accepted by WithLogger. It is a type
// alias for logiface.Logger[*stumpy.Event], so callers may configure it with
// any logiface/stumpy option exactly as they would outside this package.
type Logger = logiface.Logger[*stumpy.Event]

var (
	defaultLoggerOnce sync.Once
	defaultLoggerVal  *Logger
)

// defaultLogger returns the package default: stderr, JSON, level Info. It is
// used by any Reactor/Socket/Acceptor constructed without WithLogger.
func defaultLogger() *Logger {
	defaultLoggerOnce.Do(func() {
		defaultLoggerVal = stumpy.L.New(
			stumpy.L.WithStumpy(stumpy.WithWriter(os.Stderr)),
			stumpy.L.WithLevel(stumpy.L.LevelInformational()),
		).Logger()
	})
	return defaultLoggerVal
}

// logErr logs a non-nil error at Err level with the given message and a
// single "component" field. Call sites are limited to the terminal-failure
// and resource-release paths named in the component docs; per-event dispatch
// is never logged.
func logErr(l *Logger, component, msg string, err error) {
	if l == nil || err == nil {
		return
	}
	l.Err().Str("component", component).Err(err).Log(msg)
}
