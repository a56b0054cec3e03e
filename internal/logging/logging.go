// Package logging sets up the structured logger every pipeline stage and
// cmd/py2rsc subcommand shares, grounded on the teacher pack's own
// package-level logrus usage (Consensys-go-corset's cmd/*.go: a
// `--verbose` flag toggling log.SetLevel(log.DebugLevel), plain
// log.Debug/Info/Warn/Error calls with no per-call field boilerplate
// elsewhere).
package logging

import (
	"context"

	"github.com/sirupsen/logrus"
)

type ctxKey struct{}

// Configure sets the process-wide logrus level and formatter. Called once
// from cmd/py2rsc's root command PersistentPreRun.
func Configure(verbose bool) {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	if verbose {
		logrus.SetLevel(logrus.DebugLevel)
	} else {
		logrus.SetLevel(logrus.InfoLevel)
	}
}

// WithContext attaches a logger (already carrying any request-scoped
// fields, e.g. the module name being transpiled) to ctx, for stages that
// take a context.Context and want to log without threading a logger
// parameter through every call.
func WithContext(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, ctxKey{}, entry)
}

// FromContext returns the logger attached to ctx, or the package-level
// standard logger if none was attached.
func FromContext(ctx context.Context) *logrus.Entry {
	if e, ok := ctx.Value(ctxKey{}).(*logrus.Entry); ok {
		return e
	}

	return logrus.NewEntry(logrus.StandardLogger())
}

// ForModule returns a logger scoped to one module's transpilation, used by
// TranspileAll's per-goroutine fan-out so concurrent module logs stay
// distinguishable.
func ForModule(name string) *logrus.Entry {
	return logrus.WithField("module", name)
}
