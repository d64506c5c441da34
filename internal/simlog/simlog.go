// Package simlog is a small leveled logger for the simulator's internal
// diagnostics, distinct from the spec-mandated per-policy event log (see
// internal/report). It mirrors the chain-call shape of the teacher's
// logiface.Logger (Debug()/Info()/Warn()/Err(), each returning a builder
// that fields are chained onto before Msg()) collapsed onto a single
// concrete backend, zerolog, since this program never swaps logging
// backends at runtime.
package simlog

import (
	"io"

	"github.com/rs/zerolog"
)

// Logger wraps a zerolog.Logger with the policy/run context every log line
// in one simulation carries.
type Logger struct {
	zl zerolog.Logger
}

// New constructs a Logger writing to w at the given level.
func New(w io.Writer, level zerolog.Level) Logger {
	return Logger{zl: zerolog.New(w).Level(level).With().Timestamp().Logger()}
}

// Nop returns a Logger that discards everything, for tests and for callers
// that don't want diagnostic output.
func Nop() Logger {
	return New(io.Discard, zerolog.Disabled)
}

// WithPolicy returns a child logger tagging every subsequent line with the
// placement policy under simulation.
func (l Logger) WithPolicy(policy string) Logger {
	return Logger{zl: l.zl.With().Str("policy", policy).Logger()}
}

// Debug starts a debug-level chain.
func (l Logger) Debug() *zerolog.Event { return l.zl.Debug() }

// Info starts an info-level chain.
func (l Logger) Info() *zerolog.Event { return l.zl.Info() }

// Warn starts a warn-level chain.
func (l Logger) Warn() *zerolog.Event { return l.zl.Warn() }

// Error starts an error-level chain, attaching err.
func (l Logger) Error(err error) *zerolog.Event { return l.zl.Error().Err(err) }
