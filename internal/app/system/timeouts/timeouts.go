// Package timeouts provides the deadlines handlers put on backend calls.
//
// Each call falls into one class:
//   - Ping: health checks against Mongo and the backend
//   - Short: single-record reads and the viewer's own membership
//   - Medium: paged listings and single mutations
//   - Long: login and flows that chain several backend calls
package timeouts

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Defaults, in effect until Configure overrides them.
const (
	DefaultPing   = 2 * time.Second
	DefaultShort  = 5 * time.Second
	DefaultMedium = 10 * time.Second
	DefaultLong   = 30 * time.Second
)

type class int

const (
	classPing class = iota
	classShort
	classMedium
	classLong
	numClasses
)

var defaults = [numClasses]time.Duration{DefaultPing, DefaultShort, DefaultMedium, DefaultLong}

// active holds nanoseconds per class; read on every backend call.
var active [numClasses]atomic.Int64

func init() { Reset() }

func get(c class) time.Duration { return time.Duration(active[c].Load()) }

// Ping is the deadline for connectivity checks.
func Ping() time.Duration { return get(classPing) }

// Short is the deadline for single-record reads.
func Short() time.Duration { return get(classShort) }

// Medium is the deadline for listings and single writes.
func Medium() time.Duration { return get(classMedium) }

// Long is the deadline for multi-call flows.
func Long() time.Duration { return get(classLong) }

// Config overrides per-class deadlines. Zero fields keep the current value.
type Config struct {
	Ping   time.Duration
	Short  time.Duration
	Medium time.Duration
	Long   time.Duration
}

func (c Config) values() [numClasses]time.Duration {
	return [numClasses]time.Duration{c.Ping, c.Short, c.Medium, c.Long}
}

// Configure applies cfg. Bootstrap calls it once before handlers are built.
func Configure(cfg Config) {
	for i, d := range cfg.values() {
		if d > 0 {
			active[i].Store(int64(d))
		}
	}
}

// Reset restores the defaults.
func Reset() {
	for i, d := range defaults {
		active[i].Store(int64(d))
	}
}

// Current reports the deadlines in effect, for startup logging.
func Current() Config {
	return Config{Ping: Ping(), Short: Short(), Medium: Medium(), Long: Long()}
}

// WithTimeout derives a context with the given deadline. The returned
// cancel logs a warning when the deadline, rather than the caller, ended
// the operation.
//
//	ctx, cancel := timeouts.WithTimeout(r.Context(), timeouts.Medium(), h.Log, "read labs")
//	defer cancel()
func WithTimeout(parent context.Context, timeout time.Duration, log *zap.Logger, operation string) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(parent, timeout)
	return ctx, func() {
		if log != nil && errors.Is(ctx.Err(), context.DeadlineExceeded) && parent.Err() == nil {
			log.Warn("backend call hit its deadline",
				zap.String("operation", operation),
				zap.Duration("timeout", timeout))
		}
		cancel()
	}
}
