// Package mood models the companion's energy and calm levels. The tip flow
// pulses it; the terminal UI renders its label.
package mood

import (
	"math"
	"sync"
	"time"
)

type Mood string

const (
	Awake     Mood = "Awake"
	Calm      Mood = "Calm"
	Energized Mood = "Energized"
)

// Resting levels, both in [0, 1].
const (
	DefaultEnergy = 0.18
	DefaultCalm   = 0.55
)

const (
	pulseEnergy = 0.40
	pulseCalm   = 0.18
)

// Label maps levels to a mood. Energy wins over calm.
func Label(energy, calm float64) Mood {
	switch {
	case energy > 0.6:
		return Energized
	case calm > 0.7:
		return Calm
	default:
		return Awake
	}
}

type Snapshot struct {
	Energy float64
	Calm   float64
	Mood   Mood
}

// Engine is safe for concurrent use. Levels are computed from the clock on
// read, so no goroutine drives it.
type Engine struct {
	mu     sync.Mutex
	now    func() time.Time
	energy float64
	calm   float64
	pulse  *pulse
}

type pulse struct {
	start  time.Time
	length time.Duration
	energy float64
	calm   float64
}

type Option func(*Engine)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

func New(opts ...Option) *Engine {
	e := &Engine{
		now:    time.Now,
		energy: DefaultEnergy,
		calm:   DefaultCalm,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Pulse starts a boost lasting d. Energy follows a half sine above its
// level at the time of the call and returns to it; calm climbs while the
// pulse decays and keeps what it gained. A new pulse replaces a running one.
func (e *Engine) Pulse(d time.Duration) {
	if d <= 0 {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	now := e.now()
	energy, calm := e.levels(now)
	e.energy, e.calm = energy, calm
	e.pulse = &pulse{start: now, length: d, energy: energy, calm: calm}
}

// Snapshot returns the current levels and label.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()

	energy, calm := e.levels(e.now())
	return Snapshot{Energy: energy, Calm: calm, Mood: Label(energy, calm)}
}

// Active reports whether a pulse is still running.
func (e *Engine) Active() bool {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.levels(e.now())
	return e.pulse != nil
}

// levels evaluates the running pulse at now and folds it in once finished.
// Callers hold e.mu.
func (e *Engine) levels(now time.Time) (energy, calm float64) {
	if e.pulse == nil {
		return e.energy, e.calm
	}

	p := e.pulse
	progress := clamp(float64(now.Sub(p.start))/float64(p.length), 0, 1)
	energy = clamp(p.energy+pulseEnergy*math.Sin(progress*math.Pi), 0, 1)
	// Integral of pulseCalm*(1-progress): calm gains pulseCalm/2 over a full pulse.
	calm = clamp(p.calm+pulseCalm*(progress-progress*progress/2), 0, 1)

	if progress >= 1 {
		e.energy, e.calm = p.energy, calm
		e.pulse = nil
		return e.energy, e.calm
	}
	return energy, calm
}

func clamp(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
