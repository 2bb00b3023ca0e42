package training

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"modelbench/ports"
)

const (
	// ProgressCeiling is as far as the simulated bar goes before the server answers
	ProgressCeiling = 90.0
	// ProgressStep bounds each tick's advance, drawn uniformly from [0, ProgressStep)
	ProgressStep = 2.0

	StatusPreprocessing = "Preprocessing data..."
	StatusTraining      = "Training models..."
	StatusOptimizing    = "Optimizing hyperparameters..."
)

// StatusFor maps a displayed percentage to its cosmetic stage label
func StatusFor(percent float64) string {
	switch {
	case percent < 30:
		return StatusPreprocessing
	case percent < 60:
		return StatusTraining
	default:
		return StatusOptimizing
	}
}

// Advance applies one tick: add step*draw and clamp at the ceiling
func Advance(percent, draw float64) float64 {
	return math.Min(ProgressCeiling, percent+draw*ProgressStep)
}

type globalRNG struct{}

func (globalRNG) Float64() float64 { return rand.Float64() }

// DefaultRNG draws from math/rand's global source
var DefaultRNG ports.RNGPort = globalRNG{}

// SimulatedProgress animates the progress bar while the training request is in
// flight. It carries no signal from the server.
type SimulatedProgress struct {
	surface  ports.ProgressSurface
	interval time.Duration
	rng      ports.RNGPort

	mu      sync.Mutex
	percent float64
}

// NewSimulatedProgress creates an animation ticking every interval
func NewSimulatedProgress(surface ports.ProgressSurface, interval time.Duration, rng ports.RNGPort) *SimulatedProgress {
	if interval <= 0 {
		interval = time.Second
	}
	if rng == nil {
		rng = DefaultRNG
	}
	return &SimulatedProgress{surface: surface, interval: interval, rng: rng}
}

// Percent returns the last displayed percentage
func (p *SimulatedProgress) Percent() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.percent
}

// Start launches the ticker goroutine from 0%. The returned stop func blocks
// until the goroutine has exited; calling it again is a no-op.
func (p *SimulatedProgress) Start() (stop func()) {
	p.mu.Lock()
	p.percent = 0
	p.mu.Unlock()

	done := make(chan struct{})
	exited := make(chan struct{})
	ticker := time.NewTicker(p.interval)

	go func() {
		defer close(exited)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				return
			case <-ticker.C:
				p.tick()
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			<-exited
		})
	}
}

func (p *SimulatedProgress) tick() {
	p.mu.Lock()
	if p.percent >= ProgressCeiling {
		p.mu.Unlock()
		return
	}
	p.percent = Advance(p.percent, p.rng.Float64())
	percent := p.percent
	p.mu.Unlock()

	if p.surface != nil {
		p.surface.SetProgress(percent, StatusFor(percent))
	}
}
