package monitor

import (
	"context"
	"time"
)

// Clock fornece o horário e a espera entre ciclos
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration)
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

func (realClock) Sleep(ctx context.Context, d time.Duration) {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Stopwatch controla o tempo máximo de uma execução
type Stopwatch struct {
	clock  Clock
	start  time.Time
	budget time.Duration
}

// NewStopwatch inicia o cronômetro
func NewStopwatch(clock Clock, budget time.Duration) *Stopwatch {
	return &Stopwatch{clock: clock, start: clock.Now(), budget: budget}
}

// Elapsed retorna o tempo desde o início da execução
func (s *Stopwatch) Elapsed() time.Duration {
	return s.clock.Now().Sub(s.start)
}

// Expired informa se o tempo máximo foi atingido
func (s *Stopwatch) Expired() bool {
	return s.Elapsed() >= s.budget
}
