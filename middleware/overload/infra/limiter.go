package infra

import (
	"fmt"
	"time"

	"overload-gateway/middleware/overload/domain"

	"golang.org/x/time/rate"
)

// Clock é a fonte de tempo dos limiters. time.Now carrega leitura monotônica,
// então ajustes do relógio de parede não afetam o bucket.
type Clock func() time.Time

// WindowLimiter é um token bucket (x/time/rate) com capacidade `capacity` e
// reposição contínua de capacity/window por segundo.
//
// Não bloqueia: AttemptAcquire usa AllowN, que consome exatamente uma permissão
// ou nenhuma.
type WindowLimiter struct {
	lim      *rate.Limiter
	capacity int
	window   time.Duration
	now      Clock
}

type LimiterOption func(*WindowLimiter)

func WithClock(c Clock) LimiterOption {
	return func(l *WindowLimiter) {
		if c != nil {
			l.now = c
		}
	}
}

func NewWindowLimiter(capacity int, window time.Duration, opts ...LimiterOption) (*WindowLimiter, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("%w: capacity must be > 0, got %d", domain.ErrInvalidLimit, capacity)
	}
	if window <= 0 {
		return nil, fmt.Errorf("%w: window must be > 0, got %s", domain.ErrInvalidWindow, window)
	}

	l := &WindowLimiter{
		lim:      rate.NewLimiter(rate.Limit(float64(capacity)/window.Seconds()), capacity),
		capacity: capacity,
		window:   window,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// AttemptAcquire implementa domain.Limiter.
func (l *WindowLimiter) AttemptAcquire() bool {
	// relógio voltando no tempo não gera tokens negativos: rate trata t < last como elapsed=0
	return l.lim.AllowN(l.now(), 1)
}

func (l *WindowLimiter) Capacity() int         { return l.capacity }
func (l *WindowLimiter) Window() time.Duration { return l.window }
