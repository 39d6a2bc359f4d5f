package infra

import (
	"context"
	"sync"

	"overload-gateway/middleware/overload/domain"
)

type Counters struct {
	Allowed int64 `json:"allowed"`
	Denied  int64 `json:"denied"`
}

// StatsSnapshot é uma cópia dos contadores, serializável em JSON.
type StatsSnapshot struct {
	Total      Counters            `json:"total"`
	ByUserType map[string]Counters `json:"by_user_type"`
	// ByLimiter conta rejeições por "tier/scope" ou pelo motivo new_guest.
	ByLimiter map[string]int64    `json:"by_limiter"`
	ByRoute   map[string]Counters `json:"by_route,omitempty"`
}

// MemoryStatsStore é uma implementação simples em memória.
// Útil para testes, desenvolvimento e para o endpoint /overload/stats.
//
// Não faz expiração; rotas só são rastreadas com WithTrackRoutes.
type MemoryStatsStore struct {
	mu         sync.Mutex
	total      Counters
	byUserType map[string]Counters
	byLimiter  map[string]int64
	byRoute    map[string]Counters

	trackRoutes bool
}

type MemoryStatsOption func(*MemoryStatsStore)

func WithTrackRoutes(track bool) MemoryStatsOption {
	return func(s *MemoryStatsStore) { s.trackRoutes = track }
}

func NewMemoryStatsStore(opts ...MemoryStatsOption) *MemoryStatsStore {
	s := &MemoryStatsStore{
		byUserType: make(map[string]Counters),
		byLimiter:  make(map[string]int64),
		byRoute:    make(map[string]Counters),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *MemoryStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	userType := ev.UserType.String()
	route := ev.Method + " " + ev.Path

	s.mu.Lock()
	defer s.mu.Unlock()

	bump(&s.total, ev.Allowed)

	c := s.byUserType[userType]
	bump(&c, ev.Allowed)
	s.byUserType[userType] = c

	if s.trackRoutes {
		r := s.byRoute[route]
		bump(&r, ev.Allowed)
		s.byRoute[route] = r
	}

	if !ev.Allowed {
		s.byLimiter[limiterLabel(ev)]++
	}
	return nil
}

func (s *MemoryStatsStore) Total() Counters {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.total
}

func (s *MemoryStatsStore) Snapshot() StatsSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := StatsSnapshot{
		Total:      s.total,
		ByUserType: make(map[string]Counters, len(s.byUserType)),
		ByLimiter:  make(map[string]int64, len(s.byLimiter)),
	}
	for k, v := range s.byUserType {
		out.ByUserType[k] = v
	}
	for k, v := range s.byLimiter {
		out.ByLimiter[k] = v
	}
	if s.trackRoutes {
		out.ByRoute = make(map[string]Counters, len(s.byRoute))
		for k, v := range s.byRoute {
			out.ByRoute[k] = v
		}
	}
	return out
}

func bump(c *Counters, allowed bool) {
	if allowed {
		c.Allowed++
		return
	}
	c.Denied++
}

// limiterLabel identifica quem rejeitou: "peak/global", "long/bot", "new_guest".
func limiterLabel(ev domain.StatsEvent) string {
	if ev.Reason == domain.ReasonNewGuest {
		return domain.ReasonNewGuest
	}
	if ev.Tier == "" {
		return "unknown"
	}
	return string(ev.Tier) + "/" + string(ev.Scope)
}
