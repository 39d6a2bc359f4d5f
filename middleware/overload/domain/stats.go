package domain

import (
	"context"
	"time"
)

// Motivos de rejeição registrados em StatsEvent.
const (
	ReasonLimit    = "limit"
	ReasonNewGuest = "new_guest"
)

// StatsEvent representa uma decisão de admissão.
//
// Ele é propositalmente "agnóstico de HTTP": Method/Path são strings genéricas.
// Scope/Tier só são preenchidos quando um limiter rejeitou.
//
// Observação: cuidado com cardinalidade de Path em bases como Redis/Prometheus.
type StatsEvent struct {
	UserType UserType
	Allowed  bool
	Reason   string

	Scope Scope
	Tier  Tier

	Method string
	Path   string

	At time.Time
}

// StatsStore é a estratégia de persistência para estatísticas de admissão.
//
// Implementações podem armazenar em Redis, Prometheus, memória, etc.
// O middleware trata erro como best-effort (não derruba request nem muda o veredito).
type StatsStore interface {
	Record(ctx context.Context, ev StatsEvent) error
}
