package domain

// Camada de domínio da proteção contra sobrecarga.
//
// Regras e contratos (interfaces/tipos) sem dependência de net/http.

import "time"

// UserType é a classificação do requisitante, decidida fora deste pacote.
type UserType int

const (
	Guest UserType = iota
	Bot
)

func (u UserType) String() string {
	if u == Bot {
		return "bot"
	}
	return "guest"
}

// Scope retorna o escopo de limiter específico do tipo.
func (u UserType) Scope() Scope {
	if u == Bot {
		return ScopeBot
	}
	return ScopeGuest
}

// Scope é a população à qual um limiter se aplica.
type Scope string

const (
	ScopeGlobal Scope = "global"
	ScopeGuest  Scope = "guest"
	ScopeBot    Scope = "bot"
)

// Tier é o horizonte de tempo de um limiter: rajada curta (peak) ou sustentado (long).
type Tier string

const (
	TierPeak Tier = "peak"
	TierLong Tier = "long"
)

// Limiter concede ou nega uma permissão, sem bloquear.
//
// Observação: a implementação pode ser token-bucket, janela fixa, etc.
// A camada de infra usa golang.org/x/time/rate.
type Limiter interface {
	AttemptAcquire() bool
}

// Acquire tenta consumir uma permissão de l. Limiter ausente (nil) sempre concede
// e não rastreia nada.
func Acquire(l Limiter) bool {
	if l == nil {
		return true
	}
	return l.AttemptAcquire()
}

// TierLimiters agrupa os três slots de um tier. Slots nil significam "sem limite".
type TierLimiters struct {
	Global Limiter
	Guest  Limiter
	Bot    Limiter
}

// ForUser retorna o slot específico do tipo de usuário.
func (t TierLimiters) ForUser(u UserType) Limiter {
	if u == Bot {
		return t.Bot
	}
	return t.Guest
}

// Registry contém os seis slots {peak, long} x {global, guest, bot}.
// Imutável depois de construído; só o estado interno dos limiters muda.
type Registry struct {
	Peak TierLimiters
	Long TierLimiters
}

// Settings é o snapshot (somente leitura) da configuração de resiliência.
// Limites nil significam "ilimitado" para aquele escopo/tier.
type Settings struct {
	EnableOverloadProtection    bool
	ForbidNewGuestsIfSubRequest bool

	PeakLimitGlobal *int
	PeakLimitGuest  *int
	PeakLimitBot    *int
	PeakTimeWindow  time.Duration

	TrafficLimitGlobal *int
	TrafficLimitGuest  *int
	TrafficLimitBot    *int
	TrafficTimeWindow  time.Duration
}

// TierLimits são os limites configurados de um tier e a duração da sua janela.
type TierLimits struct {
	Global *int
	Guest  *int
	Bot    *int
	Window time.Duration
}

func (s Settings) Peak() TierLimits {
	return TierLimits{Global: s.PeakLimitGlobal, Guest: s.PeakLimitGuest, Bot: s.PeakLimitBot, Window: s.PeakTimeWindow}
}

func (s Settings) Long() TierLimits {
	return TierLimits{Global: s.TrafficLimitGlobal, Guest: s.TrafficLimitGuest, Bot: s.TrafficLimitBot, Window: s.TrafficTimeWindow}
}

// Snapshot é a unidade de troca atômica em hot-reload: configuração + limiters
// construídos a partir dela.
type Snapshot struct {
	Settings Settings
	Registry Registry
}

// Verdict é o resultado de uma avaliação. Quando Denied, Scope e Tier indicam
// qual limiter rejeitou.
type Verdict struct {
	Denied bool
	Scope  Scope
	Tier   Tier
}

// Identity descreve o requisitante. Hoje não é consultada pela decisão; existe
// como ponto de extensão para overrides por identidade.
type Identity struct {
	UserAgent  string
	RemoteAddr string
}

// RequestContext é o contexto mínimo usado pela regra de novos convidados.
type RequestContext struct {
	SubRequest bool
	Path       string
}
