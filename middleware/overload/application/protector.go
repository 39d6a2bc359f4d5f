package application

import (
	"log/slog"
	"sync/atomic"

	"overload-gateway/middleware/overload/domain"
)

// Protector concentra a regra de admissão: um veredito por request a partir da
// classificação (guest/bot) e dos seis limiters do snapshot atual.
//
// Ele não sabe nada sobre HTTP (headers/status), apenas retorna a decisão.
// Nenhuma chamada bloqueia; o único estado mutável compartilhado é o dos limiters.
type Protector struct {
	snap atomic.Pointer[domain.Snapshot]
	log  *slog.Logger
}

// NewProtector cria um Protector. snap pode ser nil: sem snapshot tudo é admitido.
func NewProtector(log *slog.Logger, snap *domain.Snapshot) *Protector {
	if log == nil {
		log = slog.Default()
	}
	p := &Protector{log: log}
	if snap != nil {
		p.snap.Store(snap)
	}
	return p
}

// Swap troca o snapshot inteiro (configuração + limiters) atomicamente.
// Requests em andamento terminam com o snapshot que já leram.
func (p *Protector) Swap(snap *domain.Snapshot) {
	p.snap.Store(snap)
}

func (p *Protector) Snapshot() *domain.Snapshot {
	return p.snap.Load()
}

// DenyGuest avalia a decisão para um convidado. id é um ponto de extensão e não
// é consultado.
func (p *Protector) DenyGuest(id *domain.Identity) bool {
	return p.Evaluate(domain.Guest, id).Denied
}

// DenyBot avalia a decisão para um bot. id é um ponto de extensão e não é consultado.
func (p *Protector) DenyBot(id *domain.Identity) bool {
	return p.Evaluate(domain.Bot, id).Denied
}

// ShouldDenyRequest retorna true quando o request deve ser rejeitado.
func (p *Protector) ShouldDenyRequest(userType domain.UserType) bool {
	return p.Evaluate(userType, nil).Denied
}

// Evaluate aplica, nesta ordem: kill switch, tier peak (global e depois tipo),
// tier long (global e depois tipo). O primeiro limiter que nega encerra a
// avaliação; os seguintes não são consultados nem cobrados.
func (p *Protector) Evaluate(userType domain.UserType, _ *domain.Identity) domain.Verdict {
	snap := p.snap.Load()
	if snap == nil || !snap.Settings.EnableOverloadProtection {
		return domain.Verdict{}
	}

	if v := p.checkTier(domain.TierPeak, snap.Registry.Peak, userType); v.Denied {
		return v
	}
	return p.checkTier(domain.TierLong, snap.Registry.Long, userType)
}

func (p *Protector) checkTier(tier domain.Tier, lims domain.TierLimiters, userType domain.UserType) domain.Verdict {
	if !domain.Acquire(lims.Global) {
		p.log.Warn("global traffic limit reached", scopeAttr(domain.ScopeGlobal), tierAttr(tier))
		return domain.Verdict{Denied: true, Scope: domain.ScopeGlobal, Tier: tier}
	}
	if !domain.Acquire(lims.ForUser(userType)) {
		p.log.Warn("user type traffic limit reached", scopeAttr(userType.Scope()), userTypeAttr(userType), tierAttr(tier))
		return domain.Verdict{Denied: true, Scope: userType.Scope(), Tier: tier}
	}
	return domain.Verdict{}
}

// ForbidNewGuest impede a criação de uma nova sessão de convidado em sub-requests
// (bots que recusam cookies criam um convidado novo a cada request).
// Sem contexto de request, não proíbe.
func (p *Protector) ForbidNewGuest(rc *domain.RequestContext) bool {
	snap := p.snap.Load()
	if snap == nil {
		return false
	}
	s := snap.Settings
	if !s.EnableOverloadProtection || !s.ForbidNewGuestsIfSubRequest || rc == nil || !rc.SubRequest {
		return false
	}

	p.log.Warn("new guest forbidden on sub-request", subRequestAttr(rc.SubRequest), pathAttr(rc.Path))
	return true
}
