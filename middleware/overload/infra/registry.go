package infra

import (
	"fmt"
	"time"

	"overload-gateway/middleware/overload/domain"
)

// NewRegistry constrói os seis slots a partir do snapshot de configuração.
//
// Slot existe sse o limite está definido e é positivo; nil ou 0 deixam o slot
// ausente. Limite negativo, ou janela não positiva num tier com algum limite,
// é erro de construção (nunca de decisão).
func NewRegistry(s domain.Settings, opts ...LimiterOption) (domain.Registry, error) {
	peak, err := newTier(domain.TierPeak, s.Peak(), opts)
	if err != nil {
		return domain.Registry{}, err
	}
	long, err := newTier(domain.TierLong, s.Long(), opts)
	if err != nil {
		return domain.Registry{}, err
	}
	return domain.Registry{Peak: peak, Long: long}, nil
}

// NewSnapshot valida a configuração e devolve um snapshot pronto para
// application.Protector.Swap.
func NewSnapshot(s domain.Settings, opts ...LimiterOption) (*domain.Snapshot, error) {
	reg, err := NewRegistry(s, opts...)
	if err != nil {
		return nil, err
	}
	return &domain.Snapshot{Settings: s, Registry: reg}, nil
}

func newTier(tier domain.Tier, limits domain.TierLimits, opts []LimiterOption) (domain.TierLimiters, error) {
	var (
		out domain.TierLimiters
		err error
	)
	if out.Global, err = newSlot(limits.Global, limits.Window, opts); err != nil {
		return domain.TierLimiters{}, fmt.Errorf("%s/%s limiter: %w", tier, domain.ScopeGlobal, err)
	}
	if out.Guest, err = newSlot(limits.Guest, limits.Window, opts); err != nil {
		return domain.TierLimiters{}, fmt.Errorf("%s/%s limiter: %w", tier, domain.ScopeGuest, err)
	}
	if out.Bot, err = newSlot(limits.Bot, limits.Window, opts); err != nil {
		return domain.TierLimiters{}, fmt.Errorf("%s/%s limiter: %w", tier, domain.ScopeBot, err)
	}
	return out, nil
}

// newSlot devolve interface nil (e não *WindowLimiter nil) quando ausente.
func newSlot(limit *int, window time.Duration, opts []LimiterOption) (domain.Limiter, error) {
	if limit == nil || *limit == 0 {
		return nil, nil
	}
	lim, err := NewWindowLimiter(*limit, window, opts...)
	if err != nil {
		return nil, err
	}
	return lim, nil
}
