package infra

import (
	"context"

	"overload-gateway/middleware/overload/domain"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusStatsStore exporta decisões como overload_decisions_total.
//
// Labels têm cardinalidade fixa (user_type, outcome, tier, scope); path não entra.
type PrometheusStatsStore struct {
	decisions *prometheus.CounterVec
}

func NewPrometheusStatsStore(reg prometheus.Registerer) (*PrometheusStatsStore, error) {
	decisions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "overload",
		Name:      "decisions_total",
		Help:      "Admission decisions taken by the overload protector.",
	}, []string{"user_type", "outcome", "tier", "scope"})

	if err := reg.Register(decisions); err != nil {
		return nil, err
	}
	return &PrometheusStatsStore{decisions: decisions}, nil
}

func (s *PrometheusStatsStore) Record(_ context.Context, ev domain.StatsEvent) error {
	outcome := "allowed"
	tier, scope := "", ""
	if !ev.Allowed {
		outcome = "denied"
		if ev.Reason == domain.ReasonNewGuest {
			outcome = domain.ReasonNewGuest
		}
		tier, scope = string(ev.Tier), string(ev.Scope)
	}
	s.decisions.WithLabelValues(ev.UserType.String(), outcome, tier, scope).Inc()
	return nil
}

// Collector permite asserts com prometheus/testutil.
func (s *PrometheusStatsStore) Collector() *prometheus.CounterVec { return s.decisions }
