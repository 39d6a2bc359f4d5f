package config

import (
	"fmt"
	"os"
	"time"

	"overload-gateway/middleware/overload/domain"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"
)

// Resiliency espelha domain.Settings com tags de env e YAML.
// Limites são ponteiros: ausente significa ilimitado.
type Resiliency struct {
	EnableOverloadProtection    bool `env:"OVERLOAD_ENABLED" envDefault:"false" yaml:"enable_overload_protection"`
	ForbidNewGuestsIfSubRequest bool `env:"OVERLOAD_FORBID_NEW_GUESTS_IF_SUB_REQUEST" envDefault:"false" yaml:"forbid_new_guests_if_sub_request"`

	PeakLimitGlobal *int          `env:"OVERLOAD_PEAK_LIMIT_GLOBAL" yaml:"peak_limit_global"`
	PeakLimitGuest  *int          `env:"OVERLOAD_PEAK_LIMIT_GUEST" yaml:"peak_limit_guest"`
	PeakLimitBot    *int          `env:"OVERLOAD_PEAK_LIMIT_BOT" yaml:"peak_limit_bot"`
	PeakTimeWindow  time.Duration `env:"OVERLOAD_PEAK_TIME_WINDOW" envDefault:"1s" yaml:"peak_time_window"`

	TrafficLimitGlobal *int          `env:"OVERLOAD_TRAFFIC_LIMIT_GLOBAL" yaml:"traffic_limit_global"`
	TrafficLimitGuest  *int          `env:"OVERLOAD_TRAFFIC_LIMIT_GUEST" yaml:"traffic_limit_guest"`
	TrafficLimitBot    *int          `env:"OVERLOAD_TRAFFIC_LIMIT_BOT" yaml:"traffic_limit_bot"`
	TrafficTimeWindow  time.Duration `env:"OVERLOAD_TRAFFIC_TIME_WINDOW" envDefault:"1m" yaml:"traffic_time_window"`
}

// LoadResiliency lê OVERLOAD_* do ambiente e, se path não for vazio, aplica o
// YAML por cima (só as chaves presentes no arquivo são sobrescritas).
func LoadResiliency(path string) (Resiliency, error) {
	var r Resiliency
	if err := env.Parse(&r); err != nil {
		return Resiliency{}, fmt.Errorf("parse overload env: %w", err)
	}
	if path == "" {
		return r, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Resiliency{}, fmt.Errorf("read overload config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Resiliency{}, fmt.Errorf("decode overload config %s: %w", path, err)
	}
	return r, nil
}

func (r Resiliency) Settings() domain.Settings {
	return domain.Settings{
		EnableOverloadProtection:    r.EnableOverloadProtection,
		ForbidNewGuestsIfSubRequest: r.ForbidNewGuestsIfSubRequest,
		PeakLimitGlobal:             r.PeakLimitGlobal,
		PeakLimitGuest:              r.PeakLimitGuest,
		PeakLimitBot:                r.PeakLimitBot,
		PeakTimeWindow:              r.PeakTimeWindow,
		TrafficLimitGlobal:          r.TrafficLimitGlobal,
		TrafficLimitGuest:           r.TrafficLimitGuest,
		TrafficLimitBot:             r.TrafficLimitBot,
		TrafficTimeWindow:           r.TrafficTimeWindow,
	}
}
