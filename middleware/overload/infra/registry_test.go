package infra

import (
	"testing"
	"time"

	"overload-gateway/middleware/overload/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(v int) *int { return &v }

func TestNewRegistry_AllAbsentWhenNothingConfigured(t *testing.T) {
	reg, err := NewRegistry(domain.Settings{})
	require.NoError(t, err)

	assert.Nil(t, reg.Peak.Global)
	assert.Nil(t, reg.Peak.Guest)
	assert.Nil(t, reg.Peak.Bot)
	assert.Nil(t, reg.Long.Global)
	assert.Nil(t, reg.Long.Guest)
	assert.Nil(t, reg.Long.Bot)
}

func TestNewRegistry_BuildsOnlyPositiveSlots(t *testing.T) {
	reg, err := NewRegistry(domain.Settings{
		PeakLimitGlobal:   intPtr(10),
		PeakLimitGuest:    intPtr(0),
		PeakTimeWindow:    time.Second,
		TrafficLimitBot:   intPtr(100),
		TrafficTimeWindow: time.Minute,
	})
	require.NoError(t, err)

	require.NotNil(t, reg.Peak.Global)
	assert.Nil(t, reg.Peak.Guest, "zero limit must leave the slot absent")
	assert.Nil(t, reg.Peak.Bot)
	assert.Nil(t, reg.Long.Global)
	assert.Nil(t, reg.Long.Guest)
	require.NotNil(t, reg.Long.Bot)

	peak, ok := reg.Peak.Global.(*WindowLimiter)
	require.True(t, ok)
	assert.Equal(t, 10, peak.Capacity())
	assert.Equal(t, time.Second, peak.Window())

	long := reg.Long.Bot.(*WindowLimiter)
	assert.Equal(t, 100, long.Capacity())
	assert.Equal(t, time.Minute, long.Window())
}

func TestNewRegistry_RejectsNegativeLimit(t *testing.T) {
	_, err := NewRegistry(domain.Settings{
		TrafficLimitGuest: intPtr(-1),
		TrafficTimeWindow: time.Minute,
	})
	require.ErrorIs(t, err, domain.ErrInvalidLimit)
	assert.Contains(t, err.Error(), "long/guest")
}

func TestNewRegistry_RejectsMissingWindowForConfiguredTier(t *testing.T) {
	_, err := NewRegistry(domain.Settings{PeakLimitBot: intPtr(3)})
	require.ErrorIs(t, err, domain.ErrInvalidWindow)
	assert.Contains(t, err.Error(), "peak/bot")
}

func TestNewRegistry_WindowIgnoredForUnconfiguredTier(t *testing.T) {
	_, err := NewRegistry(domain.Settings{
		PeakLimitGlobal: intPtr(3),
		PeakTimeWindow:  time.Second,
		// tier long sem limites: janela zero não é erro
	})
	require.NoError(t, err)
}

func TestNewSnapshot_KeepsSettings(t *testing.T) {
	s := domain.Settings{
		EnableOverloadProtection: true,
		PeakLimitGuest:           intPtr(4),
		PeakTimeWindow:           time.Second,
	}
	snap, err := NewSnapshot(s)
	require.NoError(t, err)
	assert.True(t, snap.Settings.EnableOverloadProtection)
	assert.NotNil(t, snap.Registry.Peak.Guest)
}

func TestNewRegistry_SlotsAreIndependent(t *testing.T) {
	clock := newFakeClock()
	reg, err := NewRegistry(domain.Settings{
		PeakLimitGuest: intPtr(1),
		PeakLimitBot:   intPtr(1),
		PeakTimeWindow: time.Second,
	}, WithClock(clock.Now))
	require.NoError(t, err)

	require.True(t, reg.Peak.Guest.AttemptAcquire())
	require.False(t, reg.Peak.Guest.AttemptAcquire())
	assert.True(t, reg.Peak.Bot.AttemptAcquire(), "bot slot must not share state with guest slot")
}
