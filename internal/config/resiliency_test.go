package config

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadResiliency_DefaultsLeaveLimitsAbsent(t *testing.T) {
	r, err := LoadResiliency("")
	require.NoError(t, err)

	s := r.Settings()
	assert.False(t, s.EnableOverloadProtection)
	assert.Nil(t, s.PeakLimitGlobal)
	assert.Nil(t, s.TrafficLimitBot)
	assert.Equal(t, time.Second, s.PeakTimeWindow)
	assert.Equal(t, time.Minute, s.TrafficTimeWindow)
}

func TestLoadResiliency_FromEnv(t *testing.T) {
	t.Setenv("OVERLOAD_ENABLED", "true")
	t.Setenv("OVERLOAD_PEAK_LIMIT_GLOBAL", "20")
	t.Setenv("OVERLOAD_TRAFFIC_LIMIT_BOT", "300")
	t.Setenv("OVERLOAD_TRAFFIC_TIME_WINDOW", "5m")

	r, err := LoadResiliency("")
	require.NoError(t, err)

	require.NotNil(t, r.PeakLimitGlobal)
	assert.Equal(t, 20, *r.PeakLimitGlobal)
	require.NotNil(t, r.TrafficLimitBot)
	assert.Equal(t, 300, *r.TrafficLimitBot)
	assert.Nil(t, r.PeakLimitGuest)
	assert.Equal(t, 5*time.Minute, r.TrafficTimeWindow)
	assert.True(t, r.EnableOverloadProtection)
}

func TestLoadResiliency_FileOverridesEnv(t *testing.T) {
	t.Setenv("OVERLOAD_PEAK_LIMIT_GUEST", "7")
	t.Setenv("OVERLOAD_PEAK_LIMIT_BOT", "9")

	path := filepath.Join(t.TempDir(), "overload.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
enable_overload_protection: true
forbid_new_guests_if_sub_request: true
peak_limit_guest: 3
peak_time_window: 2s
traffic_limit_global: 1000
`), 0o600))

	r, err := LoadResiliency(path)
	require.NoError(t, err)

	assert.True(t, r.EnableOverloadProtection)
	assert.True(t, r.ForbidNewGuestsIfSubRequest)
	assert.Equal(t, 3, *r.PeakLimitGuest)
	assert.Equal(t, 9, *r.PeakLimitBot, "keys absent from the file keep the env value")
	assert.Equal(t, 2*time.Second, r.PeakTimeWindow)
	assert.Equal(t, 1000, *r.TrafficLimitGlobal)
}

func TestLoadResiliency_BadFile(t *testing.T) {
	_, err := LoadResiliency(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("peak_limit_guest: [1, 2"), 0o600))
	_, err = LoadResiliency(path)
	require.Error(t, err)
}

func TestFollow_AppliesChanges(t *testing.T) {
	path := filepath.Join(t.TempDir(), "overload.yaml")
	require.NoError(t, os.WriteFile(path, []byte("enable_overload_protection: false\n"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var (
		mu      sync.Mutex
		applied []Resiliency
	)
	done := make(chan error, 1)
	go func() {
		done <- Follow(ctx, path, slog.New(slog.NewTextHandler(io.Discard, nil)), func(r Resiliency) error {
			mu.Lock()
			defer mu.Unlock()
			applied = append(applied, r)
			return nil
		})
	}()

	// dá tempo do watcher ser registrado antes de escrever
	time.Sleep(100 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte("enable_overload_protection: true\npeak_limit_bot: 4\n"), 0o600))

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		if len(applied) == 0 {
			return false
		}
		last := applied[len(applied)-1]
		return last.EnableOverloadProtection && last.PeakLimitBot != nil && *last.PeakLimitBot == 4
	}, 3*time.Second, 20*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Follow did not return after cancel")
	}
}
