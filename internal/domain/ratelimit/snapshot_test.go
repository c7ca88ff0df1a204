package ratelimit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/probeops/console/internal/domain/auth"
)

func TestWindow_UsagePercent(t *testing.T) {
	tests := []struct {
		name   string
		window Window
		want   int
	}{
		{"zero usage", Window{Limit: 100, Used: 0}, 0},
		{"half", Window{Limit: 100, Used: 50}, 50},
		{"rounded up", Window{Limit: 3, Used: 2}, 67},
		{"full", Window{Limit: 100, Used: 100}, 100},
		{"overage clamps to 100", Window{Limit: 100, Used: 150}, 100},
		{"zero limit reads as zero", Window{Limit: 0, Used: 10}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.window.UsagePercent())
		})
	}
}

func TestWindow_Approaching(t *testing.T) {
	assert.False(t, Window{Limit: 100, Used: 79}.Approaching())
	assert.True(t, Window{Limit: 100, Used: 80}.Approaching())
	assert.True(t, Window{Limit: 100, Used: 200}.Approaching())
}

func TestSnapshot_DerivedValues(t *testing.T) {
	snap := Snapshot{
		Tier:    domainauth.TierStandard,
		Daily:   Window{Limit: 500, Used: 400, Remaining: 100},
		Monthly: Window{Limit: 5000, Used: 100, Remaining: 4900},
	}

	assert.Equal(t, 80, snap.DailyUsagePercent())
	assert.Equal(t, 2, snap.MonthlyUsagePercent())
	assert.True(t, snap.IsApproachingDailyLimit())
	assert.False(t, snap.IsApproachingMonthlyLimit())
}

func TestDefaults(t *testing.T) {
	tests := []struct {
		tier     domainauth.Tier
		daily    int
		monthly  int
		interval int
	}{
		{domainauth.TierFree, 100, 1000, 15},
		{domainauth.TierStandard, 500, 5000, 5},
		{domainauth.TierEnterprise, 1000, 10000, 5},
	}

	for _, tt := range tests {
		t.Run(string(tt.tier), func(t *testing.T) {
			snap, ok := Defaults(tt.tier)
			require.True(t, ok)
			assert.Equal(t, tt.tier, snap.Tier)
			assert.Equal(t, Window{Limit: tt.daily, Used: 0, Remaining: tt.daily}, snap.Daily)
			assert.Equal(t, Window{Limit: tt.monthly, Used: 0, Remaining: tt.monthly}, snap.Monthly)
			assert.Equal(t, tt.interval, snap.ProbeIntervalMinutes)
		})
	}
}

func TestDefaults_UnknownTier(t *testing.T) {
	_, ok := Defaults(domainauth.Tier(""))
	assert.False(t, ok)

	_, ok = Defaults(domainauth.Tier("platinum"))
	assert.False(t, ok)
}
