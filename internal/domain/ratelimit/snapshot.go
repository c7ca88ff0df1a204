package ratelimit

// Package ratelimit contains domain-level types for subscription usage
// quotas. Derived values are computed on every read, never stored.

import (
	"math"

	domainauth "github.com/probeops/console/internal/domain/auth"
)

// approachingThreshold is the usage percentage at which the UI starts
// nudging toward an upgrade.
const approachingThreshold = 80

// Window is one quota window (daily or monthly). Used may exceed Limit when
// the backend reports an overage; that is displayed clamped, not rejected.
type Window struct {
	Limit     int `json:"limit"`
	Used      int `json:"used"`
	Remaining int `json:"remaining"`
}

// UsagePercent returns the rounded usage percentage clamped to 100 for
// display. A non-positive limit reads as zero usage rather than a division
// error.
func (w Window) UsagePercent() int {
	if w.Limit <= 0 {
		return 0
	}
	percent := int(math.Round(float64(w.Used) / float64(w.Limit) * 100))
	if percent > 100 {
		return 100
	}
	return percent
}

// Approaching reports whether the window usage is at or past the warning
// threshold.
func (w Window) Approaching() bool {
	return w.UsagePercent() >= approachingThreshold
}

// Snapshot is the usage snapshot for the current session's tier. It is
// replaced wholesale on every fetch; absence (a nil *Snapshot) means
// "unknown", which consumers must not confuse with zero usage.
type Snapshot struct {
	Tier    domainauth.Tier `json:"tier"`
	Daily   Window          `json:"daily"`
	Monthly Window          `json:"monthly"`
	// ProbeIntervalMinutes is the minimum spacing between probe requests.
	ProbeIntervalMinutes int `json:"probe_interval"`
}

// DailyUsagePercent returns the clamped daily usage percentage.
func (s Snapshot) DailyUsagePercent() int { return s.Daily.UsagePercent() }

// MonthlyUsagePercent returns the clamped monthly usage percentage.
func (s Snapshot) MonthlyUsagePercent() int { return s.Monthly.UsagePercent() }

// IsApproachingDailyLimit reports whether daily usage is at or past the
// warning threshold.
func (s Snapshot) IsApproachingDailyLimit() bool { return s.Daily.Approaching() }

// IsApproachingMonthlyLimit reports whether monthly usage is at or past the
// warning threshold.
func (s Snapshot) IsApproachingMonthlyLimit() bool { return s.Monthly.Approaching() }

// tierDefault holds the static fallback quota for one tier.
type tierDefault struct {
	daily    int
	monthly  int
	interval int
}

var tierDefaults = map[domainauth.Tier]tierDefault{
	domainauth.TierFree:       {daily: 100, monthly: 1000, interval: 15},
	domainauth.TierStandard:   {daily: 500, monthly: 5000, interval: 5},
	domainauth.TierEnterprise: {daily: 1000, monthly: 10000, interval: 5},
}

// Defaults synthesizes a zero-usage snapshot from the static per-tier table.
// It is the fallback when the usage endpoint is unreachable and is only
// valid when the tier is known; ok is false for an unknown tier.
func Defaults(tier domainauth.Tier) (Snapshot, bool) {
	d, ok := tierDefaults[tier]
	if !ok {
		return Snapshot{}, false
	}
	return Snapshot{
		Tier:                 tier,
		Daily:                Window{Limit: d.daily, Used: 0, Remaining: d.daily},
		Monthly:              Window{Limit: d.monthly, Used: 0, Remaining: d.monthly},
		ProbeIntervalMinutes: d.interval,
	}, true
}
