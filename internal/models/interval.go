package models

import "time"

// UpdateInterval is the auto-refresh cadence selection. Zero means manual
// refresh only (no timer). Persisted as minutes; absence encodes manual.
type UpdateInterval struct {
	Minutes int64
}

var (
	IntervalManual     = UpdateInterval{0}
	IntervalFifteenMin = UpdateInterval{15}
	IntervalThirtyMin  = UpdateInterval{30}
	IntervalOneHour    = UpdateInterval{60}
	IntervalSixHours   = UpdateInterval{360}
)

// Intervals lists the supported choices in display order.
var Intervals = []UpdateInterval{
	IntervalManual,
	IntervalFifteenMin,
	IntervalThirtyMin,
	IntervalOneHour,
	IntervalSixHours,
}

// IntervalFromMinutes maps a persisted minute count back to a supported
// choice. nil and unrecognized values both mean manual, so stale settings
// rows can never resurrect a removed cadence.
func IntervalFromMinutes(minutes *int64) UpdateInterval {
	if minutes == nil {
		return IntervalManual
	}
	for _, iv := range Intervals {
		if iv.Minutes == *minutes && iv.Minutes != 0 {
			return iv
		}
	}
	return IntervalManual
}

// IsManual reports whether no timer should run.
func (iv UpdateInterval) IsManual() bool {
	return iv.Minutes == 0
}

// Duration returns the tick period, or zero for manual.
func (iv UpdateInterval) Duration() time.Duration {
	return time.Duration(iv.Minutes) * time.Minute
}

func (iv UpdateInterval) String() string {
	switch iv {
	case IntervalManual:
		return "manual"
	case IntervalFifteenMin:
		return "15m"
	case IntervalThirtyMin:
		return "30m"
	case IntervalOneHour:
		return "1h"
	case IntervalSixHours:
		return "6h"
	default:
		return "manual"
	}
}
