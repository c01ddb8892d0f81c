package models

import (
	"testing"
	"time"
)

func TestIntervalFromMinutes(t *testing.T) {
	minutes := func(n int64) *int64 { return &n }

	tests := []struct {
		name     string
		in       *int64
		expected UpdateInterval
	}{
		{"nil means manual", nil, IntervalManual},
		{"fifteen", minutes(15), IntervalFifteenMin},
		{"thirty", minutes(30), IntervalThirtyMin},
		{"hour", minutes(60), IntervalOneHour},
		{"six hours", minutes(360), IntervalSixHours},
		{"zero maps to manual", minutes(0), IntervalManual},
		{"unknown maps to manual", minutes(42), IntervalManual},
		{"negative maps to manual", minutes(-5), IntervalManual},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IntervalFromMinutes(tt.in); got != tt.expected {
				t.Errorf("IntervalFromMinutes = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestInterval_Duration(t *testing.T) {
	if d := IntervalFifteenMin.Duration(); d != 15*time.Minute {
		t.Errorf("expected 15m, got %v", d)
	}
	if d := IntervalManual.Duration(); d != 0 {
		t.Errorf("manual should have zero duration, got %v", d)
	}
}

func TestInterval_String(t *testing.T) {
	tests := []struct {
		iv       UpdateInterval
		expected string
	}{
		{IntervalManual, "manual"},
		{IntervalFifteenMin, "15m"},
		{IntervalThirtyMin, "30m"},
		{IntervalOneHour, "1h"},
		{IntervalSixHours, "6h"},
		{UpdateInterval{Minutes: 99}, "manual"},
	}

	for _, tt := range tests {
		if got := tt.iv.String(); got != tt.expected {
			t.Errorf("String(%d) = %q, want %q", tt.iv.Minutes, got, tt.expected)
		}
	}
}
