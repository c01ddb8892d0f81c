package core

import (
	"time"

	"payout-sync/internal/models"
)

// Phase tags every published view state.
type Phase string

const (
	// PhaseInitial is the pre-first-load state of the payout stream.
	PhaseInitial Phase = "initial"
	// PhaseIdle is the resting state of the detail and profile streams.
	PhaseIdle    Phase = "idle"
	PhaseLoading Phase = "loading"
	PhaseSuccess Phase = "success"
	PhaseError   Phase = "error"
)

// PayoutsState is one publication of the payout list stream. Stale
// marks data served from cache after a failed refresh.
type PayoutsState struct {
	Phase     Phase           `json:"phase"`
	Payouts   []models.Payout `json:"payouts,omitempty"`
	Stale     bool            `json:"stale,omitempty"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
	Err       string          `json:"error,omitempty"`
}

// DetailState is one publication of the payout detail stream. No cache
// behind it: a failed fetch is just an error.
type DetailState struct {
	Phase  Phase          `json:"phase"`
	Payout *models.Payout `json:"payout,omitempty"`
	Err    string         `json:"error,omitempty"`
}

// ProfileState is one publication of the account profile stream.
type ProfileState struct {
	Phase     Phase        `json:"phase"`
	User      *models.User `json:"user,omitempty"`
	Stale     bool         `json:"stale,omitempty"`
	UpdatedAt *time.Time   `json:"updated_at,omitempty"`
	Err       string       `json:"error,omitempty"`
}

func payoutsInitial() PayoutsState { return PayoutsState{Phase: PhaseInitial} }
func payoutsLoading() PayoutsState { return PayoutsState{Phase: PhaseLoading} }
func payoutsError(msg string) PayoutsState {
	return PayoutsState{Phase: PhaseError, Err: msg}
}

func detailIdle() DetailState    { return DetailState{Phase: PhaseIdle} }
func detailLoading() DetailState { return DetailState{Phase: PhaseLoading} }

func profileIdle() ProfileState    { return ProfileState{Phase: PhaseIdle} }
func profileLoading() ProfileState { return ProfileState{Phase: PhaseLoading} }
