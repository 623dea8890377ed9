package status

import "time"

// RefreshPhase represents the state of the background refresh
type RefreshPhase string

const (
	// RefreshPhaseRefreshing means a refresh pass is in progress
	RefreshPhaseRefreshing RefreshPhase = "Refreshing"

	// RefreshPhaseComplete means the last pass finished
	RefreshPhaseComplete RefreshPhase = "Complete"

	// RefreshPhaseFailed means the last pass could not finish
	RefreshPhaseFailed RefreshPhase = "Failed"
)

// RefreshStatus is the persisted state of the background repository refresh
type RefreshStatus struct {
	// Phase is the current refresh phase
	Phase RefreshPhase `json:"phase,omitempty"`

	// Message provides additional information about the phase
	Message string `json:"message,omitempty"`

	// LastAttempt is when the last pass started
	LastAttempt *time.Time `json:"lastAttempt,omitempty"`

	// AttemptCount is the number of passes since the last successful one
	AttemptCount int `json:"attemptCount,omitempty"`

	// LastRefreshTime is when the last successful pass finished
	LastRefreshTime *time.Time `json:"lastRefreshTime,omitempty"`

	// RepoCount is the number of stored repositories after the last successful pass
	RepoCount int `json:"repoCount"`

	// Interval is the configured refresh interval (e.g. "6h0m0s")
	Interval string `json:"interval,omitempty"`
}
