package api

import (
	"encoding/json"

	"github.com/google/uuid"

	"github.com/pthm-cable/hawkdove/game"
	"github.com/pthm-cable/hawkdove/payoff"
)

// Error types returned in ErrorResponse.Type.
const (
	ErrTypeValidation  = "VALIDATION_ERROR"
	ErrTypeNotFound    = "NOT_FOUND"
	ErrTypeUnavailable = "ARCHIVE_DISABLED"
	ErrTypeTimeout     = "TIMEOUT"
	ErrTypeInternal    = "INTERNAL_ERROR"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Type      string `json:"type"`
	Message   string `json:"message"`
	Field     string `json:"field,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Uptime  string `json:"uptime"`
	Archive bool   `json:"archive"`
}

// PresetInfo describes one named preset.
type PresetInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ConfigRequest selects a configuration: embedded defaults, then the named
// preset, then any fields present in Config (same keys as the YAML file).
type ConfigRequest struct {
	Preset string          `json:"preset,omitempty"`
	Config json.RawMessage `json:"config,omitempty"`
}

// EquilibriumRequest asks for the payoff tensor and its equilibrium.
// MidFood and FightCost, when both set, bypass the config entirely.
type EquilibriumRequest struct {
	ConfigRequest
	MidFood   *int `json:"mid_food,omitempty"`
	FightCost *int `json:"fight_cost,omitempty"`
}

// EquilibriumResponse carries the tensor and the solved equilibrium.
// Equilibrium is nil and Error set when the game is degenerate.
type EquilibriumResponse struct {
	MidFood     int                 `json:"mid_food"`
	FightCost   int                 `json:"fight_cost"`
	Matrix      payoff.Matrix       `json:"matrix"`
	Dominant    []payoff.Profile    `json:"dominant_profiles"`
	Equilibrium *payoff.Equilibrium `json:"equilibrium,omitempty"`
	HawkShare   *float64            `json:"hawk_share,omitempty"`
	Error       string              `json:"error,omitempty"`
}

// RunRequest runs one simulation synchronously.
type RunRequest struct {
	ConfigRequest
	Seed int64 `json:"seed,omitempty"`
}

// RunResponse is the finished run. ID is set when the run was archived.
type RunResponse struct {
	ID     *uuid.UUID  `json:"id,omitempty"`
	Report game.Report `json:"report"`
}
