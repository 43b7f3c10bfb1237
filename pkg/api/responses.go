package api

import (
	"github.com/tarsy-transit/opsagent/pkg/audit"
	"github.com/tarsy-transit/opsagent/pkg/db"
)

// MessageResponse is returned by both POST /agent/message and POST
// /agent/confirm (§6.1). AgentOutput mirrors final_output (§3.1);
// SessionID is only populated while a confirmation or a wizard is still
// pending.
type MessageResponse struct {
	AgentOutput map[string]any `json:"agent_output"`
	SessionID   string         `json:"session_id,omitempty"`
}

// ImageResponse is returned by POST /agent/image. The core performs no
// post-processing on the transcription (§6.1): the UI either shows it or
// resubmits it to /agent/message with from_image=true.
type ImageResponse struct {
	OCRText    string  `json:"ocr_text"`
	Confidence float64 `json:"confidence"`
}

// ConfigurationStats mirrors config.ConfigStats for the health response,
// so callers outside the module never depend on the config package's own
// wire shape.
type ConfigurationStats struct {
	ActionOverrides int `json:"action_overrides"`
	WizardOverrides int `json:"wizard_overrides"`
	LLMProviders    int `json:"llm_providers"`
}

// HealthResponse is returned by GET /healthz (supplemented feature).
type HealthResponse struct {
	Status        string             `json:"status"`
	Version       string             `json:"version"`
	Database      *db.HealthStatus   `json:"database"`
	Configuration ConfigurationStats `json:"configuration"`
}

// AuditResponse is returned by GET /agent/audit?trip_id= (supplemented
// feature, §6.5).
type AuditResponse struct {
	Records []audit.Record `json:"records"`
}
