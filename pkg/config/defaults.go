package config

import "time"

// Defaults contains system-wide default configuration values, used when a
// more specific section doesn't override them.
type Defaults struct {
	// GraphMaxIterations is loaded but not read: the node
	// graph is built with graph.DefaultMaxIterations (§4.1).
	GraphMaxIterations *int `yaml:"graph_max_iterations,omitempty" validate:"omitempty,min=1"`

	// SessionTTL is loaded but not read: the session store gives every
	// pending confirmation session session.DefaultTTL (§3.2).
	SessionTTL *time.Duration `yaml:"session_ttl,omitempty"`

	// Masking applies to audit log entries (§3.8) when no more specific
	// masking config is given; OCR text sent to the LLM provider is not
	// masked.
	Masking *MaskingConfig `yaml:"masking,omitempty"`
}
