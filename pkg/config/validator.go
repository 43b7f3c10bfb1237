package config

import (
	"fmt"
	"os"
	"regexp"
)

// Validator validates configuration comprehensively with clear error messages.
type Validator struct {
	cfg *Config
}

// NewValidator creates a validator for the given configuration.
func NewValidator(cfg *Config) *Validator {
	return &Validator{cfg: cfg}
}

// ValidateAll performs comprehensive validation (fail-fast - stops at first error).
func (v *Validator) ValidateAll() error {
	if err := v.validateActions(); err != nil {
		return fmt.Errorf("action validation failed: %w", err)
	}

	if err := v.validateWizards(); err != nil {
		return fmt.Errorf("wizard validation failed: %w", err)
	}

	if err := v.validateLLMProviders(); err != nil {
		return fmt.Errorf("LLM provider validation failed: %w", err)
	}

	if err := v.validateServer(); err != nil {
		return fmt.Errorf("server validation failed: %w", err)
	}

	if err := v.validateDatabase(); err != nil {
		return fmt.Errorf("database validation failed: %w", err)
	}

	if err := v.validateRetention(); err != nil {
		return fmt.Errorf("retention validation failed: %w", err)
	}

	if err := v.validateMasking(); err != nil {
		return fmt.Errorf("masking validation failed: %w", err)
	}

	return nil
}

func (v *Validator) validateActions() error {
	for name, action := range v.cfg.ActionRegistry.GetAll() {
		if action.Safe != nil && action.AlwaysConfirm != nil && *action.Safe && *action.AlwaysConfirm {
			return NewValidationError("action", name, "", fmt.Errorf("action cannot be both safe and always_confirm"))
		}
		for i, syn := range action.Synonyms {
			if syn == "" {
				return NewValidationError("action", name, fmt.Sprintf("synonyms[%d]", i), fmt.Errorf("synonym must not be empty"))
			}
		}
	}
	return nil
}

func (v *Validator) validateWizards() error {
	for wizardType, wizard := range v.cfg.WizardRegistry.GetAll() {
		for field, text := range wizard.Steps {
			if field == "" {
				return NewValidationError("wizard", wizardType, "steps", fmt.Errorf("step field name must not be empty"))
			}
			if text.Question == "" && text.Hint == "" {
				return NewValidationError("wizard", wizardType, "steps."+field, fmt.Errorf("must override question or hint"))
			}
		}
	}
	return nil
}

func (v *Validator) validateLLMProviders() error {
	for name, provider := range v.cfg.LLMProviderRegistry.GetAll() {
		if !provider.Type.IsValid() {
			return NewValidationError("llm_provider", name, "type", fmt.Errorf("invalid provider type: %s", provider.Type))
		}

		if provider.Model == "" {
			return NewValidationError("llm_provider", name, "model", fmt.Errorf("model required"))
		}

		if provider.APIKeyEnv != "" {
			if value := os.Getenv(provider.APIKeyEnv); value == "" {
				return NewValidationError("llm_provider", name, "api_key_env", fmt.Errorf("environment variable %s is not set", provider.APIKeyEnv))
			}
		}

		if provider.MaxRetries < 0 {
			return NewValidationError("llm_provider", name, "max_retries", fmt.Errorf("must be non-negative"))
		}
	}

	return nil
}

func (v *Validator) validateServer() error {
	s := v.cfg.Server
	if s == nil {
		return fmt.Errorf("server configuration is nil")
	}

	if s.ListenAddr == "" {
		return fmt.Errorf("system.server.listen_addr is required")
	}

	if s.APIKeyEnv == "" {
		return fmt.Errorf("system.server.api_key_env is required")
	}

	if value := os.Getenv(s.APIKeyEnv); value == "" {
		return fmt.Errorf("system.server.api_key_env: environment variable %s is not set", s.APIKeyEnv)
	}

	return nil
}

func (v *Validator) validateDatabase() error {
	d := v.cfg.Database
	if d == nil {
		return fmt.Errorf("database configuration is nil")
	}

	if d.DSNEnv == "" {
		return fmt.Errorf("system.database.dsn_env is required")
	}

	if value := os.Getenv(d.DSNEnv); value == "" {
		return fmt.Errorf("system.database.dsn_env: environment variable %s is not set", d.DSNEnv)
	}

	if d.MaxConns < 1 {
		return fmt.Errorf("system.database.max_conns must be at least 1, got %d", d.MaxConns)
	}

	return nil
}

func (v *Validator) validateRetention() error {
	r := v.cfg.Retention
	if r == nil {
		return nil
	}

	if r.SessionRetentionDays < 1 {
		return fmt.Errorf("system.retention.session_retention_days must be at least 1, got %d", r.SessionRetentionDays)
	}
	if r.EventTTL <= 0 {
		return fmt.Errorf("system.retention.event_ttl must be positive, got %v", r.EventTTL)
	}
	if r.CleanupInterval <= 0 {
		return fmt.Errorf("system.retention.cleanup_interval must be positive, got %v", r.CleanupInterval)
	}

	return nil
}

func (v *Validator) validateMasking() error {
	m := v.cfg.Masking
	if m == nil || !m.Enabled {
		return nil
	}

	builtin := GetBuiltinConfig()

	for _, groupName := range m.PatternGroups {
		if _, exists := builtin.PatternGroups[groupName]; !exists {
			return NewValidationError("masking", "", "pattern_groups", fmt.Errorf("pattern group '%s' not found", groupName))
		}
	}

	for _, patternName := range m.Patterns {
		if _, exists := builtin.MaskingPatterns[patternName]; !exists {
			return NewValidationError("masking", "", "patterns", fmt.Errorf("pattern '%s' not found", patternName))
		}
	}

	for i, pattern := range m.CustomPatterns {
		if pattern.Pattern == "" {
			return NewValidationError("masking", "", fmt.Sprintf("custom_patterns[%d].pattern", i), fmt.Errorf("pattern required"))
		}
		if pattern.Replacement == "" {
			return NewValidationError("masking", "", fmt.Sprintf("custom_patterns[%d].replacement", i), fmt.Errorf("replacement required"))
		}
		if _, err := regexp.Compile(pattern.Pattern); err != nil {
			return NewValidationError("masking", "", fmt.Sprintf("custom_patterns[%d].pattern", i), fmt.Errorf("invalid regexp: %w", err))
		}
	}

	return nil
}
