package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseValidConfig() *Config {
	return &Config{
		ActionRegistry: NewActionRegistry(nil),
		WizardRegistry: NewWizardRegistry(nil),
		LLMProviderRegistry: NewLLMProviderRegistry(map[string]*LLMProviderConfig{
			"openai-primary": {Type: LLMProviderTypeOpenAI, Model: "gpt-4o-mini"},
		}),
		Server:    &ServerConfig{ListenAddr: ":8080", APIKeyEnv: "TEST_API_KEY"},
		Database:  &DatabaseConfig{DSNEnv: "TEST_DSN", MaxConns: 5},
		Retention: DefaultRetentionConfig(),
		Masking:   &MaskingConfig{Enabled: true, PatternGroups: []string{"all"}},
	}
}

func TestValidateAllSuccess(t *testing.T) {
	t.Setenv("TEST_API_KEY", "secret")
	t.Setenv("TEST_DSN", "postgres://test/test")

	v := NewValidator(baseValidConfig())
	assert.NoError(t, v.ValidateAll())
}

func TestValidateActions(t *testing.T) {
	t.Run("safe and always_confirm conflict", func(t *testing.T) {
		cfg := baseValidConfig()
		cfg.ActionRegistry = NewActionRegistry(map[string]*ActionConfig{
			"restart_service": {Safe: boolPtr(true), AlwaysConfirm: boolPtr(true)},
		})
		v := NewValidator(cfg)
		err := v.validateActions()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "cannot be both safe and always_confirm")
	})

	t.Run("empty synonym rejected", func(t *testing.T) {
		cfg := baseValidConfig()
		cfg.ActionRegistry = NewActionRegistry(map[string]*ActionConfig{
			"restart_service": {Synonyms: []string{""}},
		})
		v := NewValidator(cfg)
		require.Error(t, v.validateActions())
	})
}

func TestValidateWizards(t *testing.T) {
	t.Run("empty field name rejected", func(t *testing.T) {
		cfg := baseValidConfig()
		cfg.WizardRegistry = NewWizardRegistry(map[string]*WizardConfig{
			"schedule_trip": {Steps: map[string]WizardStepText{"": {Question: "x"}}},
		})
		v := NewValidator(cfg)
		require.Error(t, v.validateWizards())
	})

	t.Run("step override with no text rejected", func(t *testing.T) {
		cfg := baseValidConfig()
		cfg.WizardRegistry = NewWizardRegistry(map[string]*WizardConfig{
			"schedule_trip": {Steps: map[string]WizardStepText{"origin": {}}},
		})
		v := NewValidator(cfg)
		require.Error(t, v.validateWizards())
	})
}

func TestValidateLLMProviders(t *testing.T) {
	t.Run("invalid type", func(t *testing.T) {
		cfg := baseValidConfig()
		cfg.LLMProviderRegistry = NewLLMProviderRegistry(map[string]*LLMProviderConfig{
			"bad": {Type: "anthropic", Model: "claude"},
		})
		v := NewValidator(cfg)
		require.Error(t, v.validateLLMProviders())
	})

	t.Run("missing model", func(t *testing.T) {
		cfg := baseValidConfig()
		cfg.LLMProviderRegistry = NewLLMProviderRegistry(map[string]*LLMProviderConfig{
			"bad": {Type: LLMProviderTypeOpenAI},
		})
		v := NewValidator(cfg)
		require.Error(t, v.validateLLMProviders())
	})

	t.Run("missing api key env var", func(t *testing.T) {
		cfg := baseValidConfig()
		cfg.LLMProviderRegistry = NewLLMProviderRegistry(map[string]*LLMProviderConfig{
			"bad": {Type: LLMProviderTypeOpenAI, Model: "gpt-4o-mini", APIKeyEnv: "DOES_NOT_EXIST_XYZ"},
		})
		v := NewValidator(cfg)
		require.Error(t, v.validateLLMProviders())
	})
}

func TestValidateServer(t *testing.T) {
	t.Run("missing listen addr", func(t *testing.T) {
		cfg := baseValidConfig()
		cfg.Server = &ServerConfig{APIKeyEnv: "TEST_API_KEY"}
		t.Setenv("TEST_API_KEY", "secret")
		v := NewValidator(cfg)
		require.Error(t, v.validateServer())
	})

	t.Run("api key env unset", func(t *testing.T) {
		cfg := baseValidConfig()
		cfg.Server = &ServerConfig{ListenAddr: ":8080", APIKeyEnv: "SOME_UNSET_VAR_XYZ"}
		v := NewValidator(cfg)
		require.Error(t, v.validateServer())
	})
}

func TestValidateDatabase(t *testing.T) {
	t.Run("dsn env unset", func(t *testing.T) {
		cfg := baseValidConfig()
		cfg.Database = &DatabaseConfig{DSNEnv: "SOME_UNSET_VAR_XYZ", MaxConns: 5}
		v := NewValidator(cfg)
		require.Error(t, v.validateDatabase())
	})

	t.Run("max conns too low", func(t *testing.T) {
		cfg := baseValidConfig()
		t.Setenv("TEST_DSN", "postgres://test/test")
		cfg.Database = &DatabaseConfig{DSNEnv: "TEST_DSN", MaxConns: 0}
		v := NewValidator(cfg)
		require.Error(t, v.validateDatabase())
	})
}

func TestValidateRetention(t *testing.T) {
	cfg := baseValidConfig()
	cfg.Retention = &RetentionConfig{SessionRetentionDays: 0}
	v := NewValidator(cfg)
	require.Error(t, v.validateRetention())
}

func TestValidateMasking(t *testing.T) {
	t.Run("unknown pattern group", func(t *testing.T) {
		cfg := baseValidConfig()
		cfg.Masking = &MaskingConfig{Enabled: true, PatternGroups: []string{"nonexistent"}}
		v := NewValidator(cfg)
		require.Error(t, v.validateMasking())
	})

	t.Run("unknown pattern name", func(t *testing.T) {
		cfg := baseValidConfig()
		cfg.Masking = &MaskingConfig{Enabled: true, Patterns: []string{"nonexistent"}}
		v := NewValidator(cfg)
		require.Error(t, v.validateMasking())
	})

	t.Run("custom pattern missing replacement", func(t *testing.T) {
		cfg := baseValidConfig()
		cfg.Masking = &MaskingConfig{
			Enabled:        true,
			CustomPatterns: []MaskingPattern{{Pattern: `\d+`}},
		}
		v := NewValidator(cfg)
		require.Error(t, v.validateMasking())
	})

	t.Run("custom pattern invalid regexp", func(t *testing.T) {
		cfg := baseValidConfig()
		cfg.Masking = &MaskingConfig{
			Enabled:        true,
			CustomPatterns: []MaskingPattern{{Pattern: `(unclosed`, Replacement: "[X]"}},
		}
		v := NewValidator(cfg)
		require.Error(t, v.validateMasking())
	})

	t.Run("disabled masking skips validation", func(t *testing.T) {
		cfg := baseValidConfig()
		cfg.Masking = &MaskingConfig{Enabled: false, PatternGroups: []string{"nonexistent"}}
		v := NewValidator(cfg)
		assert.NoError(t, v.validateMasking())
	})
}
