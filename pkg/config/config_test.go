package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func boolPtr(b bool) *bool { return &b }

func TestConfigConvenienceMethods(t *testing.T) {
	actions := map[string]*ActionConfig{
		"restart_service": {Safe: boolPtr(false), AlwaysConfirm: boolPtr(true)},
	}
	wizards := map[string]*WizardConfig{
		"schedule_trip": {Enabled: boolPtr(true)},
	}
	llmProviders := map[string]*LLMProviderConfig{
		"test-provider": {
			Type:  LLMProviderTypeOpenAI,
			Model: "test-model",
		},
	}

	cfg := &Config{
		configDir:           "/test/config",
		ActionRegistry:      NewActionRegistry(actions),
		WizardRegistry:      NewWizardRegistry(wizards),
		LLMProviderRegistry: NewLLMProviderRegistry(llmProviders),
	}

	t.Run("ConfigDir", func(t *testing.T) {
		assert.Equal(t, "/test/config", cfg.ConfigDir())
	})

	t.Run("GetAction success", func(t *testing.T) {
		action, err := cfg.GetAction("restart_service")
		require.NoError(t, err)
		assert.True(t, *action.AlwaysConfirm)
	})

	t.Run("GetAction not found", func(t *testing.T) {
		_, err := cfg.GetAction("nonexistent")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("GetWizard success", func(t *testing.T) {
		wizard, err := cfg.GetWizard("schedule_trip")
		require.NoError(t, err)
		assert.True(t, *wizard.Enabled)
	})

	t.Run("GetWizard not found", func(t *testing.T) {
		_, err := cfg.GetWizard("nonexistent")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})

	t.Run("GetLLMProvider success", func(t *testing.T) {
		provider, err := cfg.GetLLMProvider("test-provider")
		require.NoError(t, err)
		assert.Equal(t, "test-model", provider.Model)
	})

	t.Run("GetLLMProvider not found", func(t *testing.T) {
		_, err := cfg.GetLLMProvider("nonexistent")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not found")
	})
}

func TestConfigStats(t *testing.T) {
	cfg := &Config{
		ActionRegistry: NewActionRegistry(map[string]*ActionConfig{"a1": {}, "a2": {}}),
		WizardRegistry: NewWizardRegistry(map[string]*WizardConfig{"w1": {}}),
		LLMProviderRegistry: NewLLMProviderRegistry(map[string]*LLMProviderConfig{
			"l1": {}, "l2": {}, "l3": {},
		}),
	}

	stats := cfg.Stats()
	assert.Equal(t, 2, stats.ActionOverrides)
	assert.Equal(t, 1, stats.WizardOverrides)
	assert.Equal(t, 3, stats.LLMProviders)
}
