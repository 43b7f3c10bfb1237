package config

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetBuiltinConfig(t *testing.T) {
	cfg1 := GetBuiltinConfig()
	cfg2 := GetBuiltinConfig()

	assert.Same(t, cfg1, cfg2, "GetBuiltinConfig should return same instance")
	assert.NotNil(t, cfg1, "Built-in config should not be nil")
}

func TestBuiltinConfigThreadSafety(t *testing.T) {
	const goroutines = 100

	var wg sync.WaitGroup
	configs := make([]*BuiltinConfig, goroutines)

	for i := 0; i < goroutines; i++ {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			configs[index] = GetBuiltinConfig()
		}(i)
	}

	wg.Wait()

	for i := 1; i < goroutines; i++ {
		assert.Same(t, configs[0], configs[i], "All goroutines should get same instance")
	}
}

func TestBuiltinLLMProviders(t *testing.T) {
	cfg := GetBuiltinConfig()

	provider, exists := cfg.LLMProviders["openai-primary"]
	assert.True(t, exists)
	assert.Equal(t, LLMProviderTypeOpenAI, provider.Type)
	assert.NotEmpty(t, provider.Model)
	assert.NotEmpty(t, provider.APIKeyEnv)
}

func TestBuiltinMaskingPatterns(t *testing.T) {
	cfg := GetBuiltinConfig()

	for _, name := range []string{"phone_number", "national_id", "email"} {
		t.Run(name, func(t *testing.T) {
			pattern, exists := cfg.MaskingPatterns[name]
			assert.True(t, exists)
			assert.NotEmpty(t, pattern.Pattern)
			assert.NotEmpty(t, pattern.Replacement)
		})
	}
}

func TestBuiltinPatternGroups(t *testing.T) {
	cfg := GetBuiltinConfig()

	t.Run("basic contains phone_number", func(t *testing.T) {
		assert.Contains(t, cfg.PatternGroups["basic"], "phone_number")
	})

	t.Run("all contains every pattern", func(t *testing.T) {
		all := cfg.PatternGroups["all"]
		for name := range cfg.MaskingPatterns {
			assert.Contains(t, all, name)
		}
	})

	t.Run("every group name resolves to known patterns", func(t *testing.T) {
		for group, names := range cfg.PatternGroups {
			for _, name := range names {
				_, exists := cfg.MaskingPatterns[name]
				assert.True(t, exists, "group %s references unknown pattern %s", group, name)
			}
		}
	})
}

func TestBuiltinActionsAndWizardsAreOverrideOnly(t *testing.T) {
	cfg := GetBuiltinConfig()

	// The compiled-in registries (pkg/llmclient, pkg/wizard) are complete on
	// their own; built-in config carries no overrides by default.
	assert.Empty(t, cfg.Actions)
	assert.Empty(t, cfg.Wizards)
}
