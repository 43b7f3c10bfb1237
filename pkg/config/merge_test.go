package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMergeActions(t *testing.T) {
	builtin := map[string]ActionConfig{
		"builtin-action": {Safe: boolPtr(true)},
		"override-me":    {Safe: boolPtr(true)},
	}

	user := map[string]ActionConfig{
		"user-action": {AlwaysConfirm: boolPtr(true)},
		"override-me": {Safe: boolPtr(false), Synonyms: []string{"skip it"}},
	}

	result := mergeActions(builtin, user)

	assert.Len(t, result, 3)
	assert.Contains(t, result, "builtin-action")
	assert.True(t, *result["builtin-action"].Safe)

	assert.Contains(t, result, "user-action")
	assert.True(t, *result["user-action"].AlwaysConfirm)

	assert.False(t, *result["override-me"].Safe)
	assert.Equal(t, []string{"skip it"}, result["override-me"].Synonyms)
}

func TestMergeWizards(t *testing.T) {
	builtin := map[string]WizardConfig{
		"schedule_trip": {Enabled: boolPtr(true)},
	}

	user := map[string]WizardConfig{
		"schedule_trip": {Enabled: boolPtr(false)},
		"book_ride":     {Enabled: boolPtr(true)},
	}

	result := mergeWizards(builtin, user)

	assert.Len(t, result, 2)
	assert.False(t, *result["schedule_trip"].Enabled)
	assert.True(t, *result["book_ride"].Enabled)
}

func TestMergeLLMProviders(t *testing.T) {
	builtin := map[string]LLMProviderConfig{
		"openai-primary": {Type: LLMProviderTypeOpenAI, Model: "gpt-4o-mini"},
	}

	user := map[string]LLMProviderConfig{
		"openai-primary": {Type: LLMProviderTypeOpenAI, Model: "gpt-4o"},
		"openai-fallback": {
			Type:    LLMProviderTypeOpenAI,
			Model:   "gpt-4o-mini",
			BaseURL: "http://localhost:8000/v1",
		},
	}

	result := mergeLLMProviders(builtin, user)

	assert.Len(t, result, 2)
	assert.Equal(t, "gpt-4o", result["openai-primary"].Model)
	assert.Equal(t, "http://localhost:8000/v1", result["openai-fallback"].BaseURL)
}
