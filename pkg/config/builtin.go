package config

import "sync"

// BuiltinConfig holds all built-in configuration data: default action
// overrides, wizard overrides, LLM providers, and masking patterns.
type BuiltinConfig struct {
	Actions         map[string]ActionConfig
	Wizards         map[string]WizardConfig
	LLMProviders    map[string]LLMProviderConfig
	MaskingPatterns map[string]MaskingPattern
	PatternGroups   map[string][]string
}

var (
	builtinConfig     *BuiltinConfig
	builtinConfigOnce sync.Once
)

// GetBuiltinConfig returns the singleton built-in configuration (thread-safe, lazy-initialized).
func GetBuiltinConfig() *BuiltinConfig {
	builtinConfigOnce.Do(initBuiltinConfig)
	return builtinConfig
}

func initBuiltinConfig() {
	builtinConfig = &BuiltinConfig{
		Actions:         initBuiltinActions(),
		Wizards:         initBuiltinWizards(),
		LLMProviders:    initBuiltinLLMProviders(),
		MaskingPatterns: initBuiltinMaskingPatterns(),
		PatternGroups:   initBuiltinPatternGroups(),
	}
}

// initBuiltinActions returns an empty override set: the compiled-in
// registry (pkg/llmclient/registry.go) already covers every known action;
// this map only exists for a deployment's opsagent.yaml to narrow
// or widen a specific action's classification without a rebuild.
func initBuiltinActions() map[string]ActionConfig {
	return map[string]ActionConfig{}
}

// initBuiltinWizards returns an empty override set for the same reason:
// pkg/wizard's built-in definitions are complete out of the box.
func initBuiltinWizards() map[string]WizardConfig {
	return map[string]WizardConfig{}
}

func initBuiltinLLMProviders() map[string]LLMProviderConfig {
	return map[string]LLMProviderConfig{
		"openai-primary": {
			Type:       LLMProviderTypeOpenAI,
			Model:      "gpt-4o-mini",
			APIKeyEnv:  "OPENAI_API_KEY",
			MaxRetries: 2,
		},
	}
}

func initBuiltinMaskingPatterns() map[string]MaskingPattern {
	return map[string]MaskingPattern{
		"phone_number": {
			Pattern:     `(?:\+?\d{1,3}[\s-]?)?(?:\(?\d{3,4}\)?[\s-]?)?\d{3,4}[\s-]?\d{3,4}`,
			Replacement: `[MASKED_PHONE]`,
			Description: "Phone numbers",
		},
		"national_id": {
			Pattern:     `\b[A-Z]{0,3}\d{9,16}\b`,
			Replacement: `[MASKED_ID]`,
			Description: "National-id-shaped digit runs",
		},
		"email": {
			Pattern:     `\b[A-Za-z0-9._%+-]+@[A-Za-z0-9]+(?:[.-][A-Za-z0-9]+)*\.[A-Za-z]{2,63}\b`,
			Replacement: `[MASKED_EMAIL]`,
			Description: "Email addresses",
		},
	}
}

// initBuiltinPatternGroups returns predefined groups of masking patterns.
func initBuiltinPatternGroups() map[string][]string {
	return map[string][]string{
		"basic": {"phone_number"},
		"all":   {"phone_number", "national_id", "email"},
	}
}
