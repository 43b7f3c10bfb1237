package config

// mergeActions merges built-in and user-defined action overrides.
// User-defined overrides take precedence over built-in ones with the same
// action name.
func mergeActions(builtinActions map[string]ActionConfig, userActions map[string]ActionConfig) map[string]*ActionConfig {
	result := make(map[string]*ActionConfig)

	for name, builtin := range builtinActions {
		actionCopy := builtin
		result[name] = &actionCopy
	}

	for name, userAction := range userActions {
		actionCopy := userAction
		result[name] = &actionCopy
	}

	return result
}

// mergeWizards merges built-in and user-defined wizard overrides.
// User-defined overrides take precedence over built-in ones with the same
// wizard type.
func mergeWizards(builtinWizards map[string]WizardConfig, userWizards map[string]WizardConfig) map[string]*WizardConfig {
	result := make(map[string]*WizardConfig)

	for wizardType, builtin := range builtinWizards {
		wizardCopy := builtin
		result[wizardType] = &wizardCopy
	}

	for wizardType, userWizard := range userWizards {
		wizardCopy := userWizard
		result[wizardType] = &wizardCopy
	}

	return result
}

// mergeLLMProviders merges built-in and user-defined LLM provider configurations.
// User-defined providers override built-in providers with the same name.
func mergeLLMProviders(builtinProviders map[string]LLMProviderConfig, userProviders map[string]LLMProviderConfig) map[string]*LLMProviderConfig {
	result := make(map[string]*LLMProviderConfig)

	for name, provider := range builtinProviders {
		providerCopy := provider
		result[name] = &providerCopy
	}

	for name, userProvider := range userProviders {
		providerCopy := userProvider
		result[name] = &providerCopy
	}

	return result
}
