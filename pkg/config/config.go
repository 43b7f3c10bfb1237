package config

// Config is the umbrella configuration object that encapsulates all
// registries, defaults, and resolved system settings. This is the primary
// object returned by Initialize() and used throughout the application.
type Config struct {
	configDir string // Configuration directory path (for reference)

	// System-wide defaults
	Defaults *Defaults

	// Component registries
	ActionRegistry      *ActionRegistry
	WizardRegistry      *WizardRegistry
	LLMProviderRegistry *LLMProviderRegistry

	Server    *ServerConfig
	Database  *DatabaseConfig
	Retention *RetentionConfig
	Masking   *MaskingConfig
}

// Initialize is defined in loader.go

// ConfigStats contains statistics about loaded configuration.
type ConfigStats struct {
	ActionOverrides int
	WizardOverrides int
	LLMProviders    int
}

// Stats returns configuration statistics for logging/monitoring.
func (c *Config) Stats() ConfigStats {
	return ConfigStats{
		ActionOverrides: len(c.ActionRegistry.GetAll()),
		WizardOverrides: len(c.WizardRegistry.GetAll()),
		LLMProviders:    len(c.LLMProviderRegistry.GetAll()),
	}
}

// ConfigDir returns the configuration directory path.
func (c *Config) ConfigDir() string {
	return c.configDir
}

// GetAction retrieves an action override by name.
// This is a convenience method that wraps ActionRegistry.Get().
func (c *Config) GetAction(name string) (*ActionConfig, error) {
	return c.ActionRegistry.Get(name)
}

// GetWizard retrieves a wizard override by wizard type.
// This is a convenience method that wraps WizardRegistry.Get().
func (c *Config) GetWizard(wizardType string) (*WizardConfig, error) {
	return c.WizardRegistry.Get(wizardType)
}

// GetLLMProvider retrieves an LLM provider configuration by name.
// This is a convenience method that wraps LLMProviderRegistry.Get().
func (c *Config) GetLLMProvider(name string) (*LLMProviderConfig, error) {
	return c.LLMProviderRegistry.Get(name)
}
