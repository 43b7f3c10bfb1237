package config

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// OpsAgentYAMLConfig represents the complete opsagent.yaml file structure.
type OpsAgentYAMLConfig struct {
	System   *SystemYAMLConfig       `yaml:"system"`
	Actions  map[string]ActionConfig `yaml:"actions"`
	Wizards  map[string]WizardConfig `yaml:"wizards"`
	Defaults *Defaults               `yaml:"defaults"`
}

// SystemYAMLConfig groups system-wide infrastructure settings.
type SystemYAMLConfig struct {
	Server    *ServerYAMLConfig `yaml:"server"`
	Database  *DatabaseYAMLConfig `yaml:"database"`
	Retention *RetentionConfig  `yaml:"retention"`
	Masking   *MaskingConfig    `yaml:"masking"`
}

// ServerYAMLConfig holds HTTP server settings from YAML.
type ServerYAMLConfig struct {
	ListenAddr     string   `yaml:"listen_addr,omitempty"`
	APIKeyEnv      string   `yaml:"api_key_env,omitempty"`
	AllowedOrigins []string `yaml:"allowed_origins,omitempty"`
}

// DatabaseYAMLConfig holds Postgres connection settings from YAML.
type DatabaseYAMLConfig struct {
	DSNEnv   string `yaml:"dsn_env,omitempty"`
	MaxConns int32  `yaml:"max_conns,omitempty"`
}

// LLMProvidersYAMLConfig represents the complete llm-providers.yaml file structure.
type LLMProvidersYAMLConfig struct {
	LLMProviders map[string]LLMProviderConfig `yaml:"llm_providers"`
}

// Initialize loads, validates, and returns ready-to-use configuration.
// This is the primary entry point for configuration loading.
//
// Steps performed:
//  1. Load YAML files from configDir
//  2. Expand environment variables
//  3. Parse YAML into structs
//  4. Merge built-in + user-defined configurations
//  5. Build in-memory registries
//  6. Apply default values
//  7. Validate all configuration
//  8. Return Config ready for use
func Initialize(ctx context.Context, configDir string) (*Config, error) {
	log := slog.With("config_dir", configDir)
	log.Info("Initializing configuration")

	cfg, err := load(ctx, configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := validate(cfg); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	stats := cfg.Stats()
	log.Info("Configuration initialized successfully",
		"action_overrides", stats.ActionOverrides,
		"wizard_overrides", stats.WizardOverrides,
		"llm_providers", stats.LLMProviders)

	return cfg, nil
}

// load is the internal loader (not exported).
func load(_ context.Context, configDir string) (*Config, error) {
	loader := &configLoader{configDir: configDir}

	opsConfig, err := loader.loadOpsAgentYAML()
	if err != nil {
		return nil, NewLoadError("opsagent.yaml", err)
	}

	llmProviders, err := loader.loadLLMProvidersYAML()
	if err != nil {
		return nil, NewLoadError("llm-providers.yaml", err)
	}

	builtin := GetBuiltinConfig()

	actions := mergeActions(builtin.Actions, opsConfig.Actions)
	wizards := mergeWizards(builtin.Wizards, opsConfig.Wizards)
	llmProvidersMerged := mergeLLMProviders(builtin.LLMProviders, llmProviders)

	actionRegistry := NewActionRegistry(actions)
	wizardRegistry := NewWizardRegistry(wizards)
	llmProviderRegistry := NewLLMProviderRegistry(llmProvidersMerged)

	defaults := opsConfig.Defaults
	if defaults == nil {
		defaults = &Defaults{}
	}
	if defaults.Masking == nil {
		defaults.Masking = &MaskingConfig{
			Enabled:       true,
			PatternGroups: []string{"all"},
		}
	}

	return &Config{
		configDir:           configDir,
		Defaults:            defaults,
		ActionRegistry:      actionRegistry,
		WizardRegistry:      wizardRegistry,
		LLMProviderRegistry: llmProviderRegistry,
		Server:              resolveServerConfig(opsConfig.System),
		Database:            resolveDatabaseConfig(opsConfig.System),
		Retention:           resolveRetentionConfig(opsConfig.System),
		Masking:             resolveMaskingConfig(opsConfig.System, defaults),
	}, nil
}

// validate performs comprehensive validation on loaded configuration.
func validate(cfg *Config) error {
	validator := NewValidator(cfg)
	return validator.ValidateAll()
}

type configLoader struct {
	configDir string
}

func (l *configLoader) loadYAML(filename string, target any) error {
	path := filepath.Join(l.configDir, filename)

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}
		return err
	}

	// Expand ${VAR}/$VAR environment variable references before parsing.
	data = ExpandEnv(data)

	if err := yaml.Unmarshal(data, target); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidYAML, err)
	}

	return nil
}

func (l *configLoader) loadOpsAgentYAML() (*OpsAgentYAMLConfig, error) {
	var config OpsAgentYAMLConfig

	config.Actions = make(map[string]ActionConfig)
	config.Wizards = make(map[string]WizardConfig)

	if err := l.loadYAML("opsagent.yaml", &config); err != nil {
		return nil, err
	}

	return &config, nil
}

func (l *configLoader) loadLLMProvidersYAML() (map[string]LLMProviderConfig, error) {
	var config LLMProvidersYAMLConfig

	config.LLMProviders = make(map[string]LLMProviderConfig)

	if err := l.loadYAML("llm-providers.yaml", &config); err != nil {
		return nil, err
	}

	return config.LLMProviders, nil
}

// resolveServerConfig resolves HTTP server configuration from system YAML, applying defaults.
func resolveServerConfig(sys *SystemYAMLConfig) *ServerConfig {
	cfg := &ServerConfig{
		ListenAddr:     ":8080",
		APIKeyEnv:      "OPSAGENT_API_KEY",
		AllowedOrigins: []string{"http://localhost:5173"},
	}

	if sys == nil || sys.Server == nil {
		return cfg
	}

	s := sys.Server
	if s.ListenAddr != "" {
		cfg.ListenAddr = s.ListenAddr
	}
	if s.APIKeyEnv != "" {
		cfg.APIKeyEnv = s.APIKeyEnv
	}
	if len(s.AllowedOrigins) > 0 {
		cfg.AllowedOrigins = s.AllowedOrigins
	}

	return cfg
}

// resolveDatabaseConfig resolves Postgres connection configuration from system YAML, applying defaults.
func resolveDatabaseConfig(sys *SystemYAMLConfig) *DatabaseConfig {
	cfg := &DatabaseConfig{
		DSNEnv:   "OPSAGENT_DATABASE_DSN",
		MaxConns: 10,
	}

	if sys == nil || sys.Database == nil {
		return cfg
	}

	d := sys.Database
	if d.DSNEnv != "" {
		cfg.DSNEnv = d.DSNEnv
	}
	if d.MaxConns > 0 {
		cfg.MaxConns = d.MaxConns
	}

	return cfg
}

// resolveRetentionConfig resolves retention configuration from system YAML, applying defaults.
func resolveRetentionConfig(sys *SystemYAMLConfig) *RetentionConfig {
	cfg := DefaultRetentionConfig()

	if sys == nil || sys.Retention == nil {
		return cfg
	}

	r := sys.Retention
	if r.SessionRetentionDays > 0 {
		cfg.SessionRetentionDays = r.SessionRetentionDays
	}
	if r.EventTTL > 0 {
		cfg.EventTTL = r.EventTTL
	}
	if r.CleanupInterval > 0 {
		cfg.CleanupInterval = r.CleanupInterval
	}

	return cfg
}

// resolveMaskingConfig resolves audit-log masking configuration from
// system YAML, falling back to the resolved defaults section.
func resolveMaskingConfig(sys *SystemYAMLConfig, defaults *Defaults) *MaskingConfig {
	if sys != nil && sys.Masking != nil {
		return sys.Masking
	}
	return defaults.Masking
}
