// opsagent runs the transit operations agent core: an HTTP API backed by
// a graph-based state machine runtime that turns an operator's text (or
// an OCR'd photo of a printed schedule) into a resolved, confirmed
// mutation against the transit database.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/tarsy-transit/opsagent/pkg/audit"
	"github.com/tarsy-transit/opsagent/pkg/config"
	"github.com/tarsy-transit/opsagent/pkg/db"
	"github.com/tarsy-transit/opsagent/pkg/llmclient"
	"github.com/tarsy-transit/opsagent/pkg/masking"
	"github.com/tarsy-transit/opsagent/pkg/nodes"
	"github.com/tarsy-transit/opsagent/pkg/ocr"
	"github.com/tarsy-transit/opsagent/pkg/session"
	"github.com/tarsy-transit/opsagent/pkg/tools"
	"github.com/tarsy-transit/opsagent/pkg/version"

	"github.com/tarsy-transit/opsagent/pkg/api"
)

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func main() {
	configDir := flag.String("config-dir",
		getEnv("CONFIG_DIR", "./deploy/config"),
		"Path to configuration directory")
	flag.Parse()

	envPath := filepath.Join(*configDir, ".env")
	if err := godotenv.Load(envPath); err != nil {
		log.Printf("Warning: Could not load %s file: %v", envPath, err)
		log.Printf("Continuing with existing environment variables...")
	} else {
		log.Printf("Loaded environment from %s", envPath)
	}

	log.Printf("Starting %s", version.Full())
	log.Printf("Config Directory: %s", *configDir)

	ctx := context.Background()

	cfg, err := config.Initialize(ctx, *configDir)
	if err != nil {
		log.Fatalf("Failed to initialize configuration: %v", err)
	}
	applyActionOverrides(cfg)

	dbCfg, err := db.LoadConfigFromEnv()
	if err != nil {
		log.Fatalf("Failed to load database config: %v", err)
	}
	dbClient, err := db.NewClient(ctx, dbCfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer dbClient.Close()
	log.Println("Connected to PostgreSQL database")

	maskingSvc := masking.NewService(cfg.Masking)
	audit.SetMasker(maskingSvc)

	toolset := tools.NewPG(dbClient.Pool)
	sessions := session.NewStore(dbClient.Pool)

	llmClient, err := buildLLMClient(cfg)
	if err != nil {
		log.Fatalf("Failed to configure LLM providers: %v", err)
	}

	ocrProvider, err := buildOCRProvider(cfg)
	if err != nil {
		log.Fatalf("Failed to configure OCR provider: %v", err)
	}

	deps := &nodes.Deps{Tools: toolset, LLM: llmClient, Sessions: sessions}
	g, err := nodes.BuildGraph(deps)
	if err != nil {
		log.Fatalf("Failed to build graph: %v", err)
	}
	log.Println("Graph runtime wired")

	server := api.NewServer(cfg, dbClient, g, deps, sessions, ocrProvider)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("HTTP server listening on %s", cfg.Server.ListenAddr)
		if err := server.Start(cfg.Server.ListenAddr); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		log.Fatalf("HTTP server failed: %v", err)
	case sig := <-stop:
		log.Printf("Received signal %s, shutting down", sig)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Error during server shutdown: %v", err)
	}
}

// applyActionOverrides translates the loaded config's action registry
// into llmclient.ActionOverride values and applies them once, before any
// request traffic begins (§4.3 step 4).
func applyActionOverrides(cfg *config.Config) {
	overrides := make([]llmclient.ActionOverride, 0, cfg.ActionRegistry.Len())
	for name, action := range cfg.ActionRegistry.GetAll() {
		overrides = append(overrides, llmclient.ActionOverride{
			Name:          name,
			Safe:          action.Safe,
			AlwaysConfirm: action.AlwaysConfirm,
			NoTarget:      action.NoTarget,
			Synonyms:      action.Synonyms,
		})
	}
	llmclient.ApplyOverrides(overrides)
	stats := cfg.Stats()
	slog.Info("configuration loaded",
		"action_overrides", stats.ActionOverrides,
		"wizard_overrides", stats.WizardOverrides,
		"llm_providers", stats.LLMProviders)
}

// buildLLMClient wires the primary provider (required) and, if
// configured, a secondary fallback provider (§3.4/§4.3).
func buildLLMClient(cfg *config.Config) (*llmclient.Client, error) {
	primaryCfg, err := cfg.LLMProviderRegistry.Get("openai-primary")
	if err != nil {
		return nil, err
	}
	primary := llmclient.NewOpenAIProvider("openai-primary",
		os.Getenv(primaryCfg.APIKeyEnv), primaryCfg.BaseURL, primaryCfg.Model)

	opts := []llmclient.Option{}
	if primaryCfg.Timeout > 0 {
		opts = append(opts, llmclient.WithTimeout(primaryCfg.Timeout))
	}
	if secondaryCfg, err := cfg.LLMProviderRegistry.Get("openai-secondary"); err == nil {
		secondary := llmclient.NewOpenAIProvider("openai-secondary",
			os.Getenv(secondaryCfg.APIKeyEnv), secondaryCfg.BaseURL, secondaryCfg.Model)
		opts = append(opts, llmclient.WithSecondary(secondary))
	}
	return llmclient.NewClient(primary, opts...), nil
}

// buildOCRProvider reuses the primary LLM provider's credentials for the
// vision-capable multimodal endpoint (§4.2) — same OpenAI-compatible
// account, different model.
func buildOCRProvider(cfg *config.Config) (ocr.Provider, error) {
	primaryCfg, err := cfg.LLMProviderRegistry.Get("openai-primary")
	if err != nil {
		return nil, err
	}
	model := getEnv("OCR_MODEL", "gpt-4o-mini")
	return ocr.NewVisionProvider(os.Getenv(primaryCfg.APIKeyEnv), primaryCfg.BaseURL, model), nil
}
