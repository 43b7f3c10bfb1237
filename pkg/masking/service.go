// Package masking redacts sensitive substrings from audit log entries
// (§3.8), using the pattern groups and individual patterns resolved from
// configuration. It is installed through audit.SetMasker; OCR text
// forwarded to the LLM provider is not passed through it.
package masking

import (
	"log/slog"

	"github.com/tarsy-transit/opsagent/pkg/config"
)

// Service applies data masking to audit log entries. Created
// once at application startup (singleton). Thread-safe and stateless aside
// from compiled patterns.
type Service struct {
	cfg                *config.MaskingConfig
	patterns           map[string]*CompiledPattern // Built-in + custom compiled patterns
	patternGroups      map[string][]string         // Group name → pattern names
	customPatternNames []string
}

// NewService creates a masking service with compiled patterns. All patterns
// are compiled eagerly at creation time. Invalid patterns are logged and
// skipped. A nil cfg disables masking entirely.
func NewService(cfg *config.MaskingConfig) *Service {
	if cfg == nil {
		cfg = &config.MaskingConfig{}
	}

	s := &Service{
		cfg:           cfg,
		patterns:      make(map[string]*CompiledPattern),
		patternGroups: config.GetBuiltinConfig().PatternGroups,
	}

	s.compileBuiltinPatterns()
	s.compileCustomPatterns(cfg)

	slog.Info("Masking service initialized",
		"builtin_patterns", len(config.GetBuiltinConfig().MaskingPatterns),
		"compiled_patterns", len(s.patterns),
		"enabled", cfg.Enabled)

	return s
}

// Mask redacts every configured pattern in text. Returns text unchanged when
// masking is disabled or text is empty. On an internal masking failure,
// returns a redaction notice rather than risk leaking the original content
// (fail-closed — this output may be logged to the audit trail or sent to an
// external LLM provider).
func (s *Service) Mask(text string) string {
	if !s.cfg.Enabled || text == "" {
		return text
	}

	resolved := s.resolvePatterns()
	if len(resolved.regexPatterns) == 0 {
		return text
	}

	return s.applyMasking(text, resolved)
}

// applyMasking runs every resolved pattern over content in turn.
func (s *Service) applyMasking(content string, resolved *resolvedPatterns) string {
	masked := content
	for _, pattern := range resolved.regexPatterns {
		masked = pattern.Regex.ReplaceAllString(masked, pattern.Replacement)
	}
	return masked
}
