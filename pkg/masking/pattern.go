package masking

import (
	"fmt"
	"log/slog"
	"regexp"

	"github.com/tarsy-transit/opsagent/pkg/config"
)

// CompiledPattern holds a pre-compiled regex pattern with its replacement.
type CompiledPattern struct {
	Name        string
	Regex       *regexp.Regexp
	Replacement string
	Description string
}

// resolvedPatterns holds the resolved set of patterns for a masking operation.
type resolvedPatterns struct {
	regexPatterns []*CompiledPattern
}

// compileBuiltinPatterns compiles all built-in regex patterns from config.
// Invalid patterns are logged and skipped.
func (s *Service) compileBuiltinPatterns() {
	for name, pattern := range config.GetBuiltinConfig().MaskingPatterns {
		compiled, err := regexp.Compile(pattern.Pattern)
		if err != nil {
			slog.Error("Failed to compile built-in masking pattern, skipping",
				"pattern", name, "error", err)
			continue
		}
		s.patterns[name] = &CompiledPattern{
			Name:        name,
			Regex:       compiled,
			Replacement: pattern.Replacement,
			Description: pattern.Description,
		}
	}
}

// compileCustomPatterns compiles the deployment's custom patterns (§3.8).
// Custom patterns are keyed as "custom:{index}" to avoid collisions with
// built-in pattern names.
func (s *Service) compileCustomPatterns(cfg *config.MaskingConfig) {
	if cfg == nil {
		return
	}
	for i, pattern := range cfg.CustomPatterns {
		name := fmt.Sprintf("custom:%d", i)
		compiled, err := regexp.Compile(pattern.Pattern)
		if err != nil {
			slog.Error("Failed to compile custom masking pattern, skipping",
				"pattern", name, "error", err)
			continue
		}
		s.patterns[name] = &CompiledPattern{
			Name:        name,
			Regex:       compiled,
			Replacement: pattern.Replacement,
			Description: pattern.Description,
		}
		s.customPatternNames = append(s.customPatternNames, name)
	}
}

// resolvePatterns expands the service's configuration into a deduplicated set
// of compiled patterns: pattern groups, individual named patterns, and every
// custom pattern.
func (s *Service) resolvePatterns() *resolvedPatterns {
	seen := make(map[string]bool)
	resolved := &resolvedPatterns{}

	for _, groupName := range s.cfg.PatternGroups {
		for _, name := range s.patternGroups[groupName] {
			if seen[name] {
				continue
			}
			seen[name] = true
			if cp, ok := s.patterns[name]; ok {
				resolved.regexPatterns = append(resolved.regexPatterns, cp)
			}
		}
	}

	for _, name := range s.cfg.Patterns {
		if seen[name] {
			continue
		}
		seen[name] = true
		if cp, ok := s.patterns[name]; ok {
			resolved.regexPatterns = append(resolved.regexPatterns, cp)
		}
	}

	for _, name := range s.customPatternNames {
		if seen[name] {
			continue
		}
		seen[name] = true
		if cp, ok := s.patterns[name]; ok {
			resolved.regexPatterns = append(resolved.regexPatterns, cp)
		}
	}

	return resolved
}
