package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"gopkg.in/yaml.v3"
)

func TestMaskingConfigUnmarshalYAML(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want MaskingConfig
	}{
		{
			name: "enabled with pattern groups",
			yaml: `
enabled: true
pattern_groups: [all]
`,
			want: MaskingConfig{Enabled: true, PatternGroups: []string{"all"}},
		},
		{
			name: "with custom patterns",
			yaml: `
enabled: true
custom_patterns:
  - pattern: '\d{4}'
    replacement: "[MASKED]"
    description: four digit run
`,
			want: MaskingConfig{
				Enabled: true,
				CustomPatterns: []MaskingPattern{
					{Pattern: `\d{4}`, Replacement: "[MASKED]", Description: "four digit run"},
				},
			},
		},
		{
			name: "disabled, no fields",
			yaml: `enabled: false`,
			want: MaskingConfig{Enabled: false},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got MaskingConfig
			err := yaml.Unmarshal([]byte(tt.yaml), &got)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestMaskingPatternZeroValue(t *testing.T) {
	var p MaskingPattern
	assert.Empty(t, p.Pattern)
	assert.Empty(t, p.Replacement)
	assert.Empty(t, p.Description)
}
