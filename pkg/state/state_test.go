package state_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tarsy-transit/opsagent/pkg/state"
)

func TestState_GetInt64_AcceptsEveryNumericShapeJSONBProduces(t *testing.T) {
	s := state.New()
	s["from_int"] = 42
	s["from_int64"] = int64(42)
	s["from_float64"] = float64(42)
	s["from_json_number"] = json.Number("42")
	s["from_string"] = "42"

	for _, key := range []string{"from_int", "from_int64", "from_float64", "from_json_number"} {
		v, ok := s.GetInt64(key)
		assert.True(t, ok, "key %s should convert", key)
		assert.EqualValues(t, 42, v, "key %s", key)
	}

	_, ok := s.GetInt64("from_string")
	assert.False(t, ok)

	_, ok = s.GetInt64("missing")
	assert.False(t, ok)
}
