package ledger

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- int64Ptr Tests ---

func TestInt64Ptr(t *testing.T) {
	p := int64Ptr(500)
	require.NotNil(t, p)
	assert.Equal(t, int64(500), *p)

	z := int64Ptr(0)
	require.NotNil(t, z)
	assert.Equal(t, int64(0), *z)
}

// --- ensureJSON Tests ---

func TestEnsureJSON(t *testing.T) {
	t.Run("nil returns empty object", func(t *testing.T) {
		result := ensureJSON(nil)
		assert.Equal(t, json.RawMessage(`{}`), result)
	})

	t.Run("non-nil passthrough", func(t *testing.T) {
		data := json.RawMessage(`{"key":"value"}`)
		result := ensureJSON(data)
		assert.Equal(t, data, result)
	})
}

// --- mergeMeta Tests ---

func TestMergeMeta(t *testing.T) {
	t.Run("nil base with extras", func(t *testing.T) {
		result := mergeMeta(nil, map[string]interface{}{"admin_id": "a1", "amount_paid": 150})
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(result, &m))
		assert.Equal(t, "a1", m["admin_id"])
		assert.Equal(t, float64(150), m["amount_paid"])
	})

	t.Run("existing base with extras", func(t *testing.T) {
		base := json.RawMessage(`{"reason":"counter sale"}`)
		result := mergeMeta(base, map[string]interface{}{"amount_paid": 200})
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(result, &m))
		assert.Equal(t, "counter sale", m["reason"])
		assert.Equal(t, float64(200), m["amount_paid"])
	})

	t.Run("extras overwrite base", func(t *testing.T) {
		base := json.RawMessage(`{"amount_paid":100}`)
		result := mergeMeta(base, map[string]interface{}{"amount_paid": 200})
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(result, &m))
		assert.Equal(t, float64(200), m["amount_paid"])
	})

	t.Run("empty extras", func(t *testing.T) {
		base := json.RawMessage(`{"key":"val"}`)
		result := mergeMeta(base, map[string]interface{}{})
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(result, &m))
		assert.Equal(t, "val", m["key"])
	})
}

// --- NewRedemptionCode Tests ---

func TestNewRedemptionCode(t *testing.T) {
	t.Run("self-service prefix", func(t *testing.T) {
		code := NewRedemptionCode(false)
		assert.True(t, strings.HasPrefix(code, "RDM-"), "got %q", code)
	})

	t.Run("admin claim prefix", func(t *testing.T) {
		code := NewRedemptionCode(true)
		assert.True(t, strings.HasPrefix(code, "ADM-"), "got %q", code)
	})

	t.Run("three dash-separated segments", func(t *testing.T) {
		parts := strings.Split(NewRedemptionCode(false), "-")
		assert.Len(t, parts, 3)
	})

	t.Run("codes are unique", func(t *testing.T) {
		seen := make(map[string]bool)
		for i := 0; i < 100; i++ {
			code := NewRedemptionCode(false)
			assert.False(t, seen[code], "duplicate code %q", code)
			seen[code] = true
		}
	})
}
