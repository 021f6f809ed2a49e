package nakama

import (
	"encoding/json"
	"testing"

	"bigtwo/internal/app"
	"bigtwo/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeAction(t *testing.T) {
	t.Run("play with version", func(t *testing.T) {
		data := encodeMessage(t, map[string]interface{}{
			"cards":   []interface{}{"3S", "3H"},
			"version": float64(7),
		})
		action, err := decodeAction(app.ActionPlay, data)
		require.NoError(t, err)
		assert.Equal(t, app.ActionPlay, action.Kind)
		assert.Equal(t, []string{"3S", "3H"}, action.Names)
		require.NotNil(t, action.Version)
		assert.Equal(t, uint64(7), *action.Version)
	})

	t.Run("empty pass", func(t *testing.T) {
		action, err := decodeAction(app.ActionPass, nil)
		require.NoError(t, err)
		assert.Equal(t, app.ActionPass, action.Kind)
		assert.Nil(t, action.Names)
		assert.Nil(t, action.Version)
	})

	bad := []struct {
		name    string
		payload map[string]interface{}
	}{
		{"cards not a list", map[string]interface{}{"cards": "3S"}},
		{"card not a string", map[string]interface{}{"cards": []interface{}{float64(3)}}},
		{"negative version", map[string]interface{}{"version": float64(-1)}},
		{"fractional version", map[string]interface{}{"version": 1.5}},
		{"version as string", map[string]interface{}{"version": "3"}},
	}
	for _, tt := range bad {
		t.Run(tt.name, func(t *testing.T) {
			_, err := decodeAction(app.ActionPlay, encodeMessage(t, tt.payload))
			assert.Error(t, err)
		})
	}

	_, err := decodeAction(app.ActionPlay, []byte{0xff, 0xff})
	assert.Error(t, err, "garbage bytes")
}

func TestMatchLabel(t *testing.T) {
	label, err := matchLabel(0, phasePlaying)
	require.NoError(t, err)

	var parsed map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(label), &parsed))
	assert.Equal(t, gameLabel, parsed["game"])
	assert.Equal(t, float64(0), parsed["open"])
	assert.Equal(t, phasePlaying, parsed["phase"])
}

func TestEncodePayloadKeepsJSONNames(t *testing.T) {
	data, err := encodePayload(errorPayload{Reason: domain.ReasonStaleAction, Message: "late"})
	require.NoError(t, err)

	m := decodeMessage(t, data)
	assert.Equal(t, "stale_action", m["reason"])
	assert.Equal(t, "late", m["message"])
}
