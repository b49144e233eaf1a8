package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransitionIsTwiceTick(t *testing.T) {
	assert.Equal(t, 2*TickInterval, TransitionDuration)
	assert.Equal(t, int64(8000), TransitionDuration.Milliseconds())
}

func TestPhaseNext(t *testing.T) {
	assert.Equal(t, Exhale, Inhale.Next())
	assert.Equal(t, Inhale, Exhale.Next())
}

func TestPhaseJSON(t *testing.T) {
	b, err := json.Marshal(BreathingState{Active: true, Phase: Exhale, Flips: 3})
	require.NoError(t, err)
	assert.JSONEq(t, `{"active":true,"phase":"exhale","flips":3}`, string(b))

	var p Phase
	require.NoError(t, json.Unmarshal([]byte(`"inhale"`), &p))
	assert.Equal(t, Inhale, p)
	assert.Error(t, json.Unmarshal([]byte(`"hold"`), &p))
}

func TestView(t *testing.T) {
	tests := []struct {
		name  string
		state BreathingState
		label string
		scale float64
	}{
		{"idle inhale", BreathingState{Phase: Inhale}, "Inhale", RestScale},
		{"idle exhale", BreathingState{Phase: Exhale}, "Exhale", RestScale},
		{"active inhale", BreathingState{Active: true, Phase: Inhale}, "Inhale", InhaleScale},
		{"active exhale", BreathingState{Active: true, Phase: Exhale}, "Exhale", RestScale},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := tt.state.View()
			assert.Equal(t, tt.label, v.Label)
			assert.Equal(t, tt.scale, v.Scale)
			assert.Equal(t, int64(8000), v.TransitionMs)
		})
	}
}
