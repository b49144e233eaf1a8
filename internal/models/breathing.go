package models

import (
	"encoding/json"
	"fmt"
	"time"
)

const (
	// TickInterval is the time between two phase flips.
	TickInterval = 4000 * time.Millisecond
	// TransitionDuration is how long the view animates one phase change.
	// It stays at twice TickInterval so the circle never rests between flips.
	TransitionDuration = 2 * TickInterval

	InhaleScale = 1.25
	RestScale   = 1.0
)

type Phase int

const (
	Inhale Phase = iota
	Exhale
)

// Next returns the opposite phase.
func (p Phase) Next() Phase {
	if p == Inhale {
		return Exhale
	}
	return Inhale
}

func (p Phase) String() string {
	if p == Exhale {
		return "exhale"
	}
	return "inhale"
}

// Label is the text shown inside the breathing circle.
func (p Phase) Label() string {
	if p == Exhale {
		return "Exhale"
	}
	return "Inhale"
}

func (p Phase) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.String())
}

func (p *Phase) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	switch s {
	case "inhale":
		*p = Inhale
	case "exhale":
		*p = Exhale
	default:
		return fmt.Errorf("unknown phase %q", s)
	}
	return nil
}

// BreathingState is a snapshot of a breathing controller.
type BreathingState struct {
	Active bool   `json:"active"`
	Phase  Phase  `json:"phase"`
	Flips  uint64 `json:"flips"`
}

// BreathingView is what the page renders for a given state.
type BreathingView struct {
	Label        string  `json:"label"`
	Scale        float64 `json:"scale"`
	TransitionMs int64   `json:"transition_ms"`
}

// View derives the rendered circle from the state. The label follows the
// phase even when idle; the scale only expands while actively inhaling.
func (s BreathingState) View() BreathingView {
	scale := RestScale
	if s.Active && s.Phase == Inhale {
		scale = InhaleScale
	}
	return BreathingView{
		Label:        s.Phase.Label(),
		Scale:        scale,
		TransitionMs: TransitionDuration.Milliseconds(),
	}
}
