package planner

import (
	"fmt"
	"strings"
)

// Intent is the verb of an instruction.
type Intent string

// Intent constants
const (
	IntentPlace    Intent = "place"
	IntentMove     Intent = "move"
	IntentGrasp    Intent = "grasp"
	IntentRotate   Intent = "rotate"
	IntentNavigate Intent = "navigate"
)

// DefaultRotateAngle is used when a rotate instruction carries no angle.
const DefaultRotateAngle = 90.0

// Intents lists every supported intent.
func Intents() []Intent {
	return []Intent{IntentPlace, IntentMove, IntentGrasp, IntentRotate, IntentNavigate}
}

// ParseIntent normalizes s and checks it names a supported intent.
func ParseIntent(s string) (Intent, error) {
	in := Intent(strings.ToLower(strings.TrimSpace(s)))
	if !in.Valid() {
		return in, fmt.Errorf("%w: %q", ErrUnsupportedIntent, s)
	}
	return in, nil
}

// Valid reports whether the intent has a decomposition template.
func (i Intent) Valid() bool {
	switch i {
	case IntentPlace, IntentMove, IntentGrasp, IntentRotate, IntentNavigate:
		return true
	}
	return false
}

// needsDestination reports whether the intent moves an object somewhere.
func (i Intent) needsDestination() bool {
	return i == IntentPlace || i == IntentMove
}

// Instruction is a parsed natural-language command.
type Instruction struct {
	Intent      Intent  `json:"intent" yaml:"intent"`
	Target      string  `json:"target" yaml:"target"`
	Destination string  `json:"destination,omitempty" yaml:"destination,omitempty"`
	Angle       float64 `json:"angle,omitempty" yaml:"angle,omitempty"`
}

func (in Instruction) String() string {
	if in.Destination != "" {
		return fmt.Sprintf("%s %s -> %s", in.Intent, in.Target, in.Destination)
	}
	if in.Intent == IntentRotate && in.Angle != 0 {
		return fmt.Sprintf("%s %s %g°", in.Intent, in.Target, in.Angle)
	}
	return fmt.Sprintf("%s %s", in.Intent, in.Target)
}
