package planner

import (
	"encoding/json"
	"fmt"
)

// ActionType tags an Action variant.
type ActionType string

// Action types
const (
	ActionNavigate ActionType = "navigate"
	ActionGrasp    ActionType = "grasp"
	ActionPlace    ActionType = "place"
	ActionMove     ActionType = "move"
	ActionRotate   ActionType = "rotate"
)

// Navigation purposes
const (
	PurposeReachObject      = "reach_object"
	PurposeReachDestination = "reach_destination"
)

// Action is one atomic, executable robot operation. The set of
// implementations is closed: Navigate, Grasp, Place, Move and Rotate.
type Action interface {
	Type() ActionType

	// Refs returns the scene entities the action references.
	Refs() []string

	String() string

	record() Record
}

// Navigate drives the robot base to Target.
type Navigate struct {
	Target  string
	Purpose string
}

// Grasp closes the gripper on Target. Force is "gentle" for fragile objects
// and empty otherwise.
type Grasp struct {
	Target string
	Force  string
}

// Place releases Target at Destination. Height is a hint derived from the
// destination (shelf_height, table_height) and may be empty.
type Place struct {
	Target      string
	Destination string
	Height      string
}

// Move carries Target to Destination without a separate place step.
type Move struct {
	Target      string
	Destination string
}

// Rotate turns Target by Angle degrees.
type Rotate struct {
	Target    string
	Angle     float64
	Direction string
}

func (Navigate) Type() ActionType { return ActionNavigate }
func (Grasp) Type() ActionType    { return ActionGrasp }
func (Place) Type() ActionType    { return ActionPlace }
func (Move) Type() ActionType     { return ActionMove }
func (Rotate) Type() ActionType   { return ActionRotate }

func (a Navigate) Refs() []string { return []string{a.Target} }
func (a Grasp) Refs() []string    { return []string{a.Target} }
func (a Place) Refs() []string    { return []string{a.Target, a.Destination} }
func (a Move) Refs() []string     { return []string{a.Target, a.Destination} }
func (a Rotate) Refs() []string   { return []string{a.Target} }

func (a Navigate) String() string {
	if a.Purpose == "" {
		return fmt.Sprintf("navigate to %s", a.Target)
	}
	return fmt.Sprintf("navigate to %s (%s)", a.Target, a.Purpose)
}

func (a Grasp) String() string {
	if a.Force != "" {
		return fmt.Sprintf("grasp %s (force: %s)", a.Target, a.Force)
	}
	return fmt.Sprintf("grasp %s", a.Target)
}

func (a Place) String() string {
	if a.Height != "" {
		return fmt.Sprintf("place %s in %s (height: %s)", a.Target, a.Destination, a.Height)
	}
	return fmt.Sprintf("place %s in %s", a.Target, a.Destination)
}

func (a Move) String() string {
	return fmt.Sprintf("move %s to %s", a.Target, a.Destination)
}

func (a Rotate) String() string {
	return fmt.Sprintf("rotate %s %g° %s", a.Target, a.Angle, a.Direction)
}

// Record is the flat wire form of an Action:
// {type, target, purpose?, destination?, angle?, direction?, parameters?}.
type Record struct {
	Type        ActionType        `json:"type"`
	Target      string            `json:"target"`
	Purpose     string            `json:"purpose,omitempty"`
	Destination string            `json:"destination,omitempty"`
	Angle       *float64          `json:"angle,omitempty"`
	Direction   string            `json:"direction,omitempty"`
	Parameters  map[string]string `json:"parameters,omitempty"`
}

func (a Navigate) record() Record {
	return Record{Type: ActionNavigate, Target: a.Target, Purpose: a.Purpose}
}

func (a Grasp) record() Record {
	r := Record{Type: ActionGrasp, Target: a.Target}
	if a.Force != "" {
		r.Parameters = map[string]string{"force": a.Force}
	}
	return r
}

func (a Place) record() Record {
	r := Record{Type: ActionPlace, Target: a.Target, Destination: a.Destination}
	if a.Height != "" {
		r.Parameters = map[string]string{"height": a.Height}
	}
	return r
}

func (a Move) record() Record {
	return Record{Type: ActionMove, Target: a.Target, Destination: a.Destination}
}

func (a Rotate) record() Record {
	angle := a.Angle
	return Record{Type: ActionRotate, Target: a.Target, Angle: &angle, Direction: a.Direction}
}

// ToRecord converts an Action to its wire form.
func ToRecord(a Action) Record {
	return a.record()
}

// FromRecord converts a wire record back to an Action, checking the fields
// its type requires.
func FromRecord(r Record) (Action, error) {
	if r.Target == "" {
		return nil, fmt.Errorf("%s action without target", r.Type)
	}
	switch r.Type {
	case ActionNavigate:
		return Navigate{Target: r.Target, Purpose: r.Purpose}, nil
	case ActionGrasp:
		return Grasp{Target: r.Target, Force: r.Parameters["force"]}, nil
	case ActionPlace:
		if r.Destination == "" {
			return nil, fmt.Errorf("place action without destination")
		}
		return Place{Target: r.Target, Destination: r.Destination, Height: r.Parameters["height"]}, nil
	case ActionMove:
		if r.Destination == "" {
			return nil, fmt.Errorf("move action without destination")
		}
		return Move{Target: r.Target, Destination: r.Destination}, nil
	case ActionRotate:
		if r.Angle == nil {
			return nil, fmt.Errorf("rotate action without angle")
		}
		return Rotate{Target: r.Target, Angle: *r.Angle, Direction: r.Direction}, nil
	default:
		return nil, fmt.Errorf("unknown action type %q", r.Type)
	}
}

// Plan is the ordered output of a planning cycle.
type Plan []Action

// Records returns the wire form of every action.
func (p Plan) Records() []Record {
	out := make([]Record, len(p))
	for i, a := range p {
		out[i] = a.record()
	}
	return out
}

// MarshalJSON encodes the plan as an array of Records.
func (p Plan) MarshalJSON() ([]byte, error) {
	return json.Marshal(p.Records())
}

// UnmarshalJSON decodes an array of Records.
func (p *Plan) UnmarshalJSON(data []byte) error {
	var records []Record
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}
	out := make(Plan, 0, len(records))
	for i, r := range records {
		a, err := FromRecord(r)
		if err != nil {
			return fmt.Errorf("action %d: %w", i+1, err)
		}
		out = append(out, a)
	}
	*p = out
	return nil
}
