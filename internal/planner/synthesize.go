package planner

import (
	"fmt"
	"strings"

	"github.com/danieljhkim/roboplan/internal/scene"
)

// Grasp and place parameters
const (
	ForceGentle = "gentle"

	HeightShelf = "shelf_height"
	HeightTable = "table_height"

	DirectionClockwise        = "clockwise"
	DirectionCounterclockwise = "counterclockwise"
)

// Synthesize runs one planning cycle: Decompose, Resolve, then one Action
// per SubGoal. Every entity an Action references must exist in sc. On error
// no plan is returned.
func Synthesize(in Instruction, sc *scene.Scene) (Plan, error) {
	plan, _, err := SynthesizeSubGoals(in, sc)
	return plan, err
}

// SynthesizeSubGoals is Synthesize that also returns the resolved SubGoals,
// in plan order with names as the scene spells them.
func SynthesizeSubGoals(in Instruction, sc *scene.Scene) (Plan, []SubGoal, error) {
	subgoals, err := Decompose(in, sc)
	if err != nil {
		return nil, nil, err
	}
	ordered, err := Resolve(subgoals)
	if err != nil {
		return nil, nil, err
	}

	plan := make(Plan, 0, len(ordered))
	for _, sg := range ordered {
		a, err := toAction(sg, sc)
		if err != nil {
			return nil, nil, err
		}
		plan = append(plan, a)
	}

	if err := Verify(plan, sc); err != nil {
		return nil, nil, err
	}
	return plan, ordered, nil
}

// Verify checks every entity referenced by plan exists in sc.
func Verify(plan Plan, sc *scene.Scene) error {
	for i, a := range plan {
		for _, ref := range a.Refs() {
			if !sc.Has(ref) {
				return fmt.Errorf("%w: action %d (%s) references %q", ErrUnresolvedReference, i+1, a.Type(), ref)
			}
		}
	}
	return nil
}

func toAction(sg SubGoal, sc *scene.Scene) (Action, error) {
	switch sg.Kind {
	case KindReach:
		return Navigate{Target: sg.Target, Purpose: sg.Purpose}, nil
	case KindGrasp:
		g := Grasp{Target: sg.Target}
		if o, ok := sc.Object(sg.Target); ok && o.HasAttribute("fragile") {
			g.Force = ForceGentle
		}
		return g, nil
	case KindPlace:
		return Place{Target: sg.Target, Destination: sg.Destination, Height: placeHeight(sg.Destination)}, nil
	case KindMove:
		return Move{Target: sg.Target, Destination: sg.Destination}, nil
	case KindRotate:
		dir := DirectionCounterclockwise
		if sg.Angle > 0 {
			dir = DirectionClockwise
		}
		return Rotate{Target: sg.Target, Angle: sg.Angle, Direction: dir}, nil
	default:
		return nil, fmt.Errorf("%w: no action for subgoal kind %q", ErrUnsupportedIntent, sg.Kind)
	}
}

func placeHeight(dest string) string {
	d := strings.ToLower(dest)
	switch {
	case strings.Contains(d, "shelf"):
		return HeightShelf
	case strings.Contains(d, "table"):
		return HeightTable
	default:
		return ""
	}
}
