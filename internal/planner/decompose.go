package planner

import (
	"fmt"
	"strings"

	"github.com/danieljhkim/roboplan/internal/scene"
)

// Decompose expands an instruction into its fixed template of SubGoals.
//
// The target must resolve to exactly one Object (navigate also accepts a
// Location); the destination of place and move must resolve to exactly one
// Location or Object. Resolved names are canonical scene names. Each step
// requires the one before it. A target already at its destination still
// gets the full sequence.
func Decompose(in Instruction, sc *scene.Scene) ([]SubGoal, error) {
	if !in.Intent.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedIntent, in.Intent)
	}
	if strings.TrimSpace(in.Target) == "" {
		return nil, fmt.Errorf("%w: %s needs a target", ErrInvalidInstruction, in.Intent)
	}
	if in.Intent.needsDestination() && strings.TrimSpace(in.Destination) == "" {
		return nil, fmt.Errorf("%w: %s needs a destination", ErrInvalidInstruction, in.Intent)
	}

	target, err := resolve(sc, "target", in.Target)
	if err != nil {
		return nil, err
	}
	if target.Kind != scene.KindObject && in.Intent != IntentNavigate {
		return nil, fmt.Errorf("%w: target %q is a %s, %s needs an object", ErrUnresolvedReference, target.Name, target.Kind, in.Intent)
	}

	var dest scene.Entity
	if in.Intent.needsDestination() {
		dest, err = resolve(sc, "destination", in.Destination)
		if err != nil {
			return nil, err
		}
		if dest.Name == target.Name {
			return nil, fmt.Errorf("%w: %q cannot be its own destination", ErrInvalidInstruction, target.Name)
		}
	}

	t := &template{}
	switch in.Intent {
	case IntentPlace:
		t.reach(target.Name, PurposeReachObject)
		t.grasp(target.Name)
		t.reach(dest.Name, PurposeReachDestination)
		t.release(KindPlace, target.Name, dest.Name)
	case IntentMove:
		t.reach(target.Name, PurposeReachObject)
		t.grasp(target.Name)
		t.reach(dest.Name, PurposeReachDestination)
		t.release(KindMove, target.Name, dest.Name)
	case IntentGrasp:
		t.reach(target.Name, PurposeReachObject)
		t.grasp(target.Name)
	case IntentRotate:
		angle := in.Angle
		if angle == 0 {
			angle = DefaultRotateAngle
		}
		t.reach(target.Name, PurposeReachObject)
		t.rotate(target.Name, angle)
	case IntentNavigate:
		purpose := PurposeReachObject
		if target.Kind == scene.KindLocation {
			purpose = PurposeReachDestination
		}
		t.reach(target.Name, purpose)
	}
	return t.steps, nil
}

// resolve looks name up in sc and maps scene errors to ErrUnresolvedReference.
func resolve(sc *scene.Scene, role, name string) (scene.Entity, error) {
	e, err := sc.Lookup(name)
	if err != nil {
		return scene.Entity{}, fmt.Errorf("%w: %s %v", ErrUnresolvedReference, role, err)
	}
	return e, nil
}

// template appends SubGoals, chaining each to the previous one.
type template struct {
	steps []SubGoal
}

func (t *template) add(sg SubGoal) {
	if n := len(t.steps); n > 0 {
		sg.Requires = []string{t.steps[n-1].ID}
	}
	t.steps = append(t.steps, sg)
}

func (t *template) reach(target, purpose string) {
	t.add(SubGoal{
		ID:      subGoalID(KindReach, target),
		Kind:    KindReach,
		Target:  target,
		Purpose: purpose,
	})
}

func (t *template) grasp(object string) {
	t.add(SubGoal{
		ID:     subGoalID(KindGrasp, object),
		Kind:   KindGrasp,
		Target: object,
		Claims: []Claim{{Resource: ResourceGripper, Holder: object, Op: ClaimAcquire}},
	})
}

func (t *template) release(kind Kind, object, dest string) {
	t.add(SubGoal{
		ID:          subGoalID(kind, object, dest),
		Kind:        kind,
		Target:      object,
		Destination: dest,
		Claims:      []Claim{{Resource: ResourceGripper, Holder: object, Op: ClaimRelease}},
	})
}

func (t *template) rotate(object string, angle float64) {
	t.add(SubGoal{
		ID:     subGoalID(KindRotate, object),
		Kind:   KindRotate,
		Target: object,
		Angle:  angle,
		Claims: []Claim{{Resource: ResourceGripper, Holder: object, Op: ClaimUse}},
	})
}
