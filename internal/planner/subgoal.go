package planner

import (
	"fmt"
	"strings"
)

// Kind is the step type of a SubGoal.
type Kind string

// SubGoal kinds
const (
	KindReach  Kind = "reach"
	KindGrasp  Kind = "grasp"
	KindPlace  Kind = "place"
	KindMove   Kind = "move"
	KindRotate Kind = "rotate"
)

// ResourceGripper is the robot's single end effector.
const ResourceGripper = "gripper"

// ClaimOp is what a SubGoal does with an exclusive resource.
type ClaimOp string

// Claim operations
const (
	// ClaimAcquire takes the resource; it must be free or already held by
	// the same holder.
	ClaimAcquire ClaimOp = "acquire"

	// ClaimUse needs the resource free or held by the same holder, and
	// leaves it as it was.
	ClaimUse ClaimOp = "use"

	// ClaimRelease frees the resource; it must be held by the same holder.
	ClaimRelease ClaimOp = "release"
)

// Claim is a SubGoal's declared access to an exclusive resource on behalf of
// a holder (for the gripper, the object in it).
type Claim struct {
	Resource string  `json:"resource"`
	Holder   string  `json:"holder"`
	Op       ClaimOp `json:"op"`
}

func (c Claim) String() string {
	return fmt.Sprintf("%s %s for %s", c.Op, c.Resource, c.Holder)
}

// SubGoal is an intermediate step derived from an instruction.
type SubGoal struct {
	// ID is unique within a sequence, e.g. "grasp(cup)"
	ID string `json:"id"`

	Kind Kind `json:"kind"`

	// Target is the object acted on, or the entity to reach
	Target string `json:"target"`

	// Destination is where place and move put Target
	Destination string `json:"destination,omitempty"`

	// Purpose is why a reach happens (reach_object, reach_destination)
	Purpose string `json:"purpose,omitempty"`

	// Angle is the rotation in degrees for rotate
	Angle float64 `json:"angle,omitempty"`

	// Requires lists IDs of SubGoals that must come before this one
	Requires []string `json:"requires,omitempty"`

	// Claims lists the exclusive resources this SubGoal touches
	Claims []Claim `json:"claims,omitempty"`
}

func (sg SubGoal) String() string {
	var b strings.Builder
	b.WriteString(sg.ID)
	if len(sg.Requires) > 0 {
		fmt.Fprintf(&b, " after %s", strings.Join(sg.Requires, ", "))
	}
	return b.String()
}

// subGoalID builds the canonical ID "kind(arg,...)".
func subGoalID(kind Kind, args ...string) string {
	return fmt.Sprintf("%s(%s)", kind, strings.Join(args, ","))
}
