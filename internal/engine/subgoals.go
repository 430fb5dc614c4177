package engine

import (
	"context"
	"fmt"

	"github.com/danieljhkim/roboplan/internal/planner"
)

// SubGoals decomposes an instruction and reports conflicts and the resolved
// order, without synthesizing actions or touching history.
// Algorithm steps:
// 1. Load the scene
// 2. Obtain the instruction
// 3. Decompose
// 4. Detect conflicts in the sequence as given
// 5. Resolve; a resolution failure is reported in the result, not returned
func (e *Engine) SubGoals(ctx context.Context, req *SubGoalsRequest) (*SubGoalsResult, error) {
	// Step 1: Load the scene
	sc, err := e.scenes.ParseScene(ctx, req.Image)
	if err != nil {
		return nil, fmt.Errorf("%w: scene: %w", ErrPerception, err)
	}

	// Step 2: Obtain the instruction
	in, err := e.instruction(ctx, req.Text, req.Instruction, sc)
	if err != nil {
		return nil, err
	}
	if in.Intent == planner.IntentRotate && in.Angle == 0 {
		in.Angle = e.rotateAngle
	}

	// Step 3: Decompose
	subgoals, err := planner.Decompose(in, sc)
	if err != nil {
		return nil, err
	}

	// Step 4: Detect conflicts
	res := &SubGoalsResult{
		Instruction: in,
		SubGoals:    subgoals,
		Conflicts:   planner.DetectConflicts(subgoals),
	}

	// Step 5: Resolve
	res.Ordered, res.ResolveError = planner.Resolve(subgoals)
	if res.ResolveError != nil {
		e.logger.Warn("subgoals cannot be ordered", "error", res.ResolveError)
	}
	return res, nil
}
