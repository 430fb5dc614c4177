package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/danieljhkim/roboplan/internal/history"
	"github.com/danieljhkim/roboplan/internal/planner"
	"github.com/danieljhkim/roboplan/internal/scene"
)

// Plan runs one planning cycle.
// Algorithm steps:
// 1. Perceive the scene from the image
// 2. Obtain the structured instruction (given, or parsed from text)
// 3. Apply the configured rotate angle when none was given
// 4. Synthesize the plan
// 5. Record the cycle in history, success or failure
func (e *Engine) Plan(ctx context.Context, req *PlanRequest) (*PlanResult, error) {
	rec := &history.Record{
		ID:         e.newID(),
		CreatedAt:  e.now().UTC(),
		Image:      req.Image,
		Text:       req.Text,
		Perception: e.source,
	}
	res := &PlanResult{}
	log := e.logger.With("id", rec.ID)

	fail := func(err error) (*PlanResult, error) {
		rec.Error = err.Error()
		rec.ErrorKind = planner.ErrorKind(err)
		log.Warn("planning failed", "kind", rec.ErrorKind, "error", err)
		if !req.NoSave {
			res.ID = e.save(rec)
		}
		return res, err
	}

	// Step 1: Perceive the scene
	sc, err := e.scenes.ParseScene(ctx, req.Image)
	if err != nil {
		return fail(fmt.Errorf("%w: scene: %w", ErrPerception, err))
	}
	res.Scene = sc
	rec.Scene = sc
	log.Debug("scene perceived", "objects", len(sc.Objects), "locations", len(sc.Locations))

	// Step 2: Obtain the instruction
	in, err := e.instruction(ctx, req.Text, req.Instruction, sc)
	if err != nil {
		return fail(err)
	}

	// Step 3: Default rotate angle
	if in.Intent == planner.IntentRotate && in.Angle == 0 {
		in.Angle = e.rotateAngle
	}
	res.Instruction = in
	rec.Instruction = &in
	log.Debug("instruction parsed", "instruction", in.String())

	// Step 4: Synthesize
	plan, subgoals, err := planner.SynthesizeSubGoals(in, sc)
	if err != nil {
		return fail(err)
	}
	res.Plan = plan
	res.SubGoals = subgoals
	rec.Plan = plan

	if target, dest, ok := delivery(subgoals); ok && sc.IsAt(target, dest) {
		res.AlreadyThere = true
		log.Info("target is already at destination", "target", target, "destination", dest)
	}
	log.Info("plan synthesized", "instruction", in.String(), "actions", len(plan))

	// Step 5: Record
	if !req.NoSave {
		res.ID = e.save(rec)
	}
	return res, nil
}

// delivery returns the resolved object and destination of the final place or
// move, using the names as the scene spells them.
func delivery(subgoals []planner.SubGoal) (string, string, bool) {
	for i := len(subgoals) - 1; i >= 0; i-- {
		sg := subgoals[i]
		if (sg.Kind == planner.KindPlace || sg.Kind == planner.KindMove) && sg.Destination != "" {
			return sg.Target, sg.Destination, true
		}
	}
	return "", "", false
}

// instruction returns the given instruction or parses text against sc.
func (e *Engine) instruction(ctx context.Context, text string, given *planner.Instruction, sc *scene.Scene) (planner.Instruction, error) {
	if given != nil {
		return *given, nil
	}
	if strings.TrimSpace(text) == "" {
		return planner.Instruction{}, ErrMissingInput
	}
	in, err := e.instructions.ParseInstruction(ctx, text, sc)
	if err != nil {
		return planner.Instruction{}, fmt.Errorf("%w: instruction: %w", ErrPerception, err)
	}
	return in, nil
}

// save records the cycle. A history failure does not fail the cycle; it is
// logged and no ID is reported.
func (e *Engine) save(rec *history.Record) string {
	if err := e.history.Save(rec); err != nil {
		e.logger.Error("failed to record plan", "id", rec.ID, "error", err)
		return ""
	}
	return rec.ID
}

// IsPlanningError reports whether err came from the planner rather than from
// perception or storage.
func IsPlanningError(err error) bool {
	return planner.ErrorKind(err) != "" && !errors.Is(err, ErrPerception)
}
