package engine

import "github.com/danieljhkim/roboplan/internal/planner"

// PlanRequest represents a request for one planning cycle.
type PlanRequest struct {
	// Image is the path of the scene image
	Image string

	// Text is the natural-language instruction
	Text string

	// Instruction, when set, is used instead of parsing Text
	Instruction *planner.Instruction

	// NoSave skips writing the cycle to plan history
	NoSave bool
}

// SubGoalsRequest represents a request to decompose an instruction without
// synthesizing actions.
type SubGoalsRequest struct {
	// Image is passed to the scene parser (a scene file for the file parser)
	Image string

	// Text is the natural-language instruction
	Text string

	// Instruction, when set, is used instead of parsing Text
	Instruction *planner.Instruction
}
