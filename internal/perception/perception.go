// Package perception adapts the external collaborators that turn raw input
// into the planner's data contracts: an image into a scene.Scene and a
// natural-language command into a planner.Instruction.
//
// The planner never imports this package. Implementations here are a Gemini
// multimodal client, a file-backed scene source, a rule-based instruction
// parser and an LRU cache in front of any SceneParser.
package perception

import (
	"context"
	"errors"

	"github.com/danieljhkim/roboplan/internal/planner"
	"github.com/danieljhkim/roboplan/internal/scene"
)

var (
	// ErrNotUnderstood indicates the instruction text matched no known form.
	ErrNotUnderstood = errors.New("instruction not understood")

	// ErrNoScene indicates no scene could be produced for an image.
	ErrNoScene = errors.New("no scene available")

	// ErrBadResponse indicates the model returned output that does not
	// decode into the expected structure.
	ErrBadResponse = errors.New("invalid model response")
)

// SceneParser produces the scene shown in an image.
type SceneParser interface {
	ParseScene(ctx context.Context, imagePath string) (*scene.Scene, error)
}

// InstructionParser turns instruction text into a structured Instruction,
// grounding names against the scene where it can.
type InstructionParser interface {
	ParseInstruction(ctx context.Context, text string, sc *scene.Scene) (planner.Instruction, error)
}
