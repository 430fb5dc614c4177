package history

import (
	"time"

	"github.com/danieljhkim/roboplan/internal/planner"
	"github.com/danieljhkim/roboplan/internal/scene"
)

// Record is the persisted outcome of one planning request.
type Record struct {
	// ID is a random UUID
	ID string `json:"id"`

	// CreatedAt is when the request was processed
	CreatedAt time.Time `json:"createdAt"`

	// Image is the path of the input image as given
	Image string `json:"image,omitempty"`

	// Text is the raw instruction text
	Text string `json:"text,omitempty"`

	// Perception names the collaborators that produced the scene and
	// instruction, e.g. "gemini:gemini-2.5-flash" or "offline"
	Perception string `json:"perception,omitempty"`

	// Scene is the scene the plan was built against
	Scene *scene.Scene `json:"scene,omitempty"`

	// Instruction is the structured instruction, if parsing got that far
	Instruction *planner.Instruction `json:"instruction,omitempty"`

	// Plan is the synthesized action sequence; empty on failure
	Plan planner.Plan `json:"plan,omitempty"`

	// Error is the failure message; empty on success
	Error string `json:"error,omitempty"`

	// ErrorKind classifies planner failures (see planner.ErrorKind)
	ErrorKind string `json:"errorKind,omitempty"`
}

// Succeeded reports whether the request produced a plan.
func (r *Record) Succeeded() bool {
	return r.Error == ""
}

// Status is a one-word summary for listings.
func (r *Record) Status() string {
	switch {
	case r.Succeeded():
		return "ok"
	case r.ErrorKind != "":
		return r.ErrorKind
	default:
		return "failed"
	}
}
