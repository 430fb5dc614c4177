package planner

import "errors"

var (
	// ErrUnsupportedIntent indicates the intent verb has no decomposition template.
	ErrUnsupportedIntent = errors.New("unsupported intent")

	// ErrConflictUnresolvable indicates no ordering satisfies the requirements
	// and resource claims of a SubGoal sequence.
	ErrConflictUnresolvable = errors.New("conflict unresolvable")

	// ErrUnresolvedReference indicates a reference to an entity that is
	// missing from the scene, or that matches more than one entity.
	ErrUnresolvedReference = errors.New("unresolved reference")

	// ErrInvalidInstruction indicates an instruction missing a field its
	// intent requires.
	ErrInvalidInstruction = errors.New("invalid instruction")
)

// ErrorKind returns a stable name for the planning error wrapped by err,
// or "" if err is not a planning error.
func ErrorKind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnsupportedIntent):
		return "unsupported_intent"
	case errors.Is(err, ErrConflictUnresolvable):
		return "conflict_unresolvable"
	case errors.Is(err, ErrUnresolvedReference):
		return "unresolved_reference"
	case errors.Is(err, ErrInvalidInstruction):
		return "invalid_instruction"
	default:
		return ""
	}
}
