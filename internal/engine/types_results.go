package engine

import (
	"github.com/danieljhkim/roboplan/internal/planner"
	"github.com/danieljhkim/roboplan/internal/scene"
)

// PlanResult represents the outcome of a planning cycle. On failure it is
// returned alongside the error with whatever stages completed.
type PlanResult struct {
	// ID is the history record ID (empty if NoSave or the save failed)
	ID string

	// Scene is the perceived scene
	Scene *scene.Scene

	// Instruction is the structured instruction that was planned
	Instruction planner.Instruction

	// SubGoals are the resolved SubGoals, one per action in plan order
	SubGoals []planner.SubGoal

	// Plan is the synthesized action sequence
	Plan planner.Plan

	// AlreadyThere reports that the target already sits at the destination
	AlreadyThere bool
}

// SubGoalsResult represents a decomposition and its diagnostics.
type SubGoalsResult struct {
	// Instruction is the structured instruction that was decomposed
	Instruction planner.Instruction

	// SubGoals is the template sequence as decomposed
	SubGoals []planner.SubGoal

	// Conflicts lists resource and ordering problems in SubGoals as given
	Conflicts []planner.Conflict

	// Ordered is the resolved order; nil if resolution failed
	Ordered []planner.SubGoal

	// ResolveError is why resolution failed, if it did
	ResolveError error
}
