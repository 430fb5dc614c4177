// Package engine provides the planning cycle behind every roboplan command.
//
// The engine is the orchestration layer between CLI commands and the
// planning core. It asks the perception collaborators for a scene and an
// instruction, runs the planner, and records the outcome in plan history.
//
// Key components:
//   - Engine: Main orchestrator that coordinates all operations
//   - Plan: One full cycle, image and text in, actions out
//   - SubGoals: Decomposition and conflict diagnostics without synthesis
//   - History: Listing, inspecting and deleting recorded cycles
package engine

import (
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/danieljhkim/roboplan/internal/history"
	"github.com/danieljhkim/roboplan/internal/perception"
	"github.com/danieljhkim/roboplan/internal/planner"
)

// Engine orchestrates all roboplan operations.
// It is the main API surface called by the CLI.
type Engine struct {
	scenes       perception.SceneParser
	instructions perception.InstructionParser
	history      history.Store
	logger       *slog.Logger

	source      string
	rotateAngle float64
	now         func() time.Time
	newID       func() string
}

// Option customizes an Engine.
type Option func(*Engine)

// WithSource names the perception collaborators in history records.
func WithSource(source string) Option {
	return func(e *Engine) { e.source = source }
}

// WithRotateAngle sets the angle used when a rotate instruction gives none.
func WithRotateAngle(angle float64) Option {
	return func(e *Engine) { e.rotateAngle = angle }
}

// WithClock replaces time.Now, for deterministic tests.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// WithIDs replaces the UUID generator for record IDs.
func WithIDs(newID func() string) Option {
	return func(e *Engine) { e.newID = newID }
}

// New creates a new Engine with the given dependencies.
func New(
	scenes perception.SceneParser,
	instructions perception.InstructionParser,
	store history.Store,
	logger *slog.Logger,
	opts ...Option,
) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	e := &Engine{
		scenes:       scenes,
		instructions: instructions,
		history:      store,
		logger:       logger,
		rotateAngle:  planner.DefaultRotateAngle,
		now:          time.Now,
		newID:        uuid.NewString,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}
