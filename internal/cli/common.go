package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/danieljhkim/roboplan/internal/config"
	"github.com/danieljhkim/roboplan/internal/engine"
	"github.com/danieljhkim/roboplan/internal/fsops"
	"github.com/danieljhkim/roboplan/internal/history"
	"github.com/danieljhkim/roboplan/internal/perception"
)

// engineOptions selects the perception collaborators for one command.
type engineOptions struct {
	// sceneFile bypasses image perception with a scene file
	sceneFile string

	// offline forces the rule-based instruction parser
	offline bool
}

// newLogger builds the stderr logger; --verbose lowers the level to debug.
func newLogger() *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// loadConfig resolves paths, ensures the data directory and loads config.
func loadConfig() (*config.Paths, *config.Config, error) {
	paths, err := config.DefaultPaths()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get config paths: %w", err)
	}

	if err := paths.EnsureDirectories(); err != nil {
		return nil, nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	cfg, err := config.Load(paths.Config)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}
	return paths, cfg, nil
}

// newEngine creates a new engine with real implementations of all dependencies.
func newEngine(ctx context.Context, opts engineOptions) (*engine.Engine, error) {
	paths, cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	logger := newLogger()

	// Create real implementations
	fs := fsops.NewRealFS()
	store := history.NewFileStore(fs, paths.Plans)
	scenes, instructions, source, err := newPerception(ctx, cfg, opts, logger)
	if err != nil {
		return nil, err
	}

	// Create engine
	return engine.New(scenes, instructions, store, logger,
		engine.WithSource(source),
		engine.WithRotateAngle(cfg.Planner.RotateAngle),
	), nil
}

// newPerception picks the scene and instruction parsers. Without an API key
// the Gemini provider degrades to offline parsing with a warning.
func newPerception(ctx context.Context, cfg *config.Config, opts engineOptions, logger *slog.Logger) (perception.SceneParser, perception.InstructionParser, string, error) {
	var scenes perception.SceneParser = perception.FileSceneParser{Path: opts.sceneFile}
	var instructions perception.InstructionParser = perception.NewRuleParser()

	offline := opts.offline || cfg.Perception.Provider == config.ProviderOffline
	if !offline && cfg.Perception.APIKey == "" {
		logger.Warn("no Gemini API key (set GEMINI_API_KEY); using offline perception")
		offline = true
	}
	if offline {
		return scenes, instructions, config.ProviderOffline, nil
	}

	gem, err := perception.NewGemini(ctx, cfg.Perception.APIKey, cfg.Perception.Model, cfg.Perception.Timeout, logger)
	if err != nil {
		return nil, nil, "", err
	}
	if opts.sceneFile != "" {
		return scenes, gem, "file+" + gem.Name(), nil
	}

	scenes = gem
	if cfg.Perception.CacheSize > 0 {
		cached, err := perception.NewCachedSceneParser(gem, cfg.Perception.CacheSize)
		if err != nil {
			return nil, nil, "", err
		}
		scenes = cached
	}
	return scenes, gem, gem.Name(), nil
}

// formatError formats an error for display.
func formatError(err error) string {
	return errorColor.Sprintf("Error: %v", err)
}

// outputJSON outputs a value as JSON to stdout.
func outputJSON(v any) error {
	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
