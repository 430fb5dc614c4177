package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultPaths(t *testing.T) {
	t.Run("returns paths based on home directory", func(t *testing.T) {
		t.Setenv("ROBOPLAN_ROOT", "")

		paths, err := DefaultPaths()
		if err != nil {
			t.Fatalf("DefaultPaths failed: %v", err)
		}

		if filepath.Base(paths.Root) != ".roboplan" {
			t.Errorf("Root should end with .roboplan, got: %s", paths.Root)
		}
		if paths.Plans != filepath.Join(paths.Root, "plans") {
			t.Errorf("Plans path incorrect: got %s", paths.Plans)
		}
		if paths.Config != filepath.Join(paths.Root, "config.yaml") {
			t.Errorf("Config path incorrect: got %s", paths.Config)
		}
	})

	t.Run("respects ROBOPLAN_ROOT", func(t *testing.T) {
		customRoot := "/custom/roboplan/path"
		t.Setenv("ROBOPLAN_ROOT", customRoot)

		paths, err := DefaultPaths()
		if err != nil {
			t.Fatalf("DefaultPaths failed: %v", err)
		}
		if paths.Root != customRoot {
			t.Errorf("Expected root %s, got %s", customRoot, paths.Root)
		}
		if paths.Plans != filepath.Join(customRoot, "plans") {
			t.Errorf("Plans should be under custom root, got: %s", paths.Plans)
		}
	})
}

func TestPaths_EnsureDirectories(t *testing.T) {
	paths := PathsAt(filepath.Join(t.TempDir(), "data"))

	if err := paths.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{paths.Root, paths.Plans} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("stat %s: %v", dir, err)
		}
		if !info.IsDir() {
			t.Errorf("%s is not a directory", dir)
		}
	}

	// second call is a no-op
	if err := paths.EnsureDirectories(); err != nil {
		t.Errorf("second EnsureDirectories failed: %v", err)
	}
}

func clearConfigEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"ROBOPLAN_PERCEPTION", "ROBOPLAN_MODEL", "GEMINI_API_KEY", "GOOGLE_API_KEY"} {
		t.Setenv(k, "")
	}
}

func TestLoad(t *testing.T) {
	t.Run("missing file yields defaults", func(t *testing.T) {
		clearConfigEnv(t)

		cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Perception.Provider != ProviderGemini {
			t.Errorf("Provider = %q, want %q", cfg.Perception.Provider, ProviderGemini)
		}
		if cfg.Planner.RotateAngle != 90 {
			t.Errorf("RotateAngle = %v, want 90", cfg.Planner.RotateAngle)
		}
	})

	t.Run("file values override defaults", func(t *testing.T) {
		clearConfigEnv(t)

		path := filepath.Join(t.TempDir(), "config.yaml")
		data := "perception:\n  provider: offline\n  timeout: 30s\n  cache_size: 8\nplanner:\n  rotate_angle: 45\n"
		if err := os.WriteFile(path, []byte(data), 0644); err != nil {
			t.Fatalf("write config: %v", err)
		}

		cfg, err := Load(path)
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Perception.Provider != ProviderOffline {
			t.Errorf("Provider = %q", cfg.Perception.Provider)
		}
		if cfg.Perception.Timeout != 30*time.Second {
			t.Errorf("Timeout = %v", cfg.Perception.Timeout)
		}
		if cfg.Perception.CacheSize != 8 {
			t.Errorf("CacheSize = %d", cfg.Perception.CacheSize)
		}
		if cfg.Perception.Model != "gemini-2.5-flash" {
			t.Errorf("Model default lost: %q", cfg.Perception.Model)
		}
		if cfg.Planner.RotateAngle != 45 {
			t.Errorf("RotateAngle = %v", cfg.Planner.RotateAngle)
		}
	})

	t.Run("environment overrides file", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("ROBOPLAN_PERCEPTION", "OFFLINE")
		t.Setenv("ROBOPLAN_MODEL", "gemini-custom")
		t.Setenv("GOOGLE_API_KEY", "key-2")

		cfg, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
		if err != nil {
			t.Fatalf("Load failed: %v", err)
		}
		if cfg.Perception.Provider != ProviderOffline {
			t.Errorf("Provider = %q", cfg.Perception.Provider)
		}
		if cfg.Perception.Model != "gemini-custom" {
			t.Errorf("Model = %q", cfg.Perception.Model)
		}
		if cfg.Perception.APIKey != "key-2" {
			t.Errorf("APIKey = %q", cfg.Perception.APIKey)
		}
	})

	t.Run("invalid provider is rejected", func(t *testing.T) {
		clearConfigEnv(t)
		t.Setenv("ROBOPLAN_PERCEPTION", "llava")

		if _, err := Load(filepath.Join(t.TempDir(), "config.yaml")); err == nil {
			t.Error("expected error for unknown provider")
		}
	})

	t.Run("malformed yaml", func(t *testing.T) {
		clearConfigEnv(t)

		path := filepath.Join(t.TempDir(), "config.yaml")
		if err := os.WriteFile(path, []byte("perception: [unclosed"), 0644); err != nil {
			t.Fatalf("write config: %v", err)
		}
		if _, err := Load(path); err == nil {
			t.Error("expected parse error")
		}
	})
}

func TestConfig_SaveToFileOmitsAPIKey(t *testing.T) {
	clearConfigEnv(t)

	cfg := DefaultConfig()
	cfg.Perception.APIKey = "secret"

	var written []byte
	err := cfg.SaveToFile("ignored", func(_ string, data []byte, _ os.FileMode) error {
		written = data
		return nil
	})
	if err != nil {
		t.Fatalf("SaveToFile failed: %v", err)
	}
	if len(written) == 0 {
		t.Fatal("nothing written")
	}
	if strings.Contains(string(written), "secret") {
		t.Errorf("API key leaked into config file:\n%s", written)
	}
	if cfg.Perception.APIKey != "secret" {
		t.Error("SaveToFile must not mutate the receiver")
	}
}
