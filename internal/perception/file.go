package perception

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/danieljhkim/roboplan/internal/scene"
)

var sidecarExts = []string{".scene.yaml", ".scene.yml", ".scene.json"}

// FileSceneParser reads a scene from disk instead of looking at the image.
// With Path set every image maps to that file; otherwise the parser looks
// for a sidecar next to the image, e.g. kitchen.jpg -> kitchen.scene.yaml.
type FileSceneParser struct {
	Path string
}

// ParseScene implements SceneParser.
func (p FileSceneParser) ParseScene(ctx context.Context, imagePath string) (*scene.Scene, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if p.Path != "" {
		return scene.LoadFile(p.Path)
	}
	for _, candidate := range SidecarPaths(imagePath) {
		if _, err := os.Stat(candidate); err == nil {
			return scene.LoadFile(candidate)
		}
	}
	return nil, fmt.Errorf("%w: no scene file next to %s (tried %s)",
		ErrNoScene, imagePath, strings.Join(SidecarPaths(imagePath), ", "))
}

// SidecarPaths lists the scene files consulted for an image, in order.
func SidecarPaths(imagePath string) []string {
	base := strings.TrimSuffix(imagePath, filepath.Ext(imagePath))
	out := make([]string, len(sidecarExts))
	for i, ext := range sidecarExts {
		out[i] = base + ext
	}
	return out
}
