package perception

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/danieljhkim/roboplan/internal/scene"
)

// CachedSceneParser memoizes scenes by image content, so the same photo
// under a different path is not sent to the model twice. Cached scenes are
// shared between callers and must not be mutated.
type CachedSceneParser struct {
	next     SceneParser
	cache    *lru.Cache[string, *scene.Scene]
	readFile func(string) ([]byte, error)
}

// NewCachedSceneParser wraps next with an LRU cache of the given size.
func NewCachedSceneParser(next SceneParser, size int) (*CachedSceneParser, error) {
	cache, err := lru.New[string, *scene.Scene](size)
	if err != nil {
		return nil, fmt.Errorf("create scene cache: %w", err)
	}
	return &CachedSceneParser{next: next, cache: cache, readFile: os.ReadFile}, nil
}

// ParseScene implements SceneParser.
func (c *CachedSceneParser) ParseScene(ctx context.Context, imagePath string) (*scene.Scene, error) {
	data, err := c.readFile(imagePath)
	if err != nil {
		return nil, fmt.Errorf("read image: %w", err)
	}
	sum := sha256.Sum256(data)
	key := hex.EncodeToString(sum[:])

	if sc, ok := c.cache.Get(key); ok {
		return sc, nil
	}
	sc, err := c.next.ParseScene(ctx, imagePath)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, sc)
	return sc, nil
}

// Len reports the number of cached scenes.
func (c *CachedSceneParser) Len() int {
	return c.cache.Len()
}
