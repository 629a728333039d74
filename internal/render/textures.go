package render

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/aquarium/internal/sprite"
)

type textureEntry struct {
	img   *ebiten.Image
	frame uint64
}

// textureCache uploads sprite images to the GPU on first draw and releases
// them once their fish has left the pool. Only the render goroutine uses it.
type textureCache struct {
	entries map[*sprite.Sprite]*textureEntry
	frame   uint64
}

func newTextureCache() *textureCache {
	return &textureCache{entries: make(map[*sprite.Sprite]*textureEntry)}
}

func (c *textureCache) beginFrame() {
	c.frame++
}

func (c *textureCache) get(s *sprite.Sprite) *ebiten.Image {
	if s == nil || s.Image == nil {
		return nil
	}
	e, ok := c.entries[s]
	if !ok {
		e = &textureEntry{img: ebiten.NewImageFromImage(s.Image)}
		c.entries[s] = e
	}
	e.frame = c.frame
	return e.img
}

// endFrame deallocates textures not drawn this frame.
func (c *textureCache) endFrame() {
	for s, e := range c.entries {
		if e.frame != c.frame {
			e.img.Deallocate()
			delete(c.entries, s)
		}
	}
}

func (c *textureCache) len() int {
	return len(c.entries)
}
