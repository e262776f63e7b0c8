package scene

import "fmt"

// Catalog is the ordered, fixed set of scenes available during a run.
type Catalog struct {
	scenes []Scene
	byID   map[ID]int
}

// NewCatalog validates scenes and builds a catalog preserving their order.
func NewCatalog(scenes []Scene) (*Catalog, error) {
	if len(scenes) == 0 {
		return nil, fmt.Errorf("catalog needs at least one scene")
	}
	c := &Catalog{
		scenes: make([]Scene, 0, len(scenes)),
		byID:   make(map[ID]int, len(scenes)),
	}
	for _, s := range scenes {
		if err := s.Validate(); err != nil {
			return nil, err
		}
		if _, dup := c.byID[s.ID()]; dup {
			return nil, fmt.Errorf("duplicate scene id %q", s.ID())
		}
		c.byID[s.ID()] = len(c.scenes)
		c.scenes = append(c.scenes, s)
	}
	return c, nil
}

// All returns the scenes in configuration order.
func (c *Catalog) All() []Scene {
	return append([]Scene(nil), c.scenes...)
}

// Len returns the number of scenes.
func (c *Catalog) Len() int { return len(c.scenes) }

// Get looks up a scene by id.
func (c *Catalog) Get(id ID) (Scene, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Scene{}, false
	}
	return c.scenes[i], true
}

// At returns the scene at position i (0-based).
func (c *Catalog) At(i int) (Scene, bool) {
	if i < 0 || i >= len(c.scenes) {
		return Scene{}, false
	}
	return c.scenes[i], true
}

// Index returns the position of id, or -1.
func (c *Catalog) Index(id ID) int {
	i, ok := c.byID[id]
	if !ok {
		return -1
	}
	return i
}
