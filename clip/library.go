package clip

import "fmt"

// Library is an importer-provided collection of clips, indexed both by
// position and by name. It outlives any Player built against it.
type Library struct {
	clips   []Clip
	byName  map[string]int
}

// NewLibrary builds a Library from an already-decoded slice of clips. The
// slice is copied so the caller may reuse its backing array afterward.
//
// Parameters:
//   - clips: the clips to load, in the order they should be indexed
//
// Returns:
//   - *Library: the assembled library
//   - error: non-nil if any clip fails Clip.Validate, or if two clips share
//     a name
func NewLibrary(clips []Clip) (*Library, error) {
	lib := &Library{
		clips:  append([]Clip(nil), clips...),
		byName: make(map[string]int, len(clips)),
	}
	for i := range lib.clips {
		c := &lib.clips[i]
		if err := c.Validate(); err != nil {
			return nil, fmt.Errorf("library: clip %d: %w", i, err)
		}
		if c.Name == "" {
			continue
		}
		if _, exists := lib.byName[c.Name]; exists {
			return nil, fmt.Errorf("library: duplicate clip name %q", c.Name)
		}
		lib.byName[c.Name] = i
	}
	return lib, nil
}

// Len returns the number of clips in the library.
func (l *Library) Len() int { return len(l.clips) }

// Index returns the clip at position i.
//
// Returns:
//   - *Clip: the clip, or nil if i is out of range
func (l *Library) Index(i int) *Clip {
	if i < 0 || i >= len(l.clips) {
		return nil
	}
	return &l.clips[i]
}

// ByName looks up a clip's position by name.
//
// Returns:
//   - int: the clip's index
//   - bool: false if no clip with that name exists
func (l *Library) ByName(name string) (int, bool) {
	i, ok := l.byName[name]
	return i, ok
}
