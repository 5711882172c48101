package scene

import (
	"fmt"
	"sort"
	"strings"
)

// Store holds a project's scenes sorted by label.
type Store struct {
	scenes []*Scene
}

// NewStore takes ownership of scenes.
func NewStore(scenes []*Scene) *Store {
	s := &Store{scenes: scenes}
	s.sort()
	return s
}

func (s *Store) sort() {
	sort.SliceStable(s.scenes, func(i, j int) bool { return s.scenes[i].Label < s.scenes[j].Label })
}

// All returns the scenes in label order.
func (s *Store) All() []*Scene {
	return s.scenes
}

// Find looks a scene up by label, ignoring case.
func (s *Store) Find(label string) (*Scene, bool) {
	for _, sc := range s.scenes {
		if strings.EqualFold(sc.Label, label) {
			return sc, true
		}
	}
	return nil, false
}

// Add inserts sc, replacing any scene with the same label.
func (s *Store) Add(sc *Scene) {
	for i, existing := range s.scenes {
		if strings.EqualFold(existing.Label, sc.Label) {
			s.scenes[i] = sc
			return
		}
	}
	s.scenes = append(s.scenes, sc)
	s.sort()
}

// Delete removes a scene by label and reports whether it existed.
func (s *Store) Delete(label string) bool {
	for i, sc := range s.scenes {
		if strings.EqualFold(sc.Label, label) {
			s.scenes = append(s.scenes[:i], s.scenes[i+1:]...)
			return true
		}
	}
	return false
}

// MarkActive flags sc as the last active scene and clears the others.
func (s *Store) MarkActive(sc *Scene) {
	for _, other := range s.scenes {
		other.LastActive = other == sc
	}
}

// LastActive returns the most recently recalled scene.
func (s *Store) LastActive() (*Scene, bool) {
	for _, sc := range s.scenes {
		if sc.LastActive {
			return sc, true
		}
	}
	return nil, false
}

// NextLabel returns an unused "New Scene N" label.
func (s *Store) NextLabel() string {
	for n := len(s.scenes); ; n++ {
		label := fmt.Sprintf("New Scene %d", n)
		if _, taken := s.Find(label); !taken {
			return label
		}
	}
}
