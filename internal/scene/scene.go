// Package scene holds the structured description of an environment that a
// planning cycle runs against: the objects and locations a perception
// collaborator detected.
//
// A Scene is treated as immutable once a planning cycle starts. Names are the
// only identity: every Object and Location has a name that is unique across
// both kinds.
package scene

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound indicates a name matches no entity in the scene.
	ErrNotFound = errors.New("not found in scene")

	// ErrAmbiguous indicates a name matches more than one entity.
	ErrAmbiguous = errors.New("ambiguous reference")

	// ErrInvalidScene indicates the scene failed structural validation.
	ErrInvalidScene = errors.New("invalid scene")
)

// Relation describes how an object sits at its location.
type Relation string

const (
	RelationNone   Relation = ""
	RelationOn     Relation = "on"
	RelationInside Relation = "inside"
)

// Object is a detected physical object.
type Object struct {
	// Name is the label, unique within the scene (e.g. "cup")
	Name string `json:"name" yaml:"name"`

	// Type is an optional category (e.g. "cabinet")
	Type string `json:"type,omitempty" yaml:"type,omitempty"`

	// Location is the name of the place the object is at. It may name a
	// Location, another Object, or a region perception did not enumerate.
	Location string `json:"location,omitempty" yaml:"location,omitempty"`

	// Relation is how the object relates to Location
	Relation Relation `json:"relation,omitempty" yaml:"relation,omitempty"`

	// Attributes are free-form properties (fragile, color, material)
	Attributes map[string]string `json:"attributes,omitempty" yaml:"attributes,omitempty"`
}

// HasAttribute reports whether the object carries the attribute key.
func (o Object) HasAttribute(key string) bool {
	_, ok := o.Attributes[key]
	return ok
}

// Location is a named region, possibly nested in a parent region.
type Location struct {
	Name   string `json:"name" yaml:"name"`
	Parent string `json:"parent,omitempty" yaml:"parent,omitempty"`
}

// Scene is the set of objects and locations for one planning cycle.
type Scene struct {
	Objects   []Object   `json:"objects" yaml:"objects"`
	Locations []Location `json:"locations,omitempty" yaml:"locations,omitempty"`
}

// Kind distinguishes the two entity kinds.
type Kind string

const (
	KindObject   Kind = "object"
	KindLocation Kind = "location"
)

// Entity is a resolved reference to an Object or a Location.
type Entity struct {
	Kind Kind
	Name string
}

// Validate checks names are present and unique, relations are known, and
// containment (object locations and location parents) has no cycles.
func (s *Scene) Validate() error {
	seen := make(map[string]Kind, len(s.Objects)+len(s.Locations))
	for _, o := range s.Objects {
		if strings.TrimSpace(o.Name) == "" {
			return fmt.Errorf("%w: object with empty name", ErrInvalidScene)
		}
		if _, dup := seen[o.Name]; dup {
			return fmt.Errorf("%w: duplicate name %q", ErrInvalidScene, o.Name)
		}
		switch o.Relation {
		case RelationNone, RelationOn, RelationInside:
		default:
			return fmt.Errorf("%w: object %q has unknown relation %q", ErrInvalidScene, o.Name, o.Relation)
		}
		seen[o.Name] = KindObject
	}
	for _, l := range s.Locations {
		if strings.TrimSpace(l.Name) == "" {
			return fmt.Errorf("%w: location with empty name", ErrInvalidScene)
		}
		if _, dup := seen[l.Name]; dup {
			return fmt.Errorf("%w: duplicate name %q", ErrInvalidScene, l.Name)
		}
		seen[l.Name] = KindLocation
	}

	for name := range seen {
		if cycle := s.containmentCycle(name); cycle != nil {
			return fmt.Errorf("%w: containment cycle %s", ErrInvalidScene, strings.Join(cycle, " -> "))
		}
	}
	return nil
}

// containmentCycle walks the container chain from name and returns the
// cycle if the walk revisits a name.
func (s *Scene) containmentCycle(name string) []string {
	visited := map[string]bool{}
	path := []string{}
	cur := name
	for cur != "" {
		if visited[cur] {
			return append(path, cur)
		}
		visited[cur] = true
		path = append(path, cur)
		cur = s.container(cur)
	}
	return nil
}

// container returns the immediate container of name, or "".
func (s *Scene) container(name string) string {
	for _, o := range s.Objects {
		if o.Name == name {
			return o.Location
		}
	}
	for _, l := range s.Locations {
		if l.Name == name {
			return l.Parent
		}
	}
	return ""
}

// Lookup resolves name to exactly one entity. An exact match wins; otherwise
// a case-insensitive match is accepted if it is unique.
func (s *Scene) Lookup(name string) (Entity, error) {
	if s == nil {
		return Entity{}, fmt.Errorf("%q: %w", name, ErrNotFound)
	}
	for _, o := range s.Objects {
		if o.Name == name {
			return Entity{Kind: KindObject, Name: o.Name}, nil
		}
	}
	for _, l := range s.Locations {
		if l.Name == name {
			return Entity{Kind: KindLocation, Name: l.Name}, nil
		}
	}

	want := strings.TrimSpace(name)
	var matches []Entity
	for _, o := range s.Objects {
		if strings.EqualFold(o.Name, want) {
			matches = append(matches, Entity{Kind: KindObject, Name: o.Name})
		}
	}
	for _, l := range s.Locations {
		if strings.EqualFold(l.Name, want) {
			matches = append(matches, Entity{Kind: KindLocation, Name: l.Name})
		}
	}

	switch len(matches) {
	case 0:
		return Entity{}, fmt.Errorf("%q: %w", name, ErrNotFound)
	case 1:
		return matches[0], nil
	default:
		names := make([]string, len(matches))
		for i, m := range matches {
			names[i] = m.Name
		}
		return Entity{}, fmt.Errorf("%q matches %s: %w", name, strings.Join(names, ", "), ErrAmbiguous)
	}
}

// Object returns the object with exactly this name.
func (s *Scene) Object(name string) (Object, bool) {
	if s == nil {
		return Object{}, false
	}
	for _, o := range s.Objects {
		if o.Name == name {
			return o, true
		}
	}
	return Object{}, false
}

// Has reports whether an entity with exactly this name exists.
func (s *Scene) Has(name string) bool {
	if s == nil {
		return false
	}
	for _, o := range s.Objects {
		if o.Name == name {
			return true
		}
	}
	for _, l := range s.Locations {
		if l.Name == name {
			return true
		}
	}
	return false
}

// IsAt reports whether object is at place, directly or through any enclosing
// container (a cup on a table in the kitchen is at the kitchen).
func (s *Scene) IsAt(object, place string) bool {
	if s == nil || object == place {
		return false
	}
	visited := map[string]bool{object: true}
	cur := s.container(object)
	for cur != "" && !visited[cur] {
		if cur == place {
			return true
		}
		visited[cur] = true
		cur = s.container(cur)
	}
	return false
}

// Names returns every entity name, objects first, in declaration order.
func (s *Scene) Names() []string {
	if s == nil {
		return nil
	}
	names := make([]string, 0, len(s.Objects)+len(s.Locations))
	for _, o := range s.Objects {
		names = append(names, o.Name)
	}
	for _, l := range s.Locations {
		names = append(names, l.Name)
	}
	return names
}
