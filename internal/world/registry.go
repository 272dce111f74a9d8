package world

import (
	"errors"
	"fmt"
	"sort"

	"github.com/miniquest/miniquest/internal/geom"
)

// ErrUnknownType reports a type name that has no registered factory.
var ErrUnknownType = errors.New("world: unknown entity type")

// CreatureFactory builds a creature at its spawn anchor.
type CreatureFactory func(id EntityID, spawn SpawnInfo) Combatant

// ObjectFactory builds a game object filling the authored rect.
type ObjectFactory func(id EntityID, r geom.Rect) GameObject

type creatureEntry struct {
	kind  Kind
	build CreatureFactory
}

// ObjectSpec describes a registered game object type.
type ObjectSpec struct {
	New ObjectFactory
	// Scatter places the object at a random free spot instead of where it
	// was authored.
	Scatter bool
}

// Registry maps type names found in map data to constructors. It is filled
// once at startup and read-only afterwards.
type Registry struct {
	creatures map[string]creatureEntry
	objects   map[string]ObjectSpec
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		creatures: make(map[string]creatureEntry),
		objects:   make(map[string]ObjectSpec),
	}
}

// RegisterCreature adds a creature type. It panics on a duplicate name.
func (r *Registry) RegisterCreature(name string, kind Kind, f CreatureFactory) {
	if _, dup := r.creatures[name]; dup {
		panic("world: duplicate creature type " + name)
	}
	r.creatures[name] = creatureEntry{kind: kind, build: f}
}

// RegisterObject adds a game object type. It panics on a duplicate name.
func (r *Registry) RegisterObject(name string, spec ObjectSpec) {
	if _, dup := r.objects[name]; dup {
		panic("world: duplicate object type " + name)
	}
	r.objects[name] = spec
}

// NewCreature builds a registered creature and reports its kind.
func (r *Registry) NewCreature(name string, id EntityID, spawn SpawnInfo) (Combatant, Kind, error) {
	e, ok := r.creatures[name]
	if !ok {
		return nil, 0, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	return e.build(id, spawn), e.kind, nil
}

// KindOf returns the kind of a registered creature type.
func (r *Registry) KindOf(name string) (Kind, bool) {
	e, ok := r.creatures[name]
	return e.kind, ok
}

// Object returns the spec of a registered object type.
func (r *Registry) Object(name string) (ObjectSpec, error) {
	spec, ok := r.objects[name]
	if !ok {
		return ObjectSpec{}, fmt.Errorf("%w: %q", ErrUnknownType, name)
	}
	return spec, nil
}

// Names lists every registered type name, sorted.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.creatures)+len(r.objects))
	for n := range r.creatures {
		names = append(names, n)
	}
	for n := range r.objects {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
