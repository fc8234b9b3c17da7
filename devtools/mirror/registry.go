package mirror

import "sync"

// Class is the stand-in for a remote constructor. It carries only a name,
// used to display reconstructed instances.
type Class struct {
	Name string
}

// ClassRegistry caches one Class per class name. Entries are created on
// first use and never removed.
type ClassRegistry struct {
	mu      sync.Mutex
	classes map[string]*Class
}

// DefaultRegistry backs Unmirror for the lifetime of the process.
var DefaultRegistry = NewClassRegistry()

func NewClassRegistry() *ClassRegistry {
	return &ClassRegistry{classes: make(map[string]*Class)}
}

// Class returns the cached Class for name, creating it if needed.
func (r *ClassRegistry) Class(name string) *Class {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.classes[name]
	if !ok {
		c = &Class{Name: name}
		r.classes[name] = c
	}
	return c
}

// Lookup returns the Class for name without creating it.
func (r *ClassRegistry) Lookup(name string) (*Class, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.classes[name]
	return c, ok
}

// Len returns the number of classes seen so far.
func (r *ClassRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.classes)
}

// Instance returns a new empty object of class className. An empty name or
// "Object" gives a plain object and leaves the registry untouched.
func (r *ClassRegistry) Instance(className string) *Object {
	if className == "" || className == "Object" {
		return &Object{}
	}
	return &Object{Class: r.Class(className)}
}
