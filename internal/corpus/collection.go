package corpus

import "fmt"

// Collection is an insertion-ordered set of entities keyed by name. Adding
// under an existing name replaces the stored entity and keeps its original
// position. Names must stay stable while an entity is stored; operations
// that rename (speaker reassignment) remove and re-add instead.
type Collection[T Named] struct {
	byName map[string]T
	order  []string
}

func NewCollection[T Named]() *Collection[T] {
	return &Collection[T]{byName: make(map[string]T)}
}

// Add inserts or replaces the entity under its current name.
func (c *Collection[T]) Add(item T) {
	name := item.Name()
	if _, ok := c.byName[name]; !ok {
		c.order = append(c.order, name)
	}
	c.byName[name] = item
}

// Get returns the entity stored under name.
func (c *Collection[T]) Get(name string) (T, error) {
	item, ok := c.byName[name]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return item, nil
}

// Remove deletes the entity stored under name.
func (c *Collection[T]) Remove(name string) error {
	if _, ok := c.byName[name]; !ok {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	delete(c.byName, name)
	for i, n := range c.order {
		if n == name {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
	return nil
}

// Contains reports membership. item may be an entity or a bare name string;
// anything else is never a member.
func (c *Collection[T]) Contains(item any) bool {
	switch v := item.(type) {
	case string:
		_, ok := c.byName[v]
		return ok
	case Named:
		_, ok := c.byName[v.Name()]
		return ok
	default:
		return false
	}
}

// Update adds every entity from other, replacing same-named entries.
func (c *Collection[T]) Update(other *Collection[T]) {
	if other == nil {
		return
	}
	for _, name := range other.order {
		c.Add(other.byName[name])
	}
}

// UpdateItems adds the given entities, replacing same-named entries.
func (c *Collection[T]) UpdateItems(items ...T) {
	for _, item := range items {
		c.Add(item)
	}
}

// All returns the entities in insertion order.
func (c *Collection[T]) All() []T {
	out := make([]T, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.byName[name])
	}
	return out
}

// Names returns the stored names in insertion order.
func (c *Collection[T]) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

func (c *Collection[T]) Len() int { return len(c.byName) }

func (c *Collection[T]) Empty() bool { return len(c.byName) == 0 }
