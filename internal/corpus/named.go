package corpus

import (
	"fmt"
	"hash/fnv"
	"strings"
)

// Named is implemented by every corpus entity. The name is the entity's
// identity: equality, ordering and hashing are all defined on it.
type Named interface {
	Name() string
}

// CompareName orders an entity against other, which may be another entity or
// a bare name string. The result follows strings.Compare.
func CompareName(e Named, other any) (int, error) {
	name, err := nameOf(e, other)
	if err != nil {
		return 0, err
	}
	return strings.Compare(e.Name(), name), nil
}

// SameName reports whether an entity and other share a name. other may be an
// entity or a bare name string.
func SameName(e Named, other any) (bool, error) {
	name, err := nameOf(e, other)
	if err != nil {
		return false, err
	}
	return e.Name() == name, nil
}

// NameHash returns the FNV-1a hash of the entity's name, so entities key
// hash-based structures exactly the way their names do.
func NameHash(e Named) uint64 {
	h := fnv.New64a()
	h.Write([]byte(e.Name()))
	return h.Sum64()
}

func nameOf(e Named, other any) (string, error) {
	switch o := other.(type) {
	case Named:
		return o.Name(), nil
	case string:
		return o, nil
	default:
		return "", fmt.Errorf("%w: cannot compare %T with %T", ErrTypeMismatch, e, other)
	}
}
