package domain

// Ref is a reference to another entity that is either a bare identifier or a
// fully loaded record. Resolution happens once at the read boundary; consumers
// downstream may assume Resolved and never have to guess a field's shape.
type Ref[T any] struct {
	id       string
	value    *T
	resolved bool
}

// UnresolvedRef creates a reference that carries only the identifier.
func UnresolvedRef[T any](id string) Ref[T] {
	return Ref[T]{id: id}
}

// ResolvedRef creates a reference carrying the loaded record.
func ResolvedRef[T any](id string, value *T) Ref[T] {
	return Ref[T]{id: id, value: value, resolved: true}
}

// ID returns the referenced identifier regardless of resolution state.
func (r Ref[T]) ID() string {
	return r.id
}

// Resolved reports whether the record has been loaded.
func (r Ref[T]) Resolved() bool {
	return r.resolved
}

// Value returns the loaded record, or nil with false when unresolved.
func (r Ref[T]) Value() (*T, bool) {
	if !r.resolved {
		return nil, false
	}

	return r.value, true
}
