package core

// SharedCell holds a value that crosses the foreground/handler boundary.
// The value can only be reached from inside a critical section, so no
// context ever sees it half written.
//
// A cell is published once during startup, before the interrupt that
// uses it is unmasked, and lives for the rest of the program.
type SharedCell[T any] struct {
	value     T
	published bool
}

// Publish moves v into the cell. Publishing twice is a construction error
// and panics.
func (c *SharedCell[T]) Publish(v T) {
	WithExclusive(func(tok Token) {
		if c.published {
			panic(ErrAlreadyPublished)
		}
		c.value = v
		c.published = true
	})
}

// Published reports whether Publish has run
func (c *SharedCell[T]) Published() bool {
	return Exclusive(func(tok Token) bool {
		return c.published
	})
}

// With enters a critical section and hands f the contained value.
// The pointer must not be kept after f returns.
func (c *SharedCell[T]) With(f func(v *T)) {
	WithExclusive(func(tok Token) {
		c.Access(tok, f)
	})
}

// Access hands f the contained value using a section the caller already holds.
// It panics if the cell was never published.
func (c *SharedCell[T]) Access(tok Token, f func(v *T)) {
	if !c.published {
		panic(ErrNotPublished)
	}
	f(&c.value)
}

// TryAccess is Access for handler context: instead of panicking on an
// unpublished cell it reports false.
func (c *SharedCell[T]) TryAccess(tok Token, f func(v *T)) bool {
	if !c.published {
		return false
	}
	f(&c.value)
	return true
}

// Apply runs f on the cell's value inside a critical section and returns
// its result.
func Apply[T, R any](c *SharedCell[T], f func(v *T) R) R {
	return Exclusive(func(tok Token) R {
		if !c.published {
			panic(ErrNotPublished)
		}
		return f(&c.value)
	})
}
