package service

// Cursor is a bounded forward/back position over a fixed list.
// The index ranges over [0, len(items)]; len(items) is the End marker.
type Cursor[T any] struct {
	items []T
	index int
}

// NewCursor creates a cursor positioned at the first item.
func NewCursor[T any](items []T) *Cursor[T] {
	return &Cursor[T]{items: items}
}

// Current returns the item under the cursor, or false at End.
func (c *Cursor[T]) Current() (T, bool) {
	if c.index >= len(c.items) {
		var zero T
		return zero, false
	}
	return c.items[c.index], true
}

// Next advances one item. Advancing from the last item reaches End;
// advancing at End stays there.
func (c *Cursor[T]) Next() (T, bool) {
	if c.index < len(c.items) {
		c.index++
	}
	return c.Current()
}

// Prev steps back one item. At the first item it is a no-op.
func (c *Cursor[T]) Prev() (T, bool) {
	if c.index > 0 {
		c.index--
	}
	return c.Current()
}

// Reset rewinds to the first item.
func (c *Cursor[T]) Reset() {
	c.index = 0
}

// Index is the current position; it equals Len at End.
func (c *Cursor[T]) Index() int {
	return c.index
}

func (c *Cursor[T]) Len() int {
	return len(c.items)
}
