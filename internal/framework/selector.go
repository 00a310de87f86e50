package framework

import "errors"

var (
	ErrEmpty     = errors.New("selector is empty")
	ErrNotMember = errors.New("not a member of the list")
)

// Selector is a circular cursor over a list it does not own. The list may
// grow after construction; the index always wraps modulo its length.
type Selector[T comparable] struct {
	items *[]T
	id    int
}

func NewSelector[T comparable](items *[]T) *Selector[T] {
	return &Selector[T]{items: items}
}

func (s *Selector[T]) list() []T {
	if s.items == nil {
		return nil
	}
	return *s.items
}

// Current returns the item at the cursor.
func (s *Selector[T]) Current() (T, error) {
	items := s.list()
	var zero T
	if len(items) == 0 {
		return zero, ErrEmpty
	}
	if s.id >= len(items) {
		s.id = wrap(s.id, len(items))
	}
	return items[s.id], nil
}

// Next advances the cursor, wrapping to the first item.
func (s *Selector[T]) Next() (T, error) { return s.Index(s.id + 1) }

// Prev retreats the cursor, wrapping to the last item.
func (s *Selector[T]) Prev() (T, error) { return s.Index(s.id - 1) }

// Select moves the cursor to item. When the list holds item more than once
// the cursor lands on the first occurrence.
func (s *Selector[T]) Select(item T) error {
	for i, candidate := range s.list() {
		if candidate == item {
			s.id = i
			return nil
		}
	}
	return ErrNotMember
}

// Index moves the cursor to i modulo the list length.
func (s *Selector[T]) Index(i int) (T, error) {
	items := s.list()
	var zero T
	if len(items) == 0 {
		return zero, ErrEmpty
	}
	s.id = wrap(i, len(items))
	return items[s.id], nil
}

// CurrentIndex returns the raw cursor position.
func (s *Selector[T]) CurrentIndex() int { return s.id }

func wrap(i, n int) int {
	i %= n
	if i < 0 {
		i += n
	}
	return i
}
