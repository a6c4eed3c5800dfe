package physics2d

/// GrowableStack is a LIFO used by tree traversal and island search.
/// The backing slice is kept between uses so steady-state pushes do not allocate.
type GrowableStack[T any] struct {
	items []T
}

func NewGrowableStack[T any](capacity int) *GrowableStack[T] {
	return &GrowableStack[T]{
		items: make([]T, 0, capacity),
	}
}

// Return the stack's length
func (s *GrowableStack[T]) Count() int {
	return len(s.items)
}

// Push a new element onto the stack
func (s *GrowableStack[T]) Push(value T) {
	s.items = append(s.items, value)
}

// Remove the top element from the stack and return its value.
// ok is false when the stack is empty.
func (s *GrowableStack[T]) Pop() (value T, ok bool) {
	n := len(s.items)
	if n == 0 {
		return value, false
	}
	value = s.items[n-1]
	var zero T
	s.items[n-1] = zero
	s.items = s.items[:n-1]
	return value, true
}

func (s *GrowableStack[T]) Reset() {
	var zero T
	for i := range s.items {
		s.items[i] = zero
	}
	s.items = s.items[:0]
}
