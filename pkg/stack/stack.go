package stack

type Stack[T any] struct {
	a []T
	l int
}

// NewStack creates a new stack instance
func NewStack[T any](elm ...T) *Stack[T] {
	stack := Stack[T]{
		a: make([]T, 0),
		l: 0,
	}

	for _, e := range elm {
		stack.l++
		stack.a = append(stack.a, e)
	}

	return &stack
}

// Push adds an element to the top of the stack
func (s *Stack[T]) Push(elm T) {
	s.l++
	s.a = append(s.a, elm)
}

// Pop removes and returns the top element of the stack
func (s *Stack[T]) Pop() T {
	var zero T
	if s.l < 1 {
		return zero
	}

	s.l--
	elm := s.a[s.l]
	s.a = s.a[:s.l]

	return elm
}

// Peek returns the top element of the stack without removing it
func (s *Stack[T]) Peek() T {
	var zero T
	if s.l < 1 {
		return zero
	}

	return s.a[s.l-1]
}

// Get the size of the stack
func (s *Stack[T]) Size() int {
	return s.l
}

// Array returns the underlying array of the stack
func (s *Stack[T]) Array() []T {
	return s.a
}
