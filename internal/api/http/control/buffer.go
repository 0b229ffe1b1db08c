package control

import (
	"errors"
	"fmt"
)

// ErrCapacity is matched by every CapacityError.
var ErrCapacity = errors.New("buffer capacity exceeded")

// CapacityError reports content that did not fit a fixed buffer.
type CapacityError struct {
	// Need is the length the content required.
	Need int
	// Capacity is the size of the buffer.
	Capacity int
}

// Error implements error.
func (e *CapacityError) Error() string {
	return fmt.Sprintf("need %d bytes, capacity %d", e.Need, e.Capacity)
}

// Is makes errors.Is(err, ErrCapacity) true.
func (e *CapacityError) Is(target error) bool {
	return target == ErrCapacity
}

// Buffer is a fixed-capacity byte buffer. Writes never grow it.
type Buffer struct {
	data []byte
	n    int
}

// NewBuffer allocates a buffer of the given capacity.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{data: make([]byte, capacity)}
}

// Reset empties the buffer.
func (b *Buffer) Reset() {
	b.n = 0
}

// Len returns the length of the valid content.
func (b *Buffer) Len() int {
	return b.n
}

// Cap returns the capacity.
func (b *Buffer) Cap() int {
	return len(b.data)
}

// Bytes returns the valid content. The slice aliases the buffer.
func (b *Buffer) Bytes() []byte {
	return b.data[:b.n]
}

// Load replaces the content with p, dropping whatever exceeds the capacity.
// It returns the number of bytes kept.
func (b *Buffer) Load(p []byte) int {
	b.n = copy(b.data, p)

	return b.n
}

// Write appends p whole or not at all.
func (b *Buffer) Write(p []byte) (int, error) {
	if b.n+len(p) > len(b.data) {
		return 0, &CapacityError{Need: b.n + len(p), Capacity: len(b.data)}
	}

	b.n += copy(b.data[b.n:], p)

	return len(p), nil
}
