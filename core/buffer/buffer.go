// Package buffer holds the byte accumulator used for child stdin, captured
// output and rendered reports.
package buffer

import (
	"errors"
	"fmt"
	"math"
)

// DefaultStep is the growth step used when none is given.
const DefaultStep = 64 * 1024

// ErrTooLarge is returned when an append would overflow the buffer's size.
var ErrTooLarge = errors.New("buffer: too large")

// Buffer is an append-only byte accumulator that grows in fixed steps.
//
// The content is always followed by a NUL byte inside the allocation so
// CString can hand it to C-style consumers without copying. The content itself
// may contain NUL bytes.
type Buffer struct {
	data []byte
	step int
}

// New creates an empty buffer with the given growth step.
func New(step int) *Buffer {
	if step <= 0 {
		step = DefaultStep
	}

	return &Buffer{
		data: make([]byte, 0, step+1),
		step: step,
	}
}

// FromBytes creates a buffer holding a copy of p.
func FromBytes(p []byte) *Buffer {
	b := New(DefaultStep)
	// A fresh buffer can't overflow on a slice that already exists.
	_ = b.Append(p)
	return b
}

// Append adds p to the end of the buffer.
func (b *Buffer) Append(p []byte) error {
	if len(p) == 0 {
		return nil
	}
	if b.step <= 0 {
		b.step = DefaultStep
	}

	used := len(b.data)
	if len(p) > math.MaxInt-used-b.step-1 {
		return ErrTooLarge
	}

	// Keep one byte past the content for the terminator.
	if used+len(p)+1 > cap(b.data) {
		size := ((used+len(p))/b.step + 1) * b.step
		grown := make([]byte, used, size+1)
		copy(grown, b.data)
		b.data = grown
	}

	b.data = append(b.data, p...)
	b.data[:len(b.data)+1][len(b.data)] = 0
	return nil
}

// Write implements io.Writer.
func (b *Buffer) Write(p []byte) (int, error) {
	if err := b.Append(p); err != nil {
		return 0, err
	}
	return len(p), nil
}

// WriteString appends s to the buffer.
func (b *Buffer) WriteString(s string) (int, error) {
	return b.Write([]byte(s))
}

// Appendf appends formatted text to the buffer.
func (b *Buffer) Appendf(format string, a ...interface{}) error {
	return b.Append([]byte(fmt.Sprintf(format, a...)))
}

// Reset discards the content but keeps the allocation.
func (b *Buffer) Reset() {
	if b.data == nil {
		return
	}
	b.data = b.data[:0]
	b.data[:1][0] = 0
}

// Bytes returns the content. The slice aliases the buffer until the next
// mutation.
func (b *Buffer) Bytes() []byte {
	if b == nil {
		return nil
	}
	return b.data
}

// CString returns the content followed by a NUL byte.
func (b *Buffer) CString() []byte {
	if b == nil || cap(b.data) == 0 {
		return []byte{0}
	}
	return b.data[:len(b.data)+1]
}

// String returns the content as a string.
func (b *Buffer) String() string {
	if b == nil {
		return ""
	}
	return string(b.data)
}

// Len returns the number of bytes held.
func (b *Buffer) Len() int {
	if b == nil {
		return 0
	}
	return len(b.data)
}

// Cap returns the number of content bytes the buffer can hold without growing.
func (b *Buffer) Cap() int {
	if b == nil || cap(b.data) == 0 {
		return 0
	}
	return cap(b.data) - 1
}

// Step returns the growth step.
func (b *Buffer) Step() int {
	return b.step
}
