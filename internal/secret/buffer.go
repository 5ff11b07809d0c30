// Package secret holds key material in memory that is kept off the Go heap,
// locked against swapping and wiped on Close.
package secret

import (
	"errors"
	"fmt"
	"sync"
)

// ErrClosed is returned when reading a buffer after Close.
var ErrClosed = errors.New("secret: buffer is closed")

// Buffer is a fixed-size region of protected memory. A Buffer must not be
// copied after creation.
type Buffer struct {
	mu     sync.Mutex
	data   []byte
	closed bool
}

// NewFromBytes copies source into a protected region and zeroes source.
func NewFromBytes(source []byte) (*Buffer, error) {
	if len(source) == 0 {
		return nil, fmt.Errorf("secret: cannot create buffer from empty source")
	}

	data, err := allocate(len(source))
	if err != nil {
		return nil, err
	}

	copy(data, source)
	wipe(source)

	return &Buffer{data: data}, nil
}

// Copy returns a heap copy of the contents. Callers should wipe the copy
// once they are done with it.
func (b *Buffer) Copy() ([]byte, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}

	out := make([]byte, len(b.data))
	copy(out, b.data)
	return out, nil
}

// Len returns the size of the secret.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.data)
}

// Close zeroes and releases the memory. Close is idempotent.
func (b *Buffer) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil
	}
	b.closed = true

	wipe(b.data)
	err := release(b.data)
	b.data = nil
	return err
}

// Wipe zeroes a heap slice in place.
func Wipe(data []byte) {
	wipe(data)
}

func wipe(data []byte) {
	for i := range data {
		data[i] = 0
	}
}
