package path

import (
	"strconv"
	"sync"
)

// Builder renders paths into a reusable byte buffer.
// Instances come from a sync.Pool; call Release when done.
type Builder struct {
	buf []byte
}

var builderPool = sync.Pool{
	New: func() any {
		return &Builder{buf: make([]byte, 0, 128)}
	},
}

// AcquireBuilder gets a Builder from the pool.
func AcquireBuilder() *Builder {
	b := builderPool.Get().(*Builder)
	b.Reset()
	return b
}

// Release returns the Builder to the pool.
func (b *Builder) Release() {
	if b == nil {
		return
	}
	// Don't keep oversized buffers around
	if cap(b.buf) <= 4096 {
		builderPool.Put(b)
	}
}

// Reset clears the buffer without deallocating.
func (b *Builder) Reset() {
	b.buf = b.buf[:0]
}

// Len returns the current length of the rendered path.
func (b *Builder) Len() int {
	return len(b.buf)
}

// WriteName appends a field name, with a leading dot if the buffer is not empty.
func (b *Builder) WriteName(name string) {
	if len(b.buf) > 0 {
		b.buf = append(b.buf, '.')
	}
	b.buf = append(b.buf, name...)
}

// WriteIndex appends a list index in brackets.
func (b *Builder) WriteIndex(index int) {
	b.buf = append(b.buf, '[')
	b.buf = strconv.AppendInt(b.buf, int64(index), 10)
	b.buf = append(b.buf, ']')
}

// WriteSegment appends a name and, when present, its index.
func (b *Builder) WriteSegment(s Segment) {
	b.WriteName(s.Name)
	if s.Index != NoIndex {
		b.WriteIndex(s.Index)
	}
}

// String returns the rendered path.
func (b *Builder) String() string {
	return string(b.buf)
}

// Join renders base followed by a child field name without building a Path.
func Join(base, name string) string {
	if base == "" {
		return name
	}
	b := AcquireBuilder()
	defer b.Release()
	b.buf = append(b.buf, base...)
	b.WriteName(name)
	return b.String()
}

// JoinIndex renders base followed by a list index.
func JoinIndex(base string, index int) string {
	b := AcquireBuilder()
	defer b.Release()
	b.buf = append(b.buf, base...)
	b.WriteIndex(index)
	return b.String()
}
