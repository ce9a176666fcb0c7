package device

import (
	"fmt"
	"sync"
	"unsafe"
)

type allocation[E any] struct {
	d     *Device
	bytes int64

	once sync.Once
	data []E
}

// Buffer is a region of device memory holding elements of type E. Views
// returned by View share the allocation of their parent.
type Buffer[E any] struct {
	alloc *allocation[E]
	off   int
	n     int
}

// Alloc reserves n elements on d. The contents are zeroed.
func Alloc[E any](d *Device, n int) (*Buffer[E], error) {
	if n < 0 {
		return nil, newError(ErrorInvalidValue, "alloc", "negative length %d", n)
	}

	var zero E
	bytes := int64(n) * int64(unsafe.Sizeof(zero))
	if err := d.reserve(bytes); err != nil {
		return nil, err
	}

	return &Buffer[E]{
		alloc: &allocation[E]{d: d, bytes: bytes, data: make([]E, n)},
		n:     n,
	}, nil
}

func (b *Buffer[E]) Len() int {
	return b.n
}

func (b *Buffer[E]) Device() *Device {
	return b.alloc.d
}

// Data exposes the region to kernels. It must only be touched from work
// enqueued on a stream.
func (b *Buffer[E]) Data() []E {
	return b.alloc.data[b.off : b.off+b.n : b.off+b.n]
}

// View returns the sub-region [off, off+n) of b.
func (b *Buffer[E]) View(off, n int) *Buffer[E] {
	if off < 0 || n < 0 || off+n > b.n {
		panic(fmt.Sprintf("device: view [%d, %d) out of buffer of length %d", off, off+n, b.n))
	}

	return &Buffer[E]{alloc: b.alloc, off: b.off + off, n: n}
}

// Overlaps reports whether b and o share at least one element.
func (b *Buffer[E]) Overlaps(o *Buffer[E]) bool {
	if b.alloc != o.alloc || b.n == 0 || o.n == 0 {
		return false
	}

	return b.off < o.off+o.n && o.off < b.off+b.n
}

// Same reports whether b and o are exactly the same region.
func (b *Buffer[E]) Same(o *Buffer[E]) bool {
	return b.alloc == o.alloc && b.off == o.off && b.n == o.n
}

// Free releases the whole allocation, including every view of it. Further
// calls are no-ops.
func (b *Buffer[E]) Free() {
	b.alloc.once.Do(func() {
		b.alloc.data = nil
		b.alloc.d.release(b.alloc.bytes)
	})
}
