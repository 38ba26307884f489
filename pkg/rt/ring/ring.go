package ring

import (
	"fmt"
	"sync"
)

// Ring is a single-producer/single-consumer circular buffer.
// The zero value is not usable; create instances with New.
type Ring[T any] struct {
	data []T
	mask uint32
	head uint32
	tail uint32
	lock sync.Mutex
}

// New creates a Ring with the given size. Size must be a power of two and
// at least 2; the usable capacity is size-1. An invalid size is a
// configuration mistake, not a runtime condition, so New panics.
func New[T any](size int) *Ring[T] {
	if size < 2 || size&(size-1) != 0 {
		panic(fmt.Sprintf("ring: size %d is not a power of two >= 2", size))
	}
	return &Ring[T]{
		data: make([]T, size),
		mask: uint32(size - 1),
	}
}

// Cap returns the usable capacity (one slot less than the backing size).
func (r *Ring[T]) Cap() int {
	return int(r.mask)
}

func (r *Ring[T]) lenNoGuard() uint32 {
	return (r.head - r.tail) & r.mask
}

func (r *Ring[T]) tryPutNoGuard(v T) bool {
	if r.lenNoGuard() == r.mask {
		return false
	}
	r.data[r.head] = v
	r.head = (r.head + 1) & r.mask
	return true
}

func (r *Ring[T]) putNoGuard(v T) {
	r.data[r.head] = v
	r.head = (r.head + 1) & r.mask
	// The full check must happen after advancing head: comparing before
	// would misread an empty buffer as full.
	if r.head == r.tail {
		r.tail = (r.tail + 1) & r.mask
	}
}

func (r *Ring[T]) getNoGuard() (v T, ok bool) {
	if r.head == r.tail {
		return v, false
	}
	v = r.data[r.tail]
	r.tail = (r.tail + 1) & r.mask
	return v, true
}

// TryPut appends v unless the buffer is full, in which case it returns
// false and the buffer is unchanged. Callers are expected to count
// rejections in their own overflow counter.
func (r *Ring[T]) TryPut(v T) bool {
	r.lock.Lock()
	ok := r.tryPutNoGuard(v)
	r.lock.Unlock()
	return ok
}

// Put appends v, silently discarding the oldest element if the buffer
// is full. It always succeeds.
func (r *Ring[T]) Put(v T) {
	r.lock.Lock()
	r.putNoGuard(v)
	r.lock.Unlock()
}

// Get removes and returns the oldest element.
func (r *Ring[T]) Get() (T, bool) {
	r.lock.Lock()
	v, ok := r.getNoGuard()
	r.lock.Unlock()
	return v, ok
}

// Len returns the number of stored elements.
func (r *Ring[T]) Len() int {
	r.lock.Lock()
	n := r.lenNoGuard()
	r.lock.Unlock()
	return int(n)
}

// Empty reports whether no elements are stored.
func (r *Ring[T]) Empty() bool {
	r.lock.Lock()
	empty := r.head == r.tail
	r.lock.Unlock()
	return empty
}

// Full reports whether the usable capacity is exhausted.
func (r *Ring[T]) Full() bool {
	r.lock.Lock()
	full := r.lenNoGuard() == r.mask
	r.lock.Unlock()
	return full
}

// Clear resets the indices. Stored values are left in place and become
// unreachable.
func (r *Ring[T]) Clear() {
	r.lock.Lock()
	r.head, r.tail = 0, 0
	r.lock.Unlock()
}

// TryPutFromISR is TryPut without the guard.
func (r *Ring[T]) TryPutFromISR(v T) bool {
	return r.tryPutNoGuard(v)
}

// PutFromISR is Put without the guard.
func (r *Ring[T]) PutFromISR(v T) {
	r.putNoGuard(v)
}

// GetFromISR is Get without the guard.
func (r *Ring[T]) GetFromISR() (T, bool) {
	return r.getNoGuard()
}

// LenFromISR is Len without the guard.
func (r *Ring[T]) LenFromISR() int {
	return int(r.lenNoGuard())
}

// EmptyFromISR is Empty without the guard.
func (r *Ring[T]) EmptyFromISR() bool {
	return r.head == r.tail
}

// FullFromISR is Full without the guard.
func (r *Ring[T]) FullFromISR() bool {
	return r.lenNoGuard() == r.mask
}

// ClearFromISR is Clear without the guard.
func (r *Ring[T]) ClearFromISR() {
	r.head, r.tail = 0, 0
}
