// Package arena allocates the zeroed, stable memory regions backing the
// collector's semi-spaces and root stack.
//
// The collector stores raw addresses into the regions as plain integer words,
// so a region's memory must never move for the life of the process. On
// unix-like systems the words come from an anonymous mmap, which the Go
// runtime neither scans nor relocates. Elsewhere a pinned Go allocation is
// used instead.
package arena

import "fmt"

// Region is one contiguous, 8-byte-aligned run of zeroed memory.
type Region struct {
	base uintptr
	size uint64
	free func() error
	// pin keeps a fallback Go allocation reachable so its words stay valid
	// while addresses into it circulate as raw integers.
	pin []byte
}

// New allocates a zeroed region of at least the given byte size, rounded up
// to a multiple of 8.
func New(bytes uint64) (*Region, error) {
	if bytes == 0 {
		return nil, fmt.Errorf("arena: zero-sized region")
	}
	bytes = roundUpWord(bytes)
	r, err := alloc(bytes)
	if err != nil {
		return nil, fmt.Errorf("arena: allocate %d bytes: %w", bytes, err)
	}
	return r, nil
}

// Base returns the address of the first byte. Always 8-byte aligned.
func (r *Region) Base() uintptr {
	return r.base
}

// End returns the address one past the last byte.
func (r *Region) End() uintptr {
	return r.base + uintptr(r.size)
}

// Size returns the region's byte size, a multiple of 8.
func (r *Region) Size() uint64 {
	return r.size
}

// Release returns the region's memory to the system. The region's addresses
// must not be used afterwards.
func (r *Region) Release() error {
	if r.free == nil {
		r.pin = nil
		return nil
	}
	f := r.free
	r.free = nil
	return f()
}

func roundUpWord(n uint64) uint64 {
	return (n + 7) &^ 7
}
