// Package heap owns the collector's two semi-spaces and root stack and runs
// the stop-the-world Cheney collection over them.
//
// All raw heap dereferencing in the module happens here. Outside this package
// the heap is opaque: callers see addresses and decoded api.Tag values only.
package heap

import (
	"fmt"

	"github.com/tessellabs/cheney/internal/arena"
)

// Heap is the collector's view of the mutator's world: the active from-space,
// the shadow to-space, and the root stack.
type Heap struct {
	fromBegin, fromEnd uintptr
	toBegin, toEnd     uintptr
	rootBegin, rootEnd uintptr

	regions []*arena.Region
}

// New allocates the root stack and the two equally sized spaces, all zeroed,
// with byte sizes rounded up to a multiple of 8. The spaces are equal so that
// any live set that fit before a collection also fits after.
func New(rootStackBytes, heapBytes uint64) (*Heap, error) {
	h := &Heap{}
	root, err := h.newRegion(rootStackBytes)
	if err != nil {
		return nil, fmt.Errorf("root stack: %w", err)
	}
	from, err := h.newRegion(heapBytes)
	if err != nil {
		return nil, fmt.Errorf("from-space: %w", err)
	}
	to, err := h.newRegion(heapBytes)
	if err != nil {
		return nil, fmt.Errorf("to-space: %w", err)
	}
	h.rootBegin, h.rootEnd = root.Base(), root.End()
	h.fromBegin, h.fromEnd = from.Base(), from.End()
	h.toBegin, h.toEnd = to.Base(), to.End()
	return h, nil
}

func (h *Heap) newRegion(bytes uint64) (*arena.Region, error) {
	r, err := arena.New(bytes)
	if err != nil {
		h.Close()
		return nil, err
	}
	h.regions = append(h.regions, r)
	return r, nil
}

// FromSpace returns the bounds of the active space.
func (h *Heap) FromSpace() (begin, end uintptr) {
	return h.fromBegin, h.fromEnd
}

// RootStack returns the bounds of the root stack.
func (h *Heap) RootStack() (begin, end uintptr) {
	return h.rootBegin, h.rootEnd
}

// Close releases the backing regions. Only tests and re-initialization call
// this; in a linked program the regions live until process exit.
func (h *Heap) Close() error {
	var firstErr error
	for _, r := range h.regions {
		if err := r.Release(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	h.regions = nil
	return firstErr
}
