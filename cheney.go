// Package cheney is a stop-the-world, semi-space copying garbage collector
// for a tuple heap, meant to be linked against code emitted by an
// ahead-of-time compiler.
//
// The compiled mutator bump-allocates fixed-shape tuples of 64-bit words into
// the active space through FreePtr and spills every live tuple pointer onto
// an explicit root stack before entering the collector. When an allocation
// would overrun FromspaceEnd, the mutator calls Collect; the collector
// evacuates the reachable tuples into the shadow space breadth-first, swaps
// the two spaces, and returns with FreePtr republished.
//
// The exported package-level words (FreePtr, FromspaceBegin, FromspaceEnd,
// RootstackBegin) are the ABI the mutator compiles against. Emitted code
// indexes them by symbol, so they stay named, externally visible locations
// rather than fields behind an opaque context.
package cheney

import (
	"fmt"
	"time"

	"github.com/tessellabs/cheney/api"
	"github.com/tessellabs/cheney/internal/heap"
	"github.com/tessellabs/cheney/internal/version"
)

// The mutator ABI. The collector publishes these at Initialize and after
// every Collect; between collections the mutator bumps FreePtr itself.
var (
	// FreePtr is the address the next bump allocation places a tag at.
	FreePtr uintptr
	// FromspaceBegin is the first address of the active space.
	FromspaceBegin uintptr
	// FromspaceEnd is one past the last address of the active space.
	FromspaceEnd uintptr
	// RootstackBegin is the base of the root stack.
	RootstackBegin uintptr
)

var (
	active   *heap.Heap
	listener api.CollectionListener
)

// Initialize allocates the root stack and the two semi-spaces with the given
// byte sizes, both rounded up to a multiple of 8, and publishes the ABI
// words. Call it once before any allocation; calling it again tears down the
// previous regions and starts over.
func Initialize(rootStackBytes, heapBytes uint64) error {
	return InitializeWithConfig(NewRuntimeConfig().
		WithRootStackSize(rootStackBytes).
		WithHeapSize(heapBytes))
}

// InitializeWithConfig is Initialize with explicit configuration.
func InitializeWithConfig(config *RuntimeConfig) error {
	if err := config.validate(); err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	h, err := heap.New(config.rootStackBytes, config.heapBytes)
	if err != nil {
		return fmt.Errorf("initialize: %w", err)
	}
	if active != nil {
		_ = active.Close()
	}
	active = h
	listener = config.listener

	FromspaceBegin, FromspaceEnd = h.FromSpace()
	RootstackBegin, _ = h.RootStack()
	FreePtr = FromspaceBegin
	return nil
}

// Collect runs one full collection and returns what it did.
//
// rootStackTop is one past the last live root slot; everything at or above it
// is dead. bytesNeeded is the size of the allocation that could not be
// satisfied; if the collection does not free at least that much, the run
// faults with api.FaultHeapExhausted.
//
// On return the spaces have swapped: FromspaceBegin/FromspaceEnd bound the
// new active space, FreePtr points one past the surviving tuples, and every
// live root slot holds its referent's new address.
//
// Any invariant violation panics with *api.Fault; see that type for why no
// fault is recoverable.
func Collect(rootStackTop uintptr, bytesNeeded uint64) api.CollectionInfo {
	h := runtime()
	begin := time.Now()

	prevLive := uint64(FreePtr-FromspaceBegin) / api.WordSize
	freePtr, info := h.Collect(rootStackTop, bytesNeeded)

	FromspaceBegin, FromspaceEnd = h.FromSpace()
	FreePtr = freePtr

	info.Duration = time.Since(begin)
	if prevLive > info.WordsLive {
		info.WordsReclaimed = prevLive - info.WordsLive
	}
	if listener != nil {
		listener.AfterCollection(info)
	}
	return info
}

// Alloc bump-allocates one tuple in the active space the way emitted mutator
// code does: tag first, then the elements, FreePtr advanced past them. It
// exists for harnesses and tests standing in for the compiler; it never
// collects, so the caller ensures room the same way the mutator does.
//
// The element count must match the tag. Running out of space faults with
// api.FaultHeapExhausted: a real mutator would have collected first.
func Alloc(tag api.Tag, elems ...uint64) uintptr {
	runtime()
	if uint64(len(elems)) != tag.Length() {
		panic("BUG: Alloc with element count not matching the tag")
	}
	bytes := tag.Words() * api.WordSize
	if FreePtr+uintptr(bytes) > FromspaceEnd {
		panic(&api.Fault{
			Kind:   api.FaultHeapExhausted,
			Addr:   FreePtr,
			Detail: "bump allocation past the active space; collect first",
		})
	}
	addr := FreePtr
	heap.StoreWord(addr, uint64(tag))
	for k, e := range elems {
		heap.StoreWord(addr+uintptr((k+1)*api.WordSize), e)
	}
	FreePtr = addr + uintptr(bytes)
	return addr
}

// PushRoot stores a tuple address (or api.Null) into the root slot at top and
// returns the new top, the way a mutator spills a live pointer at a
// safepoint.
func PushRoot(top, addr uintptr) uintptr {
	h := runtime()
	begin, end := h.RootStack()
	if top < begin || top >= end {
		panic("BUG: PushRoot outside the root stack")
	}
	heap.StoreWord(top, uint64(addr))
	return top + api.WordSize
}

// Word reads the heap slot at addr.
func Word(addr uintptr) uint64 {
	return heap.LoadWord(addr)
}

// SetWord writes the heap slot at addr, the way emitted code mutates a tuple
// element in place.
func SetWord(addr uintptr, v uint64) {
	heap.StoreWord(addr, v)
}

// TagAt reads the tag word of the tuple at addr.
func TagAt(addr uintptr) api.Tag {
	return api.Tag(heap.LoadWord(addr))
}

// Elem reads element k of the tuple at addr.
func Elem(addr uintptr, k uint64) uint64 {
	return heap.LoadWord(addr + uintptr((k+1)*api.WordSize))
}

// SetElem writes element k of the tuple at addr.
func SetElem(addr uintptr, k, v uint64) {
	heap.StoreWord(addr+uintptr((k+1)*api.WordSize), v)
}

// WalkHeap visits each allocated tuple in the active space in address order
// until fn returns false, faulting on any malformed tag. After a collection
// this is exactly the reachable set in evacuation order.
func WalkHeap(fn func(addr uintptr, tag api.Tag) bool) {
	runtime().Walk(FreePtr, fn)
}

// Version returns this module's version, or "dev" when built from source.
func Version() string {
	return version.Get()
}

func runtime() *heap.Heap {
	if active == nil {
		panic("BUG: collector used before Initialize")
	}
	return active
}
