package heap

import (
	"unsafe"

	"github.com/tessellabs/cheney/api"
)

// LoadWord reads the 64-bit slot at addr.
func LoadWord(addr uintptr) uint64 {
	return *(*uint64)(unsafe.Pointer(addr))
}

// StoreWord writes the 64-bit slot at addr.
func StoreWord(addr uintptr, v uint64) {
	*(*uint64)(unsafe.Pointer(addr)) = v
}

// copyWords copies n slots from src to dst. The spaces never overlap.
func copyWords(dst, src uintptr, n uint64) {
	copy(unsafe.Slice((*uint64)(unsafe.Pointer(dst)), n),
		unsafe.Slice((*uint64)(unsafe.Pointer(src)), n))
}

// fault raises the terminal error for a violated collector invariant. The
// heap may be mid-evacuation at this point, so there is no recovery path; a
// linking driver terminates the process.
func fault(kind api.FaultKind, addr uintptr, detail string) {
	panic(&api.Fault{Kind: kind, Addr: addr, Detail: detail})
}
