package heap

import "github.com/tessellabs/cheney/api"

// Walk visits every tuple in the allocated prefix of the active space, in
// address order, until fn returns false. freePtr bounds the walk; it is
// passed in because the mutator owns the published free pointer.
//
// Walk faults on any tag a collection would reject, so tests use it to check
// the active space is well formed.
func (h *Heap) Walk(freePtr uintptr, fn func(addr uintptr, tag api.Tag) bool) {
	if freePtr < h.fromBegin || freePtr > h.fromEnd {
		panic("BUG: Walk with free pointer outside the active space")
	}
	for addr := h.fromBegin; addr < freePtr; {
		t := api.Tag(LoadWord(addr))
		if t.Copied() {
			fault(api.FaultCorruptTag, addr, "forwarded tag in active space")
		}
		n := t.Length()
		if n > api.MaxTupleLength {
			fault(api.FaultCorruptTag, addr, "tag length exceeds 50")
		}
		end := addr + uintptr((n+1)*api.WordSize)
		if end > freePtr {
			fault(api.FaultCorruptTag, addr, "tuple runs past free pointer")
		}
		if !fn(addr, t) {
			return
		}
		addr = end
	}
}
