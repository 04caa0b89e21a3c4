package heap

import "github.com/tessellabs/cheney/api"

// evacResult is what one evacuation attempt did to the referenced tuple.
type evacResult int

const (
	// evacCopied: the tuple was copied to to-space and forwarded.
	evacCopied evacResult = iota
	// evacAlreadyCopied: a forwarding tag was found; only the referring slot
	// was rewritten.
	evacAlreadyCopied
	// evacNull: the slot held null and nulls were permitted; nothing changed.
	evacNull
)

// collection carries the per-run cursors so evacuate does not thread them
// through every call.
type collection struct {
	h *Heap
	// next is the to-space allocation cursor, one past the last copied slot.
	next uintptr
	info api.CollectionInfo
}

// evacuate processes one slot holding a tuple pointer. If the referent is
// still in from-space it is copied to to-space and its old tag overwritten
// with the forwarding address; either way the slot ends up holding the
// referent's to-space address. allowNull is true only while scanning the root
// stack, where dead slots legitimately hold null.
func (c *collection) evacuate(slot uintptr, allowNull bool) evacResult {
	p := uintptr(LoadWord(slot))
	if p == api.Null {
		if allowNull {
			return evacNull
		}
		fault(api.FaultNullPointer, slot, "pointer bitmap marks a null element")
	}
	if p%api.WordSize != 0 {
		fault(api.FaultUnalignedPointer, p, "tuple pointer is not 8-byte aligned")
	}

	t := api.Tag(LoadWord(p))
	if t.Copied() {
		// The tag is the forwarding address installed by an earlier visit.
		StoreWord(slot, uint64(t.ForwardingAddr()))
		return evacAlreadyCopied
	}

	n := t.Length()
	if n > api.MaxTupleLength {
		fault(api.FaultCorruptTag, p, "tag length exceeds 50")
	}
	words := n + 1
	newAddr := c.next

	// Copy before installing the forwarding word, so the live tag survives
	// into the destination.
	copyWords(newAddr, p, words)
	c.next += uintptr(words * api.WordSize)
	StoreWord(p, uint64(api.ForwardingTag(newAddr)))
	StoreWord(slot, uint64(newAddr))

	c.info.TuplesEvacuated++
	return evacCopied
}

// Collect runs one full stop-the-world collection: seed to-space from the
// root stack, Cheney-scan it to closure, then swap the spaces. It returns the
// new free pointer together with what the run did.
//
// rootStackTop is one past the last live root slot; the walk runs from it
// down to the root-stack base, so the deepest-pushed root is evacuated last
// and the newest first. Tuples land in to-space in that BFS order, which
// callers may rely on.
//
// bytesNeeded is the allocation that triggered the collection. If the swap
// leaves less than that free, the heap is exhausted and the run faults.
func (h *Heap) Collect(rootStackTop uintptr, bytesNeeded uint64) (freePtr uintptr, info api.CollectionInfo) {
	if rootStackTop < h.rootBegin {
		fault(api.FaultBadRootStack, rootStackTop, "root-stack top below base")
	}

	c := &collection{next: h.toBegin}

	for slot := rootStackTop; slot > h.rootBegin; {
		slot -= api.WordSize
		c.evacuate(slot, true)
		c.info.RootsScanned++
	}

	// The region between scan and next is the BFS queue: tuples copied but
	// not yet examined for outgoing pointers. The run is complete when the
	// scan cursor catches the allocation cursor.
	for scan := h.toBegin; scan < c.next; {
		t := api.Tag(LoadWord(scan))
		if t.Copied() {
			fault(api.FaultCorruptTag, scan, "forwarded tag in to-space")
		}
		n := t.Length()
		if n > api.MaxTupleLength {
			fault(api.FaultCorruptTag, scan, "tag length exceeds 50")
		}
		bitmap := t.PointerBitmap()
		for k := uint64(0); k < n; k++ {
			if bitmap>>k&1 == 1 {
				c.evacuate(scan+uintptr((k+1)*api.WordSize), false)
			}
		}
		scan += uintptr((n + 1) * api.WordSize)
	}

	freePtr = c.next
	h.fromBegin, h.toBegin = h.toBegin, h.fromBegin
	h.fromEnd, h.toEnd = h.toEnd, h.fromEnd

	if uint64(h.fromEnd-freePtr) < bytesNeeded {
		fault(api.FaultHeapExhausted, freePtr, "live set leaves no room for pending allocation")
	}

	c.info.WordsLive = uint64(freePtr-h.fromBegin) / api.WordSize
	return freePtr, c.info
}
