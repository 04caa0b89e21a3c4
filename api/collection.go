package api

import "time"

// CollectionInfo records what one collection did. It is returned by Collect
// and delivered to any configured CollectionListener.
type CollectionInfo struct {
	// RootsScanned is the number of root-stack slots examined, nulls
	// included.
	RootsScanned uint64
	// TuplesEvacuated is the number of distinct tuples copied into the new
	// active space.
	TuplesEvacuated uint64
	// WordsLive is the size in slots of the surviving heap, tags included.
	WordsLive uint64
	// WordsReclaimed is how many previously allocated slots did not survive.
	WordsReclaimed uint64
	// Duration is the wall time the collection took.
	Duration time.Duration
}

// CollectionListener is notified after every completed collection. Register
// one via RuntimeConfig.WithCollectionListener.
//
// Note: The listener runs on the mutator's thread while it is stopped at the
// safepoint, so it must not allocate from the collected heap.
type CollectionListener interface {
	// AfterCollection is invoked once the spaces have been swapped and the
	// free pointer republished.
	AfterCollection(CollectionInfo)
}
