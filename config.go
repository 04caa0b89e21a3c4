package cheney

import (
	"fmt"

	"github.com/tessellabs/cheney/api"
)

// Default region sizes used by NewRuntimeConfig. The heap default is modest
// on purpose: the collector is built for small AOT-compiled programs, and a
// driver that knows better sizes both regions explicitly.
const (
	DefaultRootStackBytes = 1 << 14 // 16KiB, 2048 root slots
	DefaultHeapBytes      = 1 << 24 // 16MiB per semi-space
)

// RuntimeConfig controls collector behavior, with the default implementation
// as NewRuntimeConfig.
type RuntimeConfig struct {
	rootStackBytes uint64
	heapBytes      uint64
	listener       api.CollectionListener
}

// NewRuntimeConfig returns a RuntimeConfig with default region sizes and no
// collection listener.
func NewRuntimeConfig() *RuntimeConfig {
	return &RuntimeConfig{
		rootStackBytes: DefaultRootStackBytes,
		heapBytes:      DefaultHeapBytes,
	}
}

// clone ensures all fields are copied even if zero.
func (c *RuntimeConfig) clone() *RuntimeConfig {
	return &RuntimeConfig{
		rootStackBytes: c.rootStackBytes,
		heapBytes:      c.heapBytes,
		listener:       c.listener,
	}
}

// WithRootStackSize sets the root stack's byte size, rounded up to a multiple
// of 8 at initialization.
func (c *RuntimeConfig) WithRootStackSize(bytes uint64) *RuntimeConfig {
	ret := c.clone()
	ret.rootStackBytes = bytes
	return ret
}

// WithHeapSize sets the byte size of each semi-space, rounded up to a
// multiple of 8 at initialization. The collector allocates two spaces of this
// size; a live set larger than one space is fatal.
func (c *RuntimeConfig) WithHeapSize(bytes uint64) *RuntimeConfig {
	ret := c.clone()
	ret.heapBytes = bytes
	return ret
}

// WithCollectionListener registers a listener notified after every completed
// collection. A nil listener disables notification.
func (c *RuntimeConfig) WithCollectionListener(l api.CollectionListener) *RuntimeConfig {
	ret := c.clone()
	ret.listener = l
	return ret
}

// validate reports the configuration errors Initialize must reject.
func (c *RuntimeConfig) validate() error {
	if c.rootStackBytes == 0 {
		return fmt.Errorf("root stack size must be non-zero")
	}
	if c.heapBytes == 0 {
		return fmt.Errorf("heap size must be non-zero")
	}
	return nil
}
