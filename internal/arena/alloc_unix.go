//go:build unix

package arena

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// alloc maps anonymous, zero-filled memory outside the Go heap. Page
// alignment satisfies the collector's 8-byte requirement with room to spare.
func alloc(bytes uint64) (*Region, error) {
	buf, err := unix.Mmap(-1, 0, int(bytes), unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANON)
	if err != nil {
		return nil, err
	}
	return &Region{
		base: uintptr(unsafe.Pointer(&buf[0])),
		size: bytes,
		free: func() error { return unix.Munmap(buf) },
	}, nil
}
