//go:build unix

package mpool

import "golang.org/x/sys/unix"

// MmapHooks returns an acquire/release pair backed by anonymous memory
// mappings instead of the Go heap. Cluster memory obtained this way is
// invisible to the garbage collector and returns to the operating
// system immediately on release:
//
//	acquire, release := mpool.MmapHooks()
//	pool := mpool.New(64, 16384, mpool.WithHooks(acquire, release))
func MmapHooks() (AcquireFunc, ReleaseFunc) {
	acquire := func(size int) []byte {
		b, err := unix.Mmap(-1, 0, size,
			unix.PROT_READ|unix.PROT_WRITE,
			unix.MAP_ANON|unix.MAP_PRIVATE)
		if err != nil {
			return nil
		}
		return b
	}
	release := func(block []byte) {
		_ = unix.Munmap(block)
	}
	return acquire, release
}
