package mpool

import "math/bits"

// Buckets is the number of free-list buckets. Bucket i threads runs of
// 2^i .. 2^(i+1)-1 free slots; the last bucket is a catch-all for
// everything from 2^(Buckets-1) upward.
const Buckets = 8

// bucketFor maps a run length to its free-list bucket.
func bucketFor(length int) int {
	b := bits.Len(uint(length)) - 1
	if b >= Buckets {
		b = Buckets - 1
	}
	return b
}
