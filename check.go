package mpool

import (
	"fmt"
	"unsafe"

	"github.com/cehteh/mpool/internal/llist"
)

// Check walks every cluster and every free-list bucket and verifies the
// pool's invariants: endpoint bits match the runs, runs are maximal,
// footers point back at their headers, every run sits in the bucket its
// length selects, and the free counter equals the summed run lengths.
// It returns nil when everything holds.
//
// Check is O(total slots); it is meant for tests and debugging, not for
// the allocation path.
func (p *Pool) Check() error {
	runs := make(map[*runHeader]int)
	totalFree := 0
	ci := 0

	var err error
	p.clusters.Do(func(n *llist.Node) {
		if err != nil {
			return
		}
		c := clusterOf(n)
		setBits := 0
		i := 0
		for i < p.slotsPerCluster {
			if !c.bits.Test(uint(i)) {
				i++
				continue
			}
			h := p.headerAt(c, i)
			length := int(h.length)
			if length < 1 || i+length > p.slotsPerCluster {
				err = fmt.Errorf("cluster %d: run at %d has length %d", ci, i, length)
				return
			}
			if length == 1 {
				setBits++
			} else {
				last := i + length - 1
				if !c.bits.Test(uint(last)) {
					err = fmt.Errorf("cluster %d: run [%d,%d] end bit clear", ci, i, last)
					return
				}
				for j := i + 1; j < last; j++ {
					if c.bits.Test(uint(j)) {
						err = fmt.Errorf("cluster %d: interior bit %d set in run [%d,%d]", ci, j, i, last)
						return
					}
				}
				f := footerAt(p.slotAt(c, last))
				if f.mark != 0 {
					err = fmt.Errorf("cluster %d: run [%d,%d] last slot not footer-shaped", ci, i, last)
					return
				}
				if f.first != h {
					err = fmt.Errorf("cluster %d: run [%d,%d] footer points elsewhere", ci, i, last)
					return
				}
				setBits += 2
			}
			if nxt := i + length; nxt < p.slotsPerCluster && c.bits.Test(uint(nxt)) {
				err = fmt.Errorf("cluster %d: adjacent free runs at %d", ci, nxt)
				return
			}
			runs[h] = length
			totalFree += length
			i += length
		}
		if got := int(c.bits.Count()); got != setBits {
			err = fmt.Errorf("cluster %d: %d bits set, runs account for %d", ci, got, setBits)
			return
		}
		ci++
	})
	if err != nil {
		return err
	}

	if totalFree != p.elementsFree {
		return fmt.Errorf("free count %d, runs sum to %d", p.elementsFree, totalFree)
	}

	linked := 0
	for b := range p.freelists {
		bi := b
		p.freelists[b].Do(func(n *llist.Node) {
			if err != nil {
				return
			}
			h := headerOf(n)
			length, ok := runs[h]
			if !ok {
				err = fmt.Errorf("bucket %d: node %p is not a run first-slot", bi, n)
				return
			}
			if bucketFor(length) != bi {
				err = fmt.Errorf("bucket %d: run of length %d belongs in bucket %d", bi, length, bucketFor(length))
				return
			}
			linked++
		})
	}
	if err != nil {
		return err
	}
	if linked != len(runs) {
		return fmt.Errorf("%d runs exist, %d linked in buckets", len(runs), linked)
	}

	if p.linger != nil {
		if p.clusters.Find(func(n *llist.Node) bool { return n == &p.linger.node }) == nil {
			return fmt.Errorf("linger cluster %p not in cluster list", unsafe.Pointer(p.linger))
		}
	}

	return nil
}
