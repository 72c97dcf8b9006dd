package sim

import "fmt"

// PE is a single processing element with a fixed instruction rate (MIPS).
type PE struct {
	ID   int
	MIPS float64
}

// PEPool tracks the PEs owned by one host and which VM, if any, holds each
// PE exclusively. Time-shared hosts never reserve PEs; they only read capacity.
//
// Thread-safety: NOT thread-safe.
type PEPool struct {
	pes   []PE
	owner []int // VM id holding pes[i] exclusively, NoVM when free
}

// NewPEPool creates a pool of n PEs with identical capacity.
func NewPEPool(n int, mips float64) *PEPool {
	pes := make([]PE, n)
	for i := range pes {
		pes[i] = PE{ID: i, MIPS: mips}
	}
	return NewPEPoolFromList(pes)
}

// NewPEPoolFromList creates a pool from an explicit PE list.
func NewPEPoolFromList(pes []PE) *PEPool {
	owner := make([]int, len(pes))
	for i := range owner {
		owner[i] = NoVM
	}
	return &PEPool{pes: append([]PE(nil), pes...), owner: owner}
}

// Count returns the number of PEs in the pool.
func (p *PEPool) Count() int { return len(p.pes) }

// TotalMIPS returns the summed capacity of all PEs.
func (p *PEPool) TotalMIPS() float64 {
	total := 0.0
	for _, pe := range p.pes {
		total += pe.MIPS
	}
	return total
}

// MaxMIPS returns the capacity of the fastest PE, 0 for an empty pool.
func (p *PEPool) MaxMIPS() float64 {
	best := 0.0
	for _, pe := range p.pes {
		best = max(best, pe.MIPS)
	}
	return best
}

// FreeCount returns the number of PEs not reserved by any VM.
func (p *PEPool) FreeCount() int {
	n := 0
	for _, o := range p.owner {
		if o == NoVM {
			n++
		}
	}
	return n
}

// ReservedCount returns the number of PEs reserved by VMs.
func (p *PEPool) ReservedCount() int { return p.Count() - p.FreeCount() }

// Reserve grants n free PEs with at least minMIPS each to vmID, lowest index
// first. It reserves nothing and returns false if not enough PEs qualify.
func (p *PEPool) Reserve(vmID, n int, minMIPS float64) ([]int, bool) {
	picked := make([]int, 0, n)
	for i, o := range p.owner {
		if len(picked) == n {
			break
		}
		if o == NoVM && p.pes[i].MIPS >= minMIPS {
			picked = append(picked, i)
		}
	}
	if len(picked) < n {
		return nil, false
	}
	for _, i := range picked {
		p.owner[i] = vmID
	}
	return picked, true
}

// Release frees every PE held by vmID and returns how many were released.
func (p *PEPool) Release(vmID int) int {
	n := 0
	for i, o := range p.owner {
		if o == vmID {
			p.owner[i] = NoVM
			n++
		}
	}
	return n
}

// OwnedBy returns the indices of the PEs reserved by vmID.
func (p *PEPool) OwnedBy(vmID int) []int {
	var idx []int
	for i, o := range p.owner {
		if o == vmID {
			idx = append(idx, i)
		}
	}
	return idx
}

func (p *PEPool) String() string {
	return fmt.Sprintf("PEPool(count=%d, free=%d, total=%.0f MIPS)", p.Count(), p.FreeCount(), p.TotalMIPS())
}
