package chain

import "sync"

// minParallelScan is the smallest live pool size worth fanning out.
const minParallelScan = 256

type slot struct {
	id      string
	vec     Vector
	age     int
	removed bool
}

// pool is an index-addressed arena. Slots keep their input position for the
// whole run; removal only flips a flag.
type pool struct {
	slots []slot
	live  int
	dist  metric
}

// metric measures the distance between two vectors of equal length.
type metric func(a, b Vector) float64

// pick is the best candidate found by a scan.
type pick struct {
	index     int
	raw       float64
	effective float64
}

func (p pick) better(o pick) bool {
	if o.index < 0 {
		return true
	}
	if p.effective != o.effective {
		return p.effective < o.effective
	}
	return p.index < o.index
}

func newPool(candidates []Candidate, dist metric) *pool {
	p := &pool{slots: make([]slot, len(candidates)), live: len(candidates), dist: dist}
	for i, c := range candidates {
		p.slots[i] = slot{id: c.ID, vec: c.Vector}
	}
	return p
}

// scan returns the live slot in [lo, hi) with the lowest effective distance
// to current. index is -1 when the range has no live slots.
func (p *pool) scan(current Vector, weight float64, lo, hi int) pick {
	best := pick{index: -1}
	for i := lo; i < hi; i++ {
		s := &p.slots[i]
		if s.removed {
			continue
		}
		raw := p.dist(s.vec, current)
		cand := pick{index: i, raw: raw, effective: raw + weight*float64(s.age)}
		if cand.better(best) {
			best = cand
		}
	}
	return best
}

// best scans the whole arena, splitting the work into contiguous chunks when
// workers > 1. Chunk results are reduced by (effective, index), so the outcome
// equals a sequential scan.
func (p *pool) best(current Vector, weight float64, workers int) pick {
	n := len(p.slots)
	if workers <= 1 || p.live < minParallelScan {
		return p.scan(current, weight, 0, n)
	}

	chunk := (n + workers - 1) / workers
	results := make([]pick, 0, workers)
	var mu sync.Mutex
	var wg sync.WaitGroup
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		wg.Go(func() {
			r := p.scan(current, weight, lo, hi)
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
		})
	}
	wg.Wait()

	best := pick{index: -1}
	for _, r := range results {
		if r.index >= 0 && r.better(best) {
			best = r
		}
	}
	return best
}

// take removes slot i from the pool and ages every slot still in it.
func (p *pool) take(i int) slot {
	p.slots[i].removed = true
	p.live--
	for j := range p.slots {
		if !p.slots[j].removed {
			p.slots[j].age++
		}
	}
	return p.slots[i]
}

func (p *pool) ages() map[string]int {
	out := make(map[string]int, p.live)
	for _, s := range p.slots {
		if !s.removed {
			out[s.id] = s.age
		}
	}
	return out
}
