package chain

import (
	"fmt"
	"math"
)

// Build orders candidates into a progressive similarity chain starting from reference.
// Every candidate appears exactly once in the result, in selection order.
// An empty pool yields an empty chain. All validation happens before the
// first selection, so an error never comes with a partial chain.
func Build(reference Vector, candidates []Candidate, opts Options) ([]Entry, error) {
	return build(reference, candidates, opts, euclidean)
}

func build(reference Vector, candidates []Candidate, opts Options, dist metric) ([]Entry, error) {
	if err := validate(reference, candidates, opts); err != nil {
		return nil, err
	}
	if len(candidates) == 0 {
		return []Entry{}, nil
	}

	p := newPool(candidates, dist)
	entries := make([]Entry, 0, len(candidates))

	// Seeding round uses the raw distance to the reference only.
	first := p.best(reference, 0, opts.Workers)
	current := p.take(first.index)
	entries = append(entries, Entry{ID: current.id, Distance: first.raw})
	report(opts, p, 1, current, first)

	for round := 2; p.live > 0; round++ {
		next := p.best(current.vec, opts.AgeWeight, opts.Workers)
		current = p.take(next.index)
		entries = append(entries, Entry{ID: current.id, Distance: next.raw})
		report(opts, p, round, current, next)
	}

	return entries, nil
}

func report(opts Options, p *pool, round int, s slot, pk pick) {
	if opts.OnRound == nil {
		return
	}
	opts.OnRound(Round{
		Number:    round,
		ID:        s.id,
		Raw:       pk.raw,
		Effective: pk.effective,
		Age:       s.age,
		Remaining: p.ages(),
	})
}

func validate(reference Vector, candidates []Candidate, opts Options) error {
	if len(reference) == 0 || !finite(reference) {
		return ErrInvalidReference
	}
	if math.IsNaN(opts.AgeWeight) || opts.AgeWeight < 0 {
		return fmt.Errorf("%w: got %v", ErrNegativeAgeWeight, opts.AgeWeight)
	}

	seen := make(map[string]struct{}, len(candidates))
	for _, c := range candidates {
		if len(c.Vector) != len(reference) {
			return fmt.Errorf("%w: candidate %q has %d dimensions, reference has %d",
				ErrDimensionMismatch, c.ID, len(c.Vector), len(reference))
		}
		if !finite(c.Vector) {
			return fmt.Errorf("%w: %q", ErrInvalidCandidate, c.ID)
		}
		if _, ok := seen[c.ID]; ok {
			return fmt.Errorf("%w: %q", ErrDuplicateID, c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}
