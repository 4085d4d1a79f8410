package chain

import (
	"errors"
	"math"
)

var (
	// ErrInvalidReference is returned when the reference encoding is missing or unusable.
	ErrInvalidReference = errors.New("chain: invalid reference vector")
	// ErrInvalidCandidate is returned when a candidate vector holds NaN or Inf.
	ErrInvalidCandidate = errors.New("chain: invalid candidate vector")
	// ErrDimensionMismatch is returned when vectors do not share one length.
	ErrDimensionMismatch = errors.New("chain: dimension mismatch")
	// ErrNegativeAgeWeight is returned for an age weight below zero or NaN.
	ErrNegativeAgeWeight = errors.New("chain: age weight must be >= 0")
	// ErrDuplicateID is returned when two candidates share an id.
	ErrDuplicateID = errors.New("chain: duplicate candidate id")
)

// Vector is a fixed-length face encoding.
type Vector []float32

// Candidate is one photo waiting to be placed in the chain.
type Candidate struct {
	ID     string `json:"id"`
	Vector Vector `json:"vector"`
}

// Entry is one element of the built chain. Distance is the raw Euclidean
// distance to the previous entry, or to the reference for the first one.
type Entry struct {
	ID       string  `json:"id"`
	Distance float64 `json:"distance"`
}

// Round describes a single selection, reported through Options.OnRound.
type Round struct {
	Number    int            // 1 for the seeding round
	ID        string         // selected candidate
	Raw       float64        // distance to the previous entry
	Effective float64        // Raw + AgeWeight*Age
	Age       int            // age of the selected candidate at selection time
	Remaining map[string]int // ages of candidates still in the pool after aging
}

// Options tunes Build.
type Options struct {
	// AgeWeight scales the penalty added per passed-over round.
	AgeWeight float64
	// Workers splits each round's scan across goroutines when > 1.
	Workers int
	// OnRound is called after every selection when set.
	OnRound func(Round)
}

// Distance returns the Euclidean distance between a and b.
func Distance(a, b Vector) (float64, error) {
	if len(a) != len(b) {
		return 0, ErrDimensionMismatch
	}
	return euclidean(a, b), nil
}

func euclidean(a, b Vector) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

func finite(v Vector) bool {
	for _, x := range v {
		f := float64(x)
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return false
		}
	}
	return true
}
