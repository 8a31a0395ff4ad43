// Package calibrate turns raw cosine similarities into the bounded integer
// display scale shown to users. The transformation is part of the product's
// behavioural contract and must stay bit-for-bit stable: normalize by the
// anchor's self-similarity, compress with a square root, decay by rank
// position, boost franchise matches, then map onto [55, 98].
package calibrate

import (
	"math"
	"strings"
)

// Display score bounds.
const (
	MinDisplay = 55
	MaxDisplay = 98
)

const (
	franchiseBoost  = 1.2
	franchiseCap    = 0.95
	minFranchiseLen = 3
	rankDecay       = 0.5
)

// Candidate is one entry of the rank list, ordered by raw score descending.
// The anchor occupies rank 0 and is never boosted.
type Candidate struct {
	RawScore     float64
	FranchiseKey string
}

// Calibrate maps the ranked candidates to display scores. anchorSelf is the
// anchor's similarity to itself (1.0 for L2-normalized vectors) and guards
// the normalization if vectors are ever not unit length. anchorKey is the
// anchor's franchise key.
//
// The rank decay is keyed to rank position, not score magnitude: two
// near-tied candidates can land on visibly different display scores purely
// from tie-break order. That spread is deliberate.
func Calibrate(ranked []Candidate, anchorSelf float64, anchorKey string) []int {
	if len(ranked) == 0 {
		return nil
	}
	if anchorSelf == 0 {
		anchorSelf = 1
	}

	adjusted := make([]float64, len(ranked))
	for i, c := range ranked {
		normalized := c.RawScore / anchorSelf
		balanced := math.Sqrt(normalized)
		factor := 1.0
		if len(ranked) > 1 {
			factor = 1.0 - float64(i)/float64(len(ranked)-1)*rankDecay
		}
		adjusted[i] = balanced * factor
	}

	key := strings.ToLower(anchorKey)
	if len(key) >= minFranchiseLen {
		for i := 1; i < len(ranked); i++ {
			if strings.ToLower(ranked[i].FranchiseKey) == key {
				adjusted[i] = math.Min(adjusted[i]*franchiseBoost, franchiseCap)
			}
		}
	}

	display := make([]int, len(ranked))
	for i, a := range adjusted {
		display[i] = int(math.Round(MinDisplay + a*(MaxDisplay-MinDisplay)))
	}
	return display
}
