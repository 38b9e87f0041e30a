package grid

import (
	"math/rand/v2"
	"sort"

	"github.com/sells-group/safezones/internal/model"
	"github.com/sells-group/safezones/internal/resilience"
)

// Thinning methods.
const (
	ThinUniform = "uniform"
	ThinRandom  = "random"
)

// DefaultSeed is the random thinning seed.
const DefaultSeed uint64 = 42

// ValidateThinning checks the method name and the limit.
func ValidateThinning(method string, maxPoints int) error {
	switch method {
	case ThinUniform, ThinRandom:
	default:
		return resilience.ConfigErrorf("grid.thinning", "unknown thinning method %q", method)
	}
	if maxPoints < 0 {
		return resilience.ConfigErrorf("grid.max_points", "must not be negative, got %d", maxPoints)
	}
	return nil
}

// Thin reduces pts to maxPoints. Uniform keeps the points at ⌊k·N/max⌋ for
// k in [0, max), which is every ⌊N/max⌋-th point when max divides N and
// otherwise spreads the sample over the whole set. Random keeps maxPoints
// points drawn with seed. Both return points in their original order.
// maxPoints of 0 means no limit.
func Thin(pts []model.Point, maxPoints int, method string, seed uint64) ([]model.Point, error) {
	if err := ValidateThinning(method, maxPoints); err != nil {
		return nil, err
	}
	if maxPoints == 0 || len(pts) <= maxPoints {
		return pts, nil
	}

	switch method {
	case ThinUniform:
		n := len(pts)
		out := make([]model.Point, maxPoints)
		for k := range out {
			out[k] = pts[k*n/maxPoints]
		}
		return out, nil
	default:
		r := rand.New(rand.NewPCG(seed, seed))
		idx := r.Perm(len(pts))[:maxPoints]
		sort.Ints(idx)
		out := make([]model.Point, maxPoints)
		for i, j := range idx {
			out[i] = pts[j]
		}
		return out, nil
	}
}
