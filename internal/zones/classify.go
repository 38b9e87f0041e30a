package zones

import "github.com/sells-group/safezones/internal/model"

// Size class lower bounds (square metres). Each bound is inclusive.
const (
	smallMinM2     = 1_000.0
	mediumMinM2    = 5_000.0
	largeMinM2     = 10_000.0
	veryLargeMinM2 = 50_000.0
)

// Classify returns the size class for an area in square metres.
// Rules:
//   - very_small: [0, 1000)
//   - small: [1000, 5000)
//   - medium: [5000, 10000)
//   - large: [10000, 50000)
//   - very_large: [50000, ∞)
func Classify(areaM2 float64) model.SizeClass {
	switch {
	case areaM2 >= veryLargeMinM2:
		return model.SizeVeryLarge
	case areaM2 >= largeMinM2:
		return model.SizeLarge
	case areaM2 >= mediumMinM2:
		return model.SizeMedium
	case areaM2 >= smallMinM2:
		return model.SizeSmall
	default:
		return model.SizeVerySmall
	}
}

// ClassifyAll sets SizeClass on every zone.
func ClassifyAll(zs []model.Zone) {
	for i := range zs {
		zs[i].SizeClass = Classify(zs[i].AreaM2)
	}
}

// CountByClass tallies zones per size class.
func CountByClass(zs []model.Zone) map[model.SizeClass]int {
	out := make(map[model.SizeClass]int, len(model.SizeClasses))
	for _, z := range zs {
		out[z.SizeClass]++
	}
	return out
}
