package model

import "github.com/twpayne/go-geom"

// SizeClass is a discrete size bucket derived from a zone's area.
type SizeClass string

const (
	SizeVerySmall SizeClass = "very_small"
	SizeSmall     SizeClass = "small"
	SizeMedium    SizeClass = "medium"
	SizeLarge     SizeClass = "large"
	SizeVeryLarge SizeClass = "very_large"
)

// SizeClasses lists every size class from smallest to largest.
var SizeClasses = []SizeClass{SizeVerySmall, SizeSmall, SizeMedium, SizeLarge, SizeVeryLarge}

// ZoneMethod selects how zones are produced.
type ZoneMethod string

const (
	MethodFreeSpace ZoneMethod = "freespace" // boundary minus forbidden region
	MethodPoints    ZoneMethod = "points"    // buffered safe grid points
	MethodGrid      ZoneMethod = "grid"      // safe grid points only, no zones
)

// Zone is a usable area that survived the minimum-area filter. Geometry is
// never modified after filtering; the metadata fields are filled in by later
// stages.
type Zone struct {
	ID          int           `json:"zone_id"`
	Geometry    *geom.Polygon `json:"-"`
	AreaM2      float64       `json:"area_m2"`
	PerimeterM  float64       `json:"perimeter_m"`
	Compactness float64       `json:"compactness"`
	SizeClass   SizeClass     `json:"size_class"`
	Centroid    Point         `json:"centroid"`
}
