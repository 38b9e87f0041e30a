package model

import (
	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Frame is the reference frame a geometry's coordinates are expressed in.
type Frame string

const (
	FrameGeographic Frame = "geographic" // degrees, WGS84 lon/lat
	FrameProjected  Frame = "projected"  // metres, planar
)

// ErrGeographicFrame is returned when a planar operation (buffer, union,
// difference, area, length) is requested on a geometry in degrees.
var ErrGeographicFrame = eris.New("model: planar operation on geographic-frame geometry")

// Geometry is a shape tagged with its reference frame. The wrapped value is
// treated as immutable once constructed.
type Geometry struct {
	T     geom.T
	Frame Frame
}

// Projected tags g as projected-frame geometry.
func Projected(g geom.T) Geometry {
	return Geometry{T: g, Frame: FrameProjected}
}

// Geographic tags g as geographic-frame geometry.
func Geographic(g geom.T) Geometry {
	return Geometry{T: g, Frame: FrameGeographic}
}

// IsProjected reports whether g is in the projected frame.
func (g Geometry) IsProjected() bool {
	return g.Frame == FrameProjected
}

// IsEmpty reports whether g carries no shape.
func (g Geometry) IsEmpty() bool {
	return g.T == nil || g.T.Empty()
}

// ObstacleCategory is one named collection of obstacle geometries and the
// safety distance that applies to all of them.
type ObstacleCategory struct {
	Name       string
	BufferM    float64
	Geometries []Geometry
}

// Point is a planar coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// GridPoint is a lattice candidate produced by the point-sampling method.
type GridPoint struct {
	X    float64 `json:"x"`
	Y    float64 `json:"y"`
	Safe bool    `json:"safe"`
}
