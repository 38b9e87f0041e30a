// Package loader reads boundary and obstacle features from GeoJSON and
// shapefiles and assigns obstacles to categories.
package loader

import (
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
)

// Feature is one input record: a geometry plus its string attributes.
type Feature struct {
	Geometry   geom.T
	Properties map[string]string
}

// CategoryProperty is the attribute that labels a feature's category
// explicitly, bypassing tag matching.
const CategoryProperty = "category"

// ReadFeatures reads path, choosing the format from its extension.
func ReadFeatures(path string) ([]Feature, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".shp":
		return ReadShapefile(path)
	case ".geojson", ".json":
		return ReadGeoJSON(path)
	default:
		return nil, eris.Errorf("loader: unsupported input format %q", path)
	}
}
