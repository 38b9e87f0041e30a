package loader

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"github.com/twpayne/go-geom/encoding/geojson"
)

// ReadGeoJSON reads a FeatureCollection, a single Feature or a bare
// geometry from path.
func ReadGeoJSON(path string) ([]Feature, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: read %s", path)
	}
	features, err := ParseGeoJSON(data)
	if err != nil {
		return nil, eris.Wrapf(err, "loader: parse %s", path)
	}
	return features, nil
}

// ParseGeoJSON decodes GeoJSON bytes into features. Properties are
// flattened to strings; a nested "tags" object is merged into the top
// level.
func ParseGeoJSON(data []byte) ([]Feature, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, eris.Wrap(err, "loader: decode geojson")
	}

	switch head.Type {
	case "FeatureCollection":
		var fc geojson.FeatureCollection
		if err := json.Unmarshal(data, &fc); err != nil {
			return nil, eris.Wrap(err, "loader: decode feature collection")
		}
		out := make([]Feature, 0, len(fc.Features))
		for _, f := range fc.Features {
			if f.Geometry == nil {
				out = append(out, Feature{Properties: flattenProperties(f.Properties)})
				continue
			}
			out = append(out, Feature{Geometry: f.Geometry, Properties: flattenProperties(f.Properties)})
		}
		return out, nil
	case "Feature":
		var f geojson.Feature
		if err := json.Unmarshal(data, &f); err != nil {
			return nil, eris.Wrap(err, "loader: decode feature")
		}
		return []Feature{{Geometry: f.Geometry, Properties: flattenProperties(f.Properties)}}, nil
	case "":
		return nil, eris.New("loader: geojson has no type")
	default:
		var g geom.T
		if err := geojson.Unmarshal(data, &g); err != nil {
			return nil, eris.Wrap(err, "loader: decode geometry")
		}
		return []Feature{{Geometry: g, Properties: map[string]string{}}}, nil
	}
}

func flattenProperties(props map[string]interface{}) map[string]string {
	out := make(map[string]string, len(props))
	for k, v := range props {
		if k == "tags" {
			if nested, ok := v.(map[string]interface{}); ok {
				for nk, nv := range nested {
					if s, ok := stringify(nv); ok {
						out[nk] = s
					}
				}
				continue
			}
		}
		if s, ok := stringify(v); ok {
			out[k] = s
		}
	}
	return out
}

func stringify(v interface{}) (string, bool) {
	switch v := v.(type) {
	case nil:
		return "", false
	case string:
		return v, true
	case bool:
		if v {
			return "yes", true
		}
		return "no", true
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64), true
	case json.Number:
		return v.String(), true
	case map[string]interface{}, []interface{}:
		return "", false
	default:
		return fmt.Sprint(v), true
	}
}
