package loader

import (
	"sort"

	"github.com/rotisserie/eris"
	"github.com/twpayne/go-geom"
	"go.uber.org/zap"

	"github.com/sells-group/safezones/internal/category"
	"github.com/sells-group/safezones/internal/model"
	"github.com/sells-group/safezones/internal/planar"
	"github.com/sells-group/safezones/internal/projection"
)

// maxUnmatchedLogged caps how many unmatched features are logged.
const maxUnmatchedLogged = 10

// Dataset is the raw input of one run: the boundary and the categorised
// obstacle geometries, all in one frame.
type Dataset struct {
	Frame     model.Frame
	Boundary  geom.T
	Obstacles map[string][]geom.T
}

// CategorizeStats counts how obstacle features were assigned.
type CategorizeStats struct {
	Features   int
	Assigned   int
	Unmatched  int
	NoGeometry int
}

// BoundaryFromFeatures collects every areal feature geometry into one
// boundary. A single polygon stays a Polygon; several become a
// MultiPolygon.
func BoundaryFromFeatures(features []Feature) (geom.T, error) {
	var polys []*geom.Polygon
	for _, f := range features {
		if f.Geometry == nil {
			continue
		}
		polys = append(polys, planar.Normalize(f.Geometry).Polygons...)
	}
	switch len(polys) {
	case 0:
		return nil, eris.New("loader: boundary has no polygon features")
	case 1:
		return polys[0], nil
	default:
		return planar.Shape{Kind: planar.KindMulti, Polygons: polys}.MultiPolygon(), nil
	}
}

// Categorize assigns each feature to categories: the explicit "category"
// property when present, otherwise every category whose tag rules match.
func Categorize(features []Feature, table *category.Table) (map[string][]geom.T, CategorizeStats) {
	out := make(map[string][]geom.T)
	var stats CategorizeStats
	log := zap.L()

	for i, f := range features {
		stats.Features++
		if f.Geometry == nil || f.Geometry.Empty() {
			stats.NoGeometry++
			continue
		}

		var names []string
		if name := f.Properties[CategoryProperty]; name != "" {
			names = []string{name}
		} else {
			names = table.Match(f.Properties)
		}
		if len(names) == 0 {
			stats.Unmatched++
			if stats.Unmatched <= maxUnmatchedLogged {
				log.Debug("feature matched no category", zap.Int("index", i), zap.Any("tags", f.Properties))
			}
			continue
		}

		stats.Assigned++
		for _, n := range names {
			out[n] = append(out[n], f.Geometry)
		}
	}

	if stats.Unmatched > 0 {
		log.Info("features without a category were ignored", zap.Int("unmatched", stats.Unmatched))
	}
	return out, stats
}

// Merge appends obstacles to d.
func (d *Dataset) Merge(obstacles map[string][]geom.T) {
	if d.Obstacles == nil {
		d.Obstacles = make(map[string][]geom.T)
	}
	for name, gs := range obstacles {
		d.Obstacles[name] = append(d.Obstacles[name], gs...)
	}
}

// Project converts a geographic dataset into p's projected frame. A
// dataset already in the projected frame only has extra ordinates dropped.
func (d *Dataset) Project(p *projection.Projector) (*Dataset, error) {
	project := projection.Force2D
	if d.Frame == model.FrameGeographic {
		if p == nil {
			return nil, eris.New("loader: geographic dataset needs a projector")
		}
		project = func(g geom.T) (geom.T, error) { return projection.Transform(g, p.ForwardXY) }
	}

	boundary, err := project(d.Boundary)
	if err != nil {
		return nil, eris.Wrap(err, "loader: project boundary")
	}
	out := &Dataset{
		Frame:     model.FrameProjected,
		Boundary:  boundary,
		Obstacles: make(map[string][]geom.T, len(d.Obstacles)),
	}
	for name, gs := range d.Obstacles {
		projected := make([]geom.T, 0, len(gs))
		for _, g := range gs {
			pg, err := project(g)
			if err != nil {
				zap.L().Warn("skipping obstacle that failed to project",
					zap.String("category", name), zap.Error(err))
				continue
			}
			projected = append(projected, pg)
		}
		out.Obstacles[name] = projected
	}
	return out, nil
}

// Categories turns the obstacles into model categories with buffer
// distances resolved from table, ordered by table order then name.
func (d *Dataset) Categories(table *category.Table) []model.ObstacleCategory {
	names := make([]string, 0, len(d.Obstacles))
	for name := range d.Obstacles {
		names = append(names, name)
	}
	order := make(map[string]int, table.Len())
	for i, n := range table.Names() {
		order[n] = i
	}
	sort.Slice(names, func(i, j int) bool {
		oi, iok := order[names[i]]
		oj, jok := order[names[j]]
		switch {
		case iok && jok:
			return oi < oj
		case iok != jok:
			return iok
		default:
			return names[i] < names[j]
		}
	})

	out := make([]model.ObstacleCategory, 0, len(names))
	for _, name := range names {
		gs := d.Obstacles[name]
		geoms := make([]model.Geometry, len(gs))
		for i, g := range gs {
			geoms[i] = model.Geometry{T: g, Frame: d.Frame}
		}
		out = append(out, model.ObstacleCategory{
			Name:       name,
			BufferM:    table.BufferFor(name),
			Geometries: geoms,
		})
	}
	return out
}

// Sources names the input files of a run.
type Sources struct {
	Boundary  string
	Obstacles []string          // tagged or labelled features
	Layers    map[string]string // category → file whose features all belong to it
	Frame     model.Frame
}

// Load reads every source into a Dataset in src.Frame.
func Load(src Sources, table *category.Table) (*Dataset, CategorizeStats, error) {
	var stats CategorizeStats
	if src.Boundary == "" {
		return nil, stats, eris.New("loader: no boundary input")
	}
	frame := src.Frame
	if frame == "" {
		frame = model.FrameGeographic
	}

	bf, err := ReadFeatures(src.Boundary)
	if err != nil {
		return nil, stats, err
	}
	boundary, err := BoundaryFromFeatures(bf)
	if err != nil {
		return nil, stats, eris.Wrapf(err, "loader: boundary %s", src.Boundary)
	}
	d := &Dataset{Frame: frame, Boundary: boundary, Obstacles: make(map[string][]geom.T)}

	for _, path := range src.Obstacles {
		features, err := ReadFeatures(path)
		if err != nil {
			return nil, stats, err
		}
		obstacles, s := Categorize(features, table)
		stats.Features += s.Features
		stats.Assigned += s.Assigned
		stats.Unmatched += s.Unmatched
		stats.NoGeometry += s.NoGeometry
		d.Merge(obstacles)
	}

	layers := make([]string, 0, len(src.Layers))
	for name := range src.Layers {
		layers = append(layers, name)
	}
	sort.Strings(layers)
	for _, name := range layers {
		features, err := ReadFeatures(src.Layers[name])
		if err != nil {
			return nil, stats, err
		}
		for _, f := range features {
			stats.Features++
			if f.Geometry == nil || f.Geometry.Empty() {
				stats.NoGeometry++
				continue
			}
			stats.Assigned++
			d.Obstacles[name] = append(d.Obstacles[name], f.Geometry)
		}
	}

	zap.L().Info("inputs loaded",
		zap.String("frame", string(frame)),
		zap.Int("categories", len(d.Obstacles)),
		zap.Int("features", stats.Features),
		zap.Int("assigned", stats.Assigned),
		zap.Int("unmatched", stats.Unmatched),
	)
	return d, stats, nil
}
