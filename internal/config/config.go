package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/sells-group/safezones/internal/category"
	"github.com/sells-group/safezones/internal/export"
	"github.com/sells-group/safezones/internal/grid"
	"github.com/sells-group/safezones/internal/loader"
	"github.com/sells-group/safezones/internal/model"
	"github.com/sells-group/safezones/internal/pipeline"
	"github.com/sells-group/safezones/internal/planar"
	"github.com/sells-group/safezones/internal/resilience"
	"github.com/sells-group/safezones/internal/zones"
)

// Config is the top-level application configuration.
type Config struct {
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
	Input      InputConfig      `yaml:"input" mapstructure:"input"`
	Categories CategoriesConfig `yaml:"categories" mapstructure:"categories"`
	Zones      ZonesConfig      `yaml:"zones" mapstructure:"zones"`
	Grid       GridConfig       `yaml:"grid" mapstructure:"grid"`
	Geometry   GeometryConfig   `yaml:"geometry" mapstructure:"geometry"`
	Output     OutputConfig     `yaml:"output" mapstructure:"output"`
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
}

// InputConfig names the boundary and obstacle files of a run.
type InputConfig struct {
	Boundary     string            `yaml:"boundary" mapstructure:"boundary"`
	Obstacles    []string          `yaml:"obstacles" mapstructure:"obstacles"`
	ObstaclesShp map[string]string `yaml:"obstacles_shp" mapstructure:"obstacles_shp"` // category → .shp
	Frame        string            `yaml:"frame" mapstructure:"frame"`
	SRID         int               `yaml:"srid" mapstructure:"srid"` // UTM EPSG of projected input
}

// CategoriesConfig selects the obstacle category table and its buffers.
type CategoriesConfig struct {
	File           string             `yaml:"file" mapstructure:"file"`
	DefaultBufferM float64            `yaml:"default_buffer_m" mapstructure:"default_buffer_m"`
	Overrides      map[string]float64 `yaml:"overrides" mapstructure:"overrides"`
}

// ZonesConfig holds zone generation settings.
type ZonesConfig struct {
	Method    string  `yaml:"method" mapstructure:"method"`
	MinAreaM2 float64 `yaml:"min_area_m2" mapstructure:"min_area_m2"`
	RadiusM   float64 `yaml:"radius_m" mapstructure:"radius_m"`
	Dissolve  bool    `yaml:"dissolve" mapstructure:"dissolve"`
}

// GridConfig holds point sampling settings.
type GridConfig struct {
	StepM          float64 `yaml:"step_m" mapstructure:"step_m"`
	MaxPoints      int     `yaml:"max_points" mapstructure:"max_points"`
	Thinning       string  `yaml:"thinning" mapstructure:"thinning"`
	Seed           uint64  `yaml:"seed" mapstructure:"seed"`
	ChunkSize      int     `yaml:"chunk_size" mapstructure:"chunk_size"`
	ChunkThreshold int     `yaml:"chunk_threshold" mapstructure:"chunk_threshold"`
	Workers        int     `yaml:"workers" mapstructure:"workers"`
}

// GeometryConfig tunes planar operations.
type GeometryConfig struct {
	QuadSegs int `yaml:"quad_segs" mapstructure:"quad_segs"`
}

// OutputConfig controls where and how results are written.
type OutputConfig struct {
	Dir     string   `yaml:"dir" mapstructure:"dir"`
	City    string   `yaml:"city" mapstructure:"city"`
	Formats []string `yaml:"formats" mapstructure:"formats"`
}

// StoreConfig holds run history settings. An empty Path disables the
// history.
type StoreConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from config.yaml and environment variables.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("SAFEZONES")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("input.boundary", "")
	v.SetDefault("input.obstacles", []string{})
	v.SetDefault("input.frame", string(model.FrameGeographic))
	v.SetDefault("input.srid", 0)
	v.SetDefault("categories.file", "")
	v.SetDefault("categories.default_buffer_m", category.DefaultBufferM)
	v.SetDefault("zones.method", string(model.MethodFreeSpace))
	v.SetDefault("zones.min_area_m2", zones.DefaultMinAreaM2)
	v.SetDefault("zones.radius_m", pipeline.DefaultZoneRadiusM)
	v.SetDefault("zones.dissolve", true)
	v.SetDefault("grid.step_m", grid.DefaultStepM)
	v.SetDefault("grid.max_points", 0)
	v.SetDefault("grid.thinning", grid.ThinUniform)
	v.SetDefault("grid.seed", grid.DefaultSeed)
	v.SetDefault("grid.chunk_size", grid.DefaultChunkSize)
	v.SetDefault("grid.chunk_threshold", grid.DefaultChunkThreshold)
	v.SetDefault("grid.workers", 0)
	v.SetDefault("geometry.quad_segs", planar.DefaultQuadSegs)
	v.SetDefault("output.dir", "data")
	v.SetDefault("output.city", "Unknown City")
	v.SetDefault("output.formats", formatNames(export.DefaultFormats))
	v.SetDefault("store.path", "")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a run depends on. Every rejection is a
// resilience.ConfigError naming the offending key.
func (c *Config) Validate() error {
	switch model.Frame(c.Input.Frame) {
	case model.FrameGeographic:
	case model.FrameProjected:
		if c.Input.SRID == 0 {
			return resilience.ConfigErrorf("input.srid", "required when input.frame is projected")
		}
	default:
		return resilience.ConfigErrorf("input.frame", "must be geographic or projected, got %q", c.Input.Frame)
	}
	if c.Categories.DefaultBufferM <= 0 {
		return resilience.ConfigErrorf("categories.default_buffer_m", "must be positive, got %v", c.Categories.DefaultBufferM)
	}
	for name, m := range c.Categories.Overrides {
		if m <= 0 {
			return resilience.ConfigErrorf("categories.overrides."+name, "must be positive, got %v", m)
		}
	}
	if _, err := export.ParseFormats(c.Output.Formats); err != nil {
		return resilience.NewConfigError("output.formats", err)
	}
	if c.Output.Dir == "" {
		return resilience.ConfigErrorf("output.dir", "must not be empty")
	}
	return c.PipelineOptions().Validate()
}

// PipelineOptions maps the zones, grid and geometry sections onto pipeline
// options.
func (c *Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Method:         model.ZoneMethod(c.Zones.Method),
		MinAreaM2:      c.Zones.MinAreaM2,
		GridStepM:      c.Grid.StepM,
		ZoneRadiusM:    c.Zones.RadiusM,
		Dissolve:       c.Zones.Dissolve,
		MaxPoints:      c.Grid.MaxPoints,
		Thinning:       c.Grid.Thinning,
		Seed:           c.Grid.Seed,
		QuadSegs:       c.Geometry.QuadSegs,
		Workers:        c.Grid.Workers,
		ChunkSize:      c.Grid.ChunkSize,
		ChunkThreshold: c.Grid.ChunkThreshold,
	}
}

// CategoryTable returns the configured category table: the file when one
// is set, otherwise the built-in defaults, with the buffer overrides
// applied.
func (c *Config) CategoryTable() (*category.Table, error) {
	var (
		table *category.Table
		err   error
	)
	if c.Categories.File != "" {
		table, err = category.LoadFile(c.Categories.File)
	} else {
		table, err = category.NewTable(category.Defaults(), c.Categories.DefaultBufferM)
	}
	if err != nil {
		return nil, err
	}
	return table.WithOverrides(c.Categories.Overrides)
}

// Sources returns the loader input described by the input section.
func (c *Config) Sources() loader.Sources {
	return loader.Sources{
		Boundary:  c.Input.Boundary,
		Obstacles: c.Input.Obstacles,
		Layers:    c.Input.ObstaclesShp,
		Frame:     model.Frame(c.Input.Frame),
	}
}

func formatNames(fs []export.Format) []string {
	out := make([]string, len(fs))
	for i, f := range fs {
		out[i] = string(f)
	}
	return out
}

// InitLogger configures the global zap logger based on config.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
