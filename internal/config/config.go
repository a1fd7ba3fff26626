// Package config loads wigmesh settings from an optional JSON, YAML or
// TOML file, WIGMESH_* environment variables and built-in defaults.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/chazu/wigmesh/pkg/geom"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, with "." in keys
// replaced by "_": WIGMESH_RESOLUTION_CHORD_RES.
const EnvPrefix = "WIGMESH"

// Kernel names accepted by union.kernel.
const (
	KernelSDF    = "sdfx"
	KernelConcat = "concat"
)

// UnionConfig holds the merge settings.
type UnionConfig struct {
	Kernel    string `json:"kernel" mapstructure:"kernel"`
	MeshCells int    `json:"mesh_cells" mapstructure:"mesh_cells"`
	Refine    int    `json:"refine" mapstructure:"refine"`
}

// ExportConfig holds the STL writer settings.
type ExportConfig struct {
	ASCII     bool   `json:"ascii" mapstructure:"ascii"`
	OutputDir string `json:"output_dir" mapstructure:"output_dir"`
}

// PreviewConfig holds the PNG snapshot size.
type PreviewConfig struct {
	Width  int `json:"width" mapstructure:"width"`
	Height int `json:"height" mapstructure:"height"`
}

// Config is the full settings tree.
type Config struct {
	LogLevel    string          `json:"log_level" mapstructure:"log_level"`
	LogFormat   string          `json:"log_format" mapstructure:"log_format"`
	EvalTimeout time.Duration   `json:"eval_timeout" mapstructure:"eval_timeout"`
	Resolution  geom.Resolution `json:"resolution" mapstructure:"resolution"`
	Union       UnionConfig     `json:"union" mapstructure:"union"`
	Export      ExportConfig    `json:"export" mapstructure:"export"`
	Preview     PreviewConfig   `json:"preview" mapstructure:"preview"`
}

func setDefaults(v *viper.Viper) {
	res := geom.DefaultResolution()

	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("eval_timeout", "10s")

	v.SetDefault("resolution.chord_res", res.ChordRes)
	v.SetDefault("resolution.span_res", res.SpanRes)
	v.SetDefault("resolution.fuselage_long_res", res.FuselageLongRes)
	v.SetDefault("resolution.fuselage_radial_res", res.FuselageRadialRes)

	v.SetDefault("union.kernel", KernelSDF)
	v.SetDefault("union.mesh_cells", 96)
	v.SetDefault("union.refine", 0)

	v.SetDefault("export.ascii", false)
	v.SetDefault("export.output_dir", ".")

	v.SetDefault("preview.width", 800)
	v.SetDefault("preview.height", 450)
}

// FlagKeys maps command line flag names to the settings they override.
var FlagKeys = map[string]string{
	"log-level":  "log_level",
	"chord-res":  "resolution.chord_res",
	"span-res":   "resolution.span_res",
	"long-res":   "resolution.fuselage_long_res",
	"radial-res": "resolution.fuselage_radial_res",
	"kernel":     "union.kernel",
	"cells":      "union.mesh_cells",
	"refine":     "union.refine",
	"ascii":      "export.ascii",
}

// Load reads the file at path, if path is not empty, over the defaults
// and applies environment overrides. Flags in fs named in FlagKeys
// override everything when set. fs may be nil. The result is validated.
func Load(path string, fs *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if fs != nil {
		for name, key := range FlagKeys {
			if f := fs.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("error binding flag %s: %w", name, err)
				}
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("error decoding config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Default returns the built-in settings.
func Default() *Config {
	c, err := Load("", nil)
	if err != nil {
		panic(err)
	}
	return c
}

// Validate checks values viper cannot type-check.
func (c *Config) Validate() error {
	if err := c.Resolution.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	switch c.Union.Kernel {
	case KernelSDF, KernelConcat:
	default:
		return fmt.Errorf("config: unknown union kernel %q", c.Union.Kernel)
	}
	if c.Union.Refine < 0 {
		return fmt.Errorf("config: union refine %d is negative", c.Union.Refine)
	}
	if c.EvalTimeout <= 0 {
		return fmt.Errorf("config: eval_timeout must be positive")
	}
	return nil
}
