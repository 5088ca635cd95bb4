package config

import (
	"fmt"
	"os"

	"github.com/pelletier/go-toml"
	"github.com/xyproto/env/v2"
)

// Options holds the optimization and diagnostic switches recognized by the
// statement passes.
type Options struct {
	// DisableCoherentControlFlow forces cif/cdo/cfor/cbreak/ccontinue/
	// creturn to behave as their plain counterparts.
	DisableCoherentControlFlow bool `toml:"disable-coherent-control-flow"`

	// DisableUniformControlFlow forces all conditional and loop tests to be
	// treated as varying, even when typed uniform.
	DisableUniformControlFlow bool `toml:"disable-uniform-control-flow"`

	// EmitInstrumentation inserts __do_instrument() callbacks at control
	// flow points in the generated code.
	EmitInstrumentation bool `toml:"instrument"`

	// LogLevel is one of the report.LogLevel* values.
	LogLevel int `toml:"log-level"`
}

// Target describes the compilation target as far as the statement core
// cares: how many program instances run in a gang.
type Target struct {
	VectorWidth int `toml:"vector-width"`
}

// Config is the compilation context threaded through type checking,
// optimization and code generation.
type Config struct {
	Opt    Options `toml:"options"`
	Target Target  `toml:"target"`
}

// tomlProfileFile is the on-disk shape of a build profile.
type tomlProfileFile struct {
	Profile *Config `toml:"profile"`
}

// Default returns the configuration used in the absence of a profile file:
// an 8-wide gang with all optimizations enabled.
func Default() *Config {
	return &Config{Target: Target{VectorWidth: 8}}
}

// Load reads a build profile from a TOML file.  Fields absent from the file
// keep their Default() values.
func Load(path string) (*Config, error) {
	buff, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read profile file: %w", err)
	}

	cfg := Default()
	pf := tomlProfileFile{Profile: cfg}
	if err := toml.Unmarshal(buff, &pf); err != nil {
		return nil, fmt.Errorf("error parsing profile file: %w", err)
	}

	if cfg.Target.VectorWidth <= 0 {
		return nil, fmt.Errorf("profile vector width must be positive; got %d", cfg.Target.VectorWidth)
	}

	return cfg, nil
}

// FromEnv applies SPMDC_* environment overrides on top of cfg and returns
// it.  Unset variables leave the corresponding field untouched.
func FromEnv(cfg *Config) *Config {
	if env.Has("SPMDC_DISABLE_COHERENT_CF") {
		cfg.Opt.DisableCoherentControlFlow = env.Bool("SPMDC_DISABLE_COHERENT_CF")
	}
	if env.Has("SPMDC_DISABLE_UNIFORM_CF") {
		cfg.Opt.DisableUniformControlFlow = env.Bool("SPMDC_DISABLE_UNIFORM_CF")
	}
	if env.Has("SPMDC_INSTRUMENT") {
		cfg.Opt.EmitInstrumentation = env.Bool("SPMDC_INSTRUMENT")
	}
	if env.Has("SPMDC_VECTOR_WIDTH") {
		cfg.Target.VectorWidth = env.Int("SPMDC_VECTOR_WIDTH", cfg.Target.VectorWidth)
	}
	return cfg
}
