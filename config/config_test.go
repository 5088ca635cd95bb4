package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := Default()
	if cfg.Target.VectorWidth != 8 {
		t.Errorf("default vector width = %d; want 8", cfg.Target.VectorWidth)
	}
	if cfg.Opt.DisableCoherentControlFlow || cfg.Opt.DisableUniformControlFlow {
		t.Error("default config disables optimizations")
	}
}

func TestLoadProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.toml")
	content := `
[profile.options]
disable-coherent-control-flow = true

[profile.target]
vector-width = 16
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !cfg.Opt.DisableCoherentControlFlow {
		t.Error("disable-coherent-control-flow not read from profile")
	}
	if cfg.Opt.DisableUniformControlFlow {
		t.Error("unset option did not keep its default")
	}
	if cfg.Target.VectorWidth != 16 {
		t.Errorf("vector width = %d; want 16", cfg.Target.VectorWidth)
	}
}

func TestLoadRejectsBadWidth(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.toml")
	content := `
[profile.target]
vector-width = -4
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("negative vector width accepted")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("SPMDC_DISABLE_UNIFORM_CF", "1")
	t.Setenv("SPMDC_VECTOR_WIDTH", "4")

	cfg := FromEnv(Default())
	if !cfg.Opt.DisableUniformControlFlow {
		t.Error("SPMDC_DISABLE_UNIFORM_CF override ignored")
	}
	if cfg.Target.VectorWidth != 4 {
		t.Errorf("vector width = %d; want 4 from SPMDC_VECTOR_WIDTH", cfg.Target.VectorWidth)
	}
}
