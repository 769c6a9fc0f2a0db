package config

import (
	"os"
	"path/filepath"
	"reflect"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/kbukum/stagekit/errors"
	"github.com/kbukum/stagekit/version"
)

func TestServiceConfigApplyDefaults(t *testing.T) {
	t.Run("empty environment defaults to development", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc"}
		cfg.ApplyDefaults()
		if cfg.Environment != EnvDevelopment {
			t.Errorf("expected 'development', got %q", cfg.Environment)
		}
		if !cfg.Debug {
			t.Error("expected debug=true for development")
		}
		if cfg.Logging.ServiceName != "svc" {
			t.Errorf("expected logging service name 'svc', got %q", cfg.Logging.ServiceName)
		}
		if want := version.Get().Short(); cfg.Version != want {
			t.Errorf("expected version %q, got %q", want, cfg.Version)
		}
	})

	t.Run("production environment keeps debug false", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc", Environment: EnvProduction}
		cfg.ApplyDefaults()
		if cfg.Debug {
			t.Error("expected debug=false for production")
		}
	})

	t.Run("explicit logging service name is kept", func(t *testing.T) {
		cfg := ServiceConfig{Name: "svc"}
		cfg.Logging.ServiceName = "custom"
		cfg.ApplyDefaults()
		if cfg.Logging.ServiceName != "custom" {
			t.Errorf("expected 'custom', got %q", cfg.Logging.ServiceName)
		}
	})
}

func TestServiceConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ServiceConfig
		wantErr bool
		errMsg  string
	}{
		{"valid development", ServiceConfig{Name: "svc", Environment: EnvDevelopment}, false, ""},
		{"valid staging", ServiceConfig{Name: "svc", Environment: EnvStaging}, false, ""},
		{"valid production", ServiceConfig{Name: "svc", Environment: EnvProduction}, false, ""},
		{"missing name", ServiceConfig{Environment: EnvProduction}, true, "name"},
		{"invalid environment", ServiceConfig{Name: "svc", Environment: "invalid"}, true, "environment"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			tc.cfg.Logging.ApplyDefaults()
			err := tc.cfg.Validate()
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
					t.Errorf("expected INVALID_INPUT, got %v", err)
				}
				if !strings.Contains(err.Error(), tc.errMsg+":") {
					t.Errorf("expected field %q in %q", tc.errMsg, err.Error())
				}
			} else if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

type hostConfig struct {
	ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Pipeline      struct {
		Name           string        `mapstructure:"name"`
		Capacity       int           `mapstructure:"capacity"`
		ReportInterval time.Duration `mapstructure:"report_interval"`
	} `mapstructure:"pipeline"`
	defaulted bool
}

func (c *hostConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	if c.Pipeline.Capacity == 0 {
		c.Pipeline.Capacity = 4
	}
	c.defaulted = true
}

func (c *hostConfig) Validate() error {
	return c.ServiceConfig.Validate()
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write %s: %v", name, err)
	}
	return path
}

func TestLoadConfigWithYAML(t *testing.T) {
	configPath := writeFile(t, t.TempDir(), "config.yml", `
name: camera-pipeline
environment: staging
version: "1.0.0"
pipeline:
  name: stereo
  capacity: 8
  report_interval: 2s
`)

	var cfg hostConfig
	if err := LoadConfig("camera-pipeline", &cfg, WithConfigFile(configPath)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Name != "camera-pipeline" {
		t.Errorf("expected name 'camera-pipeline', got %q", cfg.Name)
	}
	if cfg.Environment != EnvStaging {
		t.Errorf("expected environment 'staging', got %q", cfg.Environment)
	}
	if cfg.Pipeline.Capacity != 8 {
		t.Errorf("expected capacity 8, got %d", cfg.Pipeline.Capacity)
	}
	if cfg.Pipeline.ReportInterval != 2*time.Second {
		t.Errorf("expected report interval 2s, got %v", cfg.Pipeline.ReportInterval)
	}
	if !cfg.defaulted {
		t.Error("expected ApplyDefaults to run after loading")
	}
}

func TestLoadConfigEnvOverridesFile(t *testing.T) {
	configPath := writeFile(t, t.TempDir(), "config.yml", `
name: camera-pipeline
pipeline:
  capacity: 8
`)
	t.Setenv("APP_PIPELINE_CAPACITY", "16")
	t.Setenv("PIPELINE_NAME", "unprefixed")

	var cfg hostConfig
	if err := LoadConfig("camera-pipeline", &cfg, WithConfigFile(configPath)); err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Pipeline.Capacity != 16 {
		t.Errorf("expected env override 16, got %d", cfg.Pipeline.Capacity)
	}
	if cfg.Pipeline.Name == "unprefixed" {
		t.Error("expected unprefixed variables to be ignored")
	}
}

func TestLoadConfigCustomEnvPrefix(t *testing.T) {
	t.Setenv("STAGES_NAME", "from-env")

	var cfg hostConfig
	err := LoadConfig("camera-pipeline", &cfg,
		WithConfigFile("/nonexistent/config.yml"),
		WithEnvFile("/nonexistent/.env"),
		WithEnvPrefix("STAGES"),
	)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "from-env" {
		t.Errorf("expected name 'from-env', got %q", cfg.Name)
	}
}

func TestLoadConfigEnvFile(t *testing.T) {
	dir := t.TempDir()
	envPath := writeFile(t, dir, ".env", "APP_NAME=from-dotenv\n")
	t.Cleanup(func() { os.Unsetenv("APP_NAME") })

	var cfg hostConfig
	err := LoadConfig("camera-pipeline", &cfg,
		WithConfigFile(filepath.Join(dir, "missing.yml")),
		WithEnvFile(envPath),
	)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "from-dotenv" {
		t.Errorf("expected name 'from-dotenv', got %q", cfg.Name)
	}
}

func TestLoadConfigDefaults(t *testing.T) {
	var cfg hostConfig
	err := LoadConfig("camera-pipeline", &cfg,
		WithConfigFile("/nonexistent/config.yml"),
		WithEnvFile("/nonexistent/.env"),
		WithDefault("name", "defaulted"),
		WithDefault("pipeline.capacity", 2),
	)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Name != "defaulted" || cfg.Pipeline.Capacity != 2 {
		t.Errorf("expected defaults applied, got name=%q capacity=%d", cfg.Name, cfg.Pipeline.Capacity)
	}
}

func TestLoadConfigValidationFailure(t *testing.T) {
	var cfg hostConfig
	err := LoadConfig("camera-pipeline", &cfg,
		WithConfigFile("/nonexistent/config.yml"),
		WithEnvFile("/nonexistent/.env"),
	)
	if err == nil {
		t.Fatal("expected validation error for missing name")
	}
	if !errors.HasCode(err, errors.ErrCodeInvalidInput) {
		t.Errorf("expected INVALID_INPUT in chain, got %v", err)
	}
}

func TestLoadConfigMissingFile(t *testing.T) {
	type plainConfig struct {
		Name string `mapstructure:"name"`
	}

	var cfg plainConfig
	// With no config file found, LoadConfig should still succeed (just empty config)
	err := LoadConfig("nonexistent-service", &cfg, WithConfigFile("/nonexistent/path.yml"))
	if err != nil {
		t.Fatalf("expected LoadConfig to succeed with missing file, got %v", err)
	}
}

func TestResolverWithMockFS(t *testing.T) {
	fs := &mockFS{files: map[string]bool{
		"./cmd/my-svc/config.yml": true,
		"./config/.env":           true,
	}}
	resolver := &Resolver{FileSystem: fs}
	files := resolver.ResolveFiles("my-svc", LoaderConfig{})
	if files.ConfigFile != "./cmd/my-svc/config.yml" {
		t.Errorf("expected config file at ./cmd/my-svc/config.yml, got %q", files.ConfigFile)
	}
	if files.EnvFile != "./config/.env" {
		t.Errorf("expected env file at ./config/.env, got %q", files.EnvFile)
	}
}

func TestResolverExplicitPaths(t *testing.T) {
	resolver := &Resolver{FileSystem: &mockFS{}}
	files := resolver.ResolveFiles("my-svc", LoaderConfig{ConfigFile: "a.yml", EnvFile: "b.env"})
	if files.ConfigFile != "a.yml" || files.EnvFile != "b.env" {
		t.Errorf("expected explicit paths, got %+v", files)
	}
}

func TestKeys(t *testing.T) {
	got := keys(reflect.TypeOf(&hostConfig{}), "")
	want := []string{"name", "environment", "version", "debug", "logging.level", "pipeline.name", "pipeline.capacity", "pipeline.report_interval"}
	for _, w := range want {
		if !slices.Contains(got, w) {
			t.Errorf("expected key %q in %v", w, got)
		}
	}
	if slices.Contains(got, "defaulted") || slices.Contains(got, "serviceconfig") {
		t.Errorf("unexpected key in %v", got)
	}
}

func TestSearchDirs(t *testing.T) {
	dirs := searchDirs("camera-host")
	for _, w := range []string{"cmd/camera-host", "../cmd/host", "config", "../../config", "."} {
		if !slices.Contains(dirs, w) {
			t.Errorf("expected %q in %v", w, dirs)
		}
	}
	if dirs[0] != "cmd/camera-host" {
		t.Errorf("expected cmd/camera-host first, got %q", dirs[0])
	}
}

func TestResolverParentDirectory(t *testing.T) {
	fs := &mockFS{files: map[string]bool{"../config/config.yml": true}}
	files := (&Resolver{FileSystem: fs}).ResolveFiles("my-svc", LoaderConfig{})
	if files.ConfigFile != "../config/config.yml" {
		t.Errorf("expected ../config/config.yml, got %q", files.ConfigFile)
	}
	if files.EnvFile != "" {
		t.Errorf("expected no env file, got %q", files.EnvFile)
	}
}

type mockFS struct {
	files map[string]bool
}

func (m *mockFS) Exists(path string) bool { return m.files[path] }
func (m *mockFS) LoadEnv(path string) error { return nil }

func TestWithFileSystemOption(t *testing.T) {
	var lc LoaderConfig
	WithFileSystem(&mockFS{})(&lc)
	if lc.FileSystem == nil {
		t.Error("expected FileSystem to be set")
	}
}

func TestWithConfigFileOption(t *testing.T) {
	var lc LoaderConfig
	WithConfigFile("/path/to/config.yml")(&lc)
	if lc.ConfigFile != "/path/to/config.yml" {
		t.Errorf("expected config file path, got %q", lc.ConfigFile)
	}
}

func TestWithEnvFileOption(t *testing.T) {
	var lc LoaderConfig
	WithEnvFile("/path/to/.env")(&lc)
	if lc.EnvFile != "/path/to/.env" {
		t.Errorf("expected env file path, got %q", lc.EnvFile)
	}
}
