package config

import (
	"fmt"
	"os"
	"path"
	"reflect"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/kbukum/stagekit/logger"
)

// DefaultEnvPrefix scopes the environment variables bound to configuration
// keys: APP_PIPELINE_CAPACITY sets pipeline.capacity.
const DefaultEnvPrefix = "APP"

// FileSystem is the file access the loader needs. Tests replace it.
type FileSystem interface {
	Exists(path string) bool
	LoadEnv(path string) error
}

// OSFileSystem reads the real filesystem and process environment.
type OSFileSystem struct{}

func (OSFileSystem) Exists(p string) bool {
	_, err := os.Stat(p)
	return err == nil
}

// LoadEnv adds the variables in the .env file at p to the process
// environment. Variables already set are kept.
func (OSFileSystem) LoadEnv(p string) error { return godotenv.Load(p) }

// LoaderConfig holds the loader dependencies and overrides.
type LoaderConfig struct {
	FileSystem FileSystem
	ConfigFile string
	EnvFile    string
	EnvPrefix  string
	Defaults   map[string]any
}

// LoaderOption configures LoadConfig.
type LoaderOption func(*LoaderConfig)

func WithFileSystem(fs FileSystem) LoaderOption {
	return func(lc *LoaderConfig) { lc.FileSystem = fs }
}

// WithConfigFile skips the search and reads the YAML file at path. A
// missing file is not an error.
func WithConfigFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.ConfigFile = path }
}

// WithEnvFile skips the search and loads the .env file at path.
func WithEnvFile(path string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvFile = path }
}

// WithEnvPrefix replaces DefaultEnvPrefix. An empty prefix binds bare
// variable names.
func WithEnvPrefix(prefix string) LoaderOption {
	return func(lc *LoaderConfig) { lc.EnvPrefix = prefix }
}

// WithDefault sets the value of a dotted key when neither file nor
// environment provide one.
func WithDefault(key string, value any) LoaderOption {
	return func(lc *LoaderConfig) {
		if lc.Defaults == nil {
			lc.Defaults = make(map[string]any)
		}
		lc.Defaults[key] = value
	}
}

// LoadConfig fills cfg, a pointer to a mapstructure-tagged struct, for the
// named service. Sources in increasing precedence: WithDefault values, the
// YAML config file, then prefixed environment variables (a .env file is
// loaded into the environment first). When cfg implements Config its
// defaults are applied and it is validated.
func LoadConfig(service string, cfg any, opts ...LoaderOption) error {
	lc := LoaderConfig{EnvPrefix: DefaultEnvPrefix}
	for _, opt := range opts {
		opt(&lc)
	}
	if lc.FileSystem == nil {
		lc.FileSystem = OSFileSystem{}
	}
	files := (&Resolver{FileSystem: lc.FileSystem}).ResolveFiles(service, lc)

	v := viper.New()
	for key, value := range lc.Defaults {
		v.SetDefault(key, value)
	}
	if files.ConfigFile != "" && lc.FileSystem.Exists(files.ConfigFile) {
		v.SetConfigFile(files.ConfigFile)
		if err := v.ReadInConfig(); err != nil {
			logger.Warn("Config file ignored", logger.Fields("file", files.ConfigFile, logger.FieldError, err.Error()))
		}
	}
	if files.EnvFile != "" && lc.FileSystem.Exists(files.EnvFile) {
		if err := lc.FileSystem.LoadEnv(files.EnvFile); err != nil {
			logger.Warn("Env file ignored", logger.Fields("file", files.EnvFile, logger.FieldError, err.Error()))
		}
	}

	v.SetEnvPrefix(lc.EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range keys(reflect.TypeOf(cfg), "") {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("binding %s: %w", key, err)
		}
	}

	if err := v.Unmarshal(cfg); err != nil {
		return fmt.Errorf("decoding config for %s: %w", service, err)
	}
	if c, ok := cfg.(Config); ok {
		c.ApplyDefaults()
		if err := c.Validate(); err != nil {
			return fmt.Errorf("invalid config for %s: %w", service, err)
		}
	}
	return nil
}

var timeType = reflect.TypeOf(time.Time{})

// keys lists the dotted leaf keys of a mapstructure-tagged struct, the way
// viper decodes it. Viper only unmarshals environment values for keys it
// knows, so every leaf is bound explicitly.
func keys(t reflect.Type, prefix string) []string {
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct || t == timeType {
		return nil
	}

	var out []string
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, opts, _ := strings.Cut(f.Tag.Get("mapstructure"), ",")
		if name == "-" {
			continue
		}
		if strings.Contains(opts, "squash") {
			out = append(out, keys(f.Type, prefix)...)
			continue
		}
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		key := prefix + name
		if nested := keys(f.Type, key+"."); len(nested) > 0 {
			out = append(out, nested...)
			continue
		}
		out = append(out, key)
	}
	return out
}

// Resolver locates a service's config and .env files.
type Resolver struct {
	FileSystem FileSystem
}

// ResolvedFiles are the files LoadConfig reads; empty when none was found.
type ResolvedFiles struct {
	ConfigFile string
	EnvFile    string
}

// ResolveFiles returns the explicit paths in opts, searching for the ones
// left empty.
func (r *Resolver) ResolveFiles(service string, opts LoaderConfig) ResolvedFiles {
	files := ResolvedFiles{ConfigFile: opts.ConfigFile, EnvFile: opts.EnvFile}
	dirs := searchDirs(service)
	if files.ConfigFile == "" {
		files.ConfigFile = r.first(dirs, "config.yml", "config.yaml")
	}
	if files.EnvFile == "" {
		files.EnvFile = r.first(dirs, ".env."+service, ".env")
	}
	return files
}

// first returns the first existing name, trying every directory for a name
// before moving to the next name.
func (r *Resolver) first(dirs []string, names ...string) string {
	for _, name := range names {
		for _, dir := range dirs {
			p := path.Join(dir, name)
			if !strings.HasPrefix(p, "..") {
				p = "./" + p
			}
			if r.FileSystem.Exists(p) {
				return p
			}
		}
	}
	return ""
}

// searchDirs lists the directories a host binary is usually run from
// relative to its sources: cmd/<service>, config/<service>, config and the
// working directory, each also from one and two levels up. A dashed
// service name is also searched by its last segment ("camera-host" as
// "host").
func searchDirs(service string) []string {
	names := []string{service}
	if i := strings.LastIndex(service, "-"); i >= 0 && i < len(service)-1 {
		names = append(names, service[i+1:])
	}

	var bases []string
	for _, n := range names {
		bases = append(bases, "cmd/"+n)
	}
	for _, n := range names {
		bases = append(bases, "config/"+n)
	}
	bases = append(bases, "config", ".")

	var dirs []string
	for _, b := range bases {
		for _, up := range []string{".", "..", "../.."} {
			dirs = append(dirs, path.Join(up, b))
		}
	}
	return dirs
}
