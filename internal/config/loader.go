// internal/config/loader.go
//
// Configuration loader.
//
/*
Context
--------
`Load()` builds one immutable `Config` struct from three layers (highest
precedence last):

  1. Optional `.env` file at `<root>/conf/.env`.
  2. `conf/global.yaml`.
  3. Environment variables prefixed `INTAKE_`, where `__` maps to “.”
     (e.g., `INTAKE_HTTP__LISTEN_ADDR → http.listen_addr`).

After merging, the tree is unmarshalled into typed structs, defaulted,
validated, enriched with the runtime root path, and cached in an
`atomic.Pointer` for lock-free reads.  `Reload()` calls `Load()` again and
swaps the pointer.

Instrumentation
---------------
  • DEBUG – root discovery, YAML read.
  • ERROR – YAML parse, env overlay, unmarshal, validation failures.
  • INFO  – final “config loaded” with key highlights.
  • Logs use `zap.S()` so early boot issues surface before the file logger
    is installed.
*/
package config

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	koanf "github.com/knadh/koanf/v2"
	"go.uber.org/zap"
)

const envPrefix = "INTAKE_"

var current atomic.Pointer[Config]

/*──────────────────────────── root discovery ───────────────────────────────*/

// rootDir resolves INTAKE_ROOT or climbs directories until conf/global.yaml
// is found.  Falls back to the executable's parent when it lives in bin/.
func rootDir() string {
	if r := os.Getenv(envPrefix + "ROOT"); r != "" {
		return r
	}

	wd, _ := os.Getwd()
	dir := wd
	for {
		if _, err := os.Stat(filepath.Join(dir, "conf", "global.yaml")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	exe, _ := os.Executable()
	if filepath.Base(filepath.Dir(exe)) == "bin" {
		return filepath.Dir(filepath.Dir(exe))
	}
	return wd
}

/*─────────────────────────────── loader ───────────────────────────────────*/

// Load discovers the root and loads from it.
func Load() (*Config, error) { return LoadFrom(rootDir()) }

// LoadFrom reads .env, YAML, and env overrides below root, validates, and
// caches the result.
func LoadFrom(root string) (*Config, error) {
	zap.S().Debugw("config root resolved", "root", root)

	_ = godotenv.Load(filepath.Join(root, "conf", ".env"))

	k := koanf.New(".")

	yamlPath := filepath.Join(root, "conf", "global.yaml")
	if err := k.Load(file.Provider(yamlPath), yaml.Parser()); err != nil {
		zap.S().Errorw("config yaml load failed", "file", yamlPath, "err", err)
		return nil, err
	}
	zap.S().Debugw("config yaml loaded", "file", yamlPath)

	if err := k.Load(env.Provider(envPrefix, ".", func(s string) string {
		s = strings.TrimPrefix(s, envPrefix)
		return strings.ToLower(strings.ReplaceAll(s, "__", "."))
	}), nil); err != nil {
		zap.S().Errorw("config env overlay failed", "err", err)
		return nil, err
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		zap.S().Errorw("config unmarshal failed", "err", err)
		return nil, err
	}

	cfg.Paths.Root = root
	applyDefaults(&cfg)
	if err := validateStruct(&cfg); err != nil {
		zap.S().Errorw("config validation failed", "err", err)
		return nil, err
	}

	current.Store(&cfg)
	zap.S().Infow("config loaded",
		"listen_addr", cfg.HTTP.ListenAddr,
		"store", cfg.Store.Backend,
		"storage", cfg.Storage.Backend,
		"root", cfg.Paths.Root,
	)
	return &cfg, nil
}

func applyDefaults(c *Config) {
	if c.HTTP.MaxUploadMB == 0 {
		c.HTTP.MaxUploadMB = 16
	}
	if c.HTTP.ReadTimeout == 0 {
		c.HTTP.ReadTimeout = 15 * time.Second
	}
	if c.HTTP.WriteTimeout == 0 {
		c.HTTP.WriteTimeout = 30 * time.Second
	}
	if c.HTTP.IdleTimeout == 0 {
		c.HTTP.IdleTimeout = 60 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Dir == "" {
		c.Logging.Dir = "logs"
	}
	if c.Store.Backend == "" {
		c.Store.Backend = "memory"
	}
	if c.Redis.KeyPrefix == "" {
		c.Redis.KeyPrefix = "intake:"
	}
	if c.Storage.Backend == "" {
		c.Storage.Backend = "local"
	}
	if c.Storage.Local.Dir == "" {
		c.Storage.Local.Dir = "uploads"
	}
	c.Logging.Dir = c.abs(c.Logging.Dir)
	c.Storage.Local.Dir = c.abs(c.Storage.Local.Dir)
	if c.GeoIP.DBPath != "" {
		c.GeoIP.DBPath = c.abs(c.GeoIP.DBPath)
	}
}

func (c *Config) abs(p string) string {
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(c.Paths.Root, p)
}

/*──────────────────────────── secrets ─────────────────────────────────────*/

// SecretResolver turns a “vault:” reference into its plain value.
type SecretResolver interface {
	Resolve(ctx context.Context, ref string) (string, error)
}

// IsSecretRef reports whether s must go through a SecretResolver.
func IsSecretRef(s string) bool { return strings.HasPrefix(s, "vault:") }

// secretFields lists the secret fields the active backends read.
func (c *Config) secretFields() map[string]*string {
	out := map[string]*string{}
	switch c.Store.Backend {
	case "mysql":
		out["database.password"] = &c.Database.Password
	case "redis":
		out["redis.password"] = &c.Redis.Password
	}
	if c.Storage.Backend == "s3" {
		out["storage.s3.secret_key"] = &c.Storage.S3.SecretKey
	}
	return out
}

// ResolveSecrets replaces every vault reference among the active secret
// fields.  r may be nil when no field holds a reference.
func (c *Config) ResolveSecrets(ctx context.Context, r SecretResolver) error {
	for name, field := range c.secretFields() {
		if !IsSecretRef(*field) {
			continue
		}
		if r == nil {
			return fmt.Errorf("%s: vault reference but no vault client", name)
		}
		val, err := r.Resolve(ctx, *field)
		if err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
		*field = val
	}
	return nil
}

// NeedsVault reports whether any active secret field holds a vault
// reference.
func (c *Config) NeedsVault() bool {
	for _, f := range c.secretFields() {
		if IsSecretRef(*f) {
			return true
		}
	}
	return false
}

// DSN fills the password into the database template.
func (c *Config) DSN() string { return fmt.Sprintf(c.Database.DSN, c.Database.Password) }

/*──────────────────────────── helpers ─────────────────────────────────────*/

func Get() *Config  { return current.Load() }
func Reload() error { _, err := Load(); return err }
