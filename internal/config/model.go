// internal/config/model.go
//
// Typed configuration model for the intake service.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                          – dotenv values,
//   • `conf/global.yaml`                       – primary static file,
//   • `INTAKE_`-prefixed environment overrides – highest precedence.
//
// Secret fields may hold a `vault:<mount/path>#<key>` reference.  The
// loader leaves them as-is; `ResolveSecrets` swaps them for plain values
// once a Vault client exists.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.

package config

import (
	"time"

	"github.com/yanizio/intake/internal/form"
	"github.com/yanizio/intake/internal/intake"
)

//
// HTTP section
//

// HTTP holds web-server tunables.
type HTTP struct {
	ListenAddr   string        `koanf:"listen_addr"   validate:"required,hostname_port"`
	ForceHTTPS   bool          `koanf:"force_https"`
	MaxUploadMB  int64         `koanf:"max_upload_mb" validate:"gte=1,lte=512"`
	ReadTimeout  time.Duration `koanf:"read_timeout"`
	WriteTimeout time.Duration `koanf:"write_timeout"`
	IdleTimeout  time.Duration `koanf:"idle_timeout"`
}

//
// Logging section
//

type Logging struct {
	Level string `koanf:"level" validate:"omitempty,oneof=debug info warn error"`
	Dir   string `koanf:"dir"` // relative to Paths.Root when not absolute
	Tee   bool   `koanf:"tee"`
}

//
// Store section
//

// Store selects the applicant registry backend.
type Store struct {
	Backend string `koanf:"backend" validate:"required,oneof=memory mysql redis"`
}

// Database holds the DSN template and its secret.  DSN carries one %s verb
// where the password goes, so credentials never sit in flat files.
type Database struct {
	DSN      string `koanf:"dsn"      validate:"required_if=Backend mysql"`
	Password string `koanf:"password"`
	MaxOpen  int    `koanf:"max_open"`
	MaxIdle  int    `koanf:"max_idle"`

	Backend string `koanf:"-"` // copied from Store for validation
}

type Redis struct {
	Addr      string `koanf:"addr"       validate:"required_if=Backend redis"`
	Password  string `koanf:"password"`
	DB        int    `koanf:"db"`
	KeyPrefix string `koanf:"key_prefix"`

	Backend string `koanf:"-"`
}

//
// Storage section
//

type Storage struct {
	Backend string       `koanf:"backend" validate:"required,oneof=local s3"`
	Local   LocalStorage `koanf:"local"`
	S3      S3Storage    `koanf:"s3"`
}

type LocalStorage struct {
	Dir string `koanf:"dir"`
}

type S3Storage struct {
	Bucket         string        `koanf:"bucket"`
	Region         string        `koanf:"region"`
	Prefix         string        `koanf:"prefix"`
	Endpoint       string        `koanf:"endpoint"`
	AccessKeyID    string        `koanf:"access_key_id"`
	SecretKey      string        `koanf:"secret_key"`
	ForcePathStyle bool          `koanf:"force_path_style"`
	UploadTimeout  time.Duration `koanf:"upload_timeout"`
}

//
// Intake section
//

// Intake mirrors intake.Rules.  Unset keys fall back to the engine
// defaults; a configured value is used as given.
type Intake struct {
	MaxEntries           *int     `koanf:"max_entries"  validate:"omitempty,gte=1,lte=500"`
	MinimumAge           *int     `koanf:"minimum_age"  validate:"omitempty,gte=0,lte=120"`
	ResumeExtensions     []string `koanf:"resume_extensions"`
	PhotoExtensions      []string `koanf:"photo_extensions"`
	SubdivisionCountries []string `koanf:"subdivision_countries"`
	EducationPolicy      string   `koanf:"education_policy" validate:"omitempty,oneof=soft strict"`
}

type GeoIP struct {
	DBPath string `koanf:"db_path"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime.  `Root` is INTAKE_ROOT or the nearest
// parent holding conf/global.yaml.
type Paths struct {
	Root string
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads.
type Config struct {
	HTTP     HTTP     `koanf:"http"`
	Logging  Logging  `koanf:"logging"`
	Store    Store    `koanf:"store"`
	Database Database `koanf:"database"`
	Redis    Redis    `koanf:"redis"`
	Storage  Storage  `koanf:"storage"`
	Intake   Intake   `koanf:"intake"`
	GeoIP    GeoIP    `koanf:"geoip"`
	Paths    Paths    `koanf:"-"`
}

// Rules converts the intake section into engine rules.
func (c *Config) Rules() (intake.Rules, error) {
	r := intake.DefaultRules()
	in := c.Intake
	if in.MaxEntries != nil {
		r.MaxEntries = *in.MaxEntries
	}
	if in.MinimumAge != nil {
		r.MinimumAge = *in.MinimumAge
	}
	if len(in.ResumeExtensions) > 0 {
		r.ResumeExtensions = in.ResumeExtensions
	}
	if len(in.PhotoExtensions) > 0 {
		r.PhotoExtensions = in.PhotoExtensions
	}
	if len(in.SubdivisionCountries) > 0 {
		r.SubdivisionCountries = in.SubdivisionCountries
	}
	p, err := form.ParsePolicy(in.EducationPolicy)
	if err != nil {
		return r, err
	}
	r.EducationPolicy = p
	return r, nil
}

// MaxUploadBytes is the multipart memory limit for one request.
func (h HTTP) MaxUploadBytes() int64 { return h.MaxUploadMB << 20 }
