// Package config loads the optional symlump.toml configuration file.
//
// Every field has a working default, so the file is optional. Command-line
// flags override file values.
//
//	[input]
//	dir = "data/saucy"
//	stats_dir = "data/logs"
//
//	[output]
//	dir = "out"
//
//	[analysis]
//	workers = 8
//	timeout = "2m"
//	node_limit = 100000000
//	alphabet = 2
//	verify = false
//
//	[oracle]
//	kind = "gap"          # or "closure"
//	gap_path = "/usr/local/bin/gap"
//	concurrency = 4
//
//	[cache]
//	backend = "redis"     # file, redis or none
//	redis_url = "redis://localhost:6379/0"
//	namespace = "study:karate:"
//
//	[mongo]
//	uri = "mongodb://localhost:27017"
//	database = "symlump"
//
//	[server]
//	addr = ":8080"
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"

	"github.com/matzehuels/symlump/pkg/errors"
	"github.com/matzehuels/symlump/pkg/pipeline"
)

// DefaultPath is the configuration file read when no path is given.
const DefaultPath = "symlump.toml"

// Oracle kinds.
const (
	OracleClosure = "closure"
	OracleGAP     = "gap"
)

// Cache backends.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"
)

// Config is the file configuration.
type Config struct {
	Input    Input    `toml:"input"`
	Output   Output   `toml:"output"`
	Analysis Analysis `toml:"analysis"`
	Oracle   Oracle   `toml:"oracle"`
	Cache    Cache    `toml:"cache"`
	Mongo    Mongo    `toml:"mongo"`
	Server   Server   `toml:"server"`
}

type Input struct {
	Dir      string `toml:"dir"`
	StatsDir string `toml:"stats_dir"` // defaults to Dir
}

type Output struct {
	Dir string `toml:"dir" validate:"required"`
}

type Analysis struct {
	Workers        int           `toml:"workers" validate:"gte=0"`
	Timeout        time.Duration `toml:"timeout" validate:"gte=0"`
	NodeLimit      int           `toml:"node_limit" validate:"gte=0"`
	Alphabet       int           `toml:"alphabet" validate:"gte=0"`
	MaxTermBits    int           `toml:"max_term_bits" validate:"gte=0"`
	Verify         bool          `toml:"verify"`
	VerifyMaxNodes int           `toml:"verify_max_nodes" validate:"gte=0,lte=16"`
}

type Oracle struct {
	Kind        string `toml:"kind" validate:"oneof=closure gap"`
	GAPPath     string `toml:"gap_path"`
	Concurrency int    `toml:"concurrency" validate:"gte=0"` // 0 means unlimited
	MaxOrder    int    `toml:"max_order" validate:"gte=0"`   // closure only
}

type Cache struct {
	Backend  string `toml:"backend" validate:"oneof=file redis none"`
	Dir      string `toml:"dir"` // file backend; defaults to the user cache dir
	RedisURL string `toml:"redis_url" validate:"required_if=Backend redis"`

	// Namespace prefixes every key, so several studies can share one Redis.
	Namespace string `toml:"namespace"`
}

type Mongo struct {
	URI        string `toml:"uri"` // empty disables the Mongo store
	Database   string `toml:"database" validate:"required_with=URI"`
	Collection string `toml:"collection"`
}

type Server struct {
	Addr string `toml:"addr" validate:"required"`
}

// Default returns the configuration used when no file exists.
func Default() *Config {
	return &Config{
		Input:  Input{Dir: "."},
		Output: Output{Dir: "out"},
		Oracle: Oracle{Kind: OracleClosure, GAPPath: "gap", Concurrency: 4},
		Cache:  Cache{Backend: CacheFile},
		Mongo:  Mongo{Database: "symlump"},
		Server: Server{Addr: ":8080"},
	}
}

// Load reads the file at path over the defaults. An empty path reads
// DefaultPath if it exists and otherwise returns the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		if _, err := os.Stat(DefaultPath); err != nil {
			return cfg, nil
		}
		path = DefaultPath
	}

	md, err := toml.DecodeFile(path, cfg)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "config %s", path)
		}
		return nil, errors.Wrap(errors.ErrCodeParse, err, "config %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, errors.New(errors.ErrCodeInvalidInput, "config %s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

var validate = validator.New()

// Validate checks field constraints.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid config: %s", formatValidationError(err))
	}
	return nil
}

func formatValidationError(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, e := range verrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return strings.Join(msgs, "; ")
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(e.Namespace())
	field = strings.TrimPrefix(field, "config.")
	switch e.Tag() {
	case "required", "required_if", "required_with":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, e.Param())
	case "lte":
		return fmt.Sprintf("%s must be at most %s", field, e.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// StatsDir returns the directory holding statistics logs.
func (c *Config) StatsDir() string {
	if c.Input.StatsDir != "" {
		return c.Input.StatsDir
	}
	return c.Input.Dir
}

// PipelineOptions converts the analysis section.
func (c *Config) PipelineOptions() pipeline.Options {
	a := c.Analysis
	return pipeline.Options{
		Workers:        a.Workers,
		Timeout:        a.Timeout,
		NodeLimit:      a.NodeLimit,
		Alphabet:       a.Alphabet,
		MaxTermBits:    a.MaxTermBits,
		Verify:         a.Verify,
		VerifyMaxNodes: a.VerifyMaxNodes,
	}
}
