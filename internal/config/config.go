// Package config assembles run settings from, in rising precedence,
// built-in defaults, a YAML file, REGEXPORT_* environment variables (after
// an optional .env file is loaded), and command-line flags.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/joshuapare/regexport/internal/logging"
	"github.com/joshuapare/regexport/internal/printer"
	"github.com/joshuapare/regexport/internal/serialize"
	"github.com/joshuapare/regexport/pkg/types"
)

// EnvPrefix prefixes every environment variable the tool reads.
const EnvPrefix = "REGEXPORT_"

// DefaultEnvFile is loaded when present and no other file is named.
const DefaultEnvFile = ".env"

// PathListSeparator splits REGEXPORT_PATHS.
const PathListSeparator = ";"

// Source names where keys are read from.
type Source string

const (
	SourceAuto Source = ""     // hive or reg when a file is given, else live
	SourceLive Source = "live" // the running Windows registry
	SourceHive Source = "hive" // an offline regf hive file
	SourceReg  Source = "reg"  // a .reg text export
)

// Mode is the command a configuration is validated for.
type Mode int

const (
	ModeShow Mode = iota
	ModeExport
	ModeValidate
)

// Config is the complete run configuration.
type Config struct {
	Paths         []string `yaml:"paths"`
	Recurse       bool     `yaml:"recurse"`
	Format        string   `yaml:"format"`
	Output        string   `yaml:"output"`
	ExcludeBinary bool     `yaml:"exclude_binary"`
	Computername  string   `yaml:"computername"`

	Source    Source `yaml:"source"`
	HiveFile  string `yaml:"hive_file"`
	HiveMount string `yaml:"hive_mount"`
	RegFile   string `yaml:"reg_file"`

	// RegEncoding applies to .reg files without a byte order mark.
	RegEncoding string `yaml:"reg_encoding"`

	Style       string `yaml:"style"`
	NoColor     bool   `yaml:"no_color"`
	MetricsFile string `yaml:"metrics_file"`

	Log Log `yaml:"log"`
}

// Log holds logger settings; see logging.Options.
type Log struct {
	Level      string `yaml:"level"`
	Format     string `yaml:"format"`
	File       string `yaml:"file"`
	MaxSizeMB  int    `yaml:"max_size_mb"`
	MaxBackups int    `yaml:"max_backups"`
	MaxAgeDays int    `yaml:"max_age_days"`
	Compress   bool   `yaml:"compress"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Style: string(printer.StyleTable),
		Log: Log{
			Level:      "warn",
			Format:     "text",
			MaxSizeMB:  logging.DefaultMaxSizeMB,
			MaxBackups: logging.DefaultMaxBackups,
			MaxAgeDays: logging.DefaultMaxAgeDays,
		},
	}
}

// LoadFile overlays the YAML file at path onto c. Unknown keys are errors.
func (c *Config) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return types.Wrap(types.ErrKindConfig, err, "parse config file %s", path)
	}
	return nil
}

// LoadEnvFile loads path into the process environment without overriding
// variables that are already set. An empty path means DefaultEnvFile, which
// may be absent; a named file must exist.
func LoadEnvFile(path string) error {
	required := path != ""
	if !required {
		path = DefaultEnvFile
	}
	if err := godotenv.Load(path); err != nil {
		if !required && errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return types.Wrap(types.ErrKindConfig, err, "load env file %s", path)
	}
	return nil
}

// ApplyEnv overlays REGEXPORT_* variables onto c. lookup is normally
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	var errs []error
	boolean := func(name string, dst *bool) {
		if v, ok := lookup(EnvPrefix + name); ok {
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, types.Wrap(types.ErrKindConfig, err, "%s%s", EnvPrefix, name))
				return
			}
			*dst = b
		}
	}
	integer := func(name string, dst *int) {
		if v, ok := lookup(EnvPrefix + name); ok {
			n, err := strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				errs = append(errs, types.Wrap(types.ErrKindConfig, err, "%s%s", EnvPrefix, name))
				return
			}
			*dst = n
		}
	}

	if v, ok := lookup(EnvPrefix + "PATHS"); ok {
		c.Paths = SplitPaths(v)
	}
	boolean("RECURSE", &c.Recurse)
	str("FORMAT", &c.Format)
	str("OUTPUT", &c.Output)
	boolean("EXCLUDE_BINARY", &c.ExcludeBinary)
	str("COMPUTERNAME", &c.Computername)

	if v, ok := lookup(EnvPrefix + "SOURCE"); ok {
		c.Source = Source(strings.ToLower(strings.TrimSpace(v)))
	}
	str("HIVE_FILE", &c.HiveFile)
	str("HIVE_MOUNT", &c.HiveMount)
	str("REG_FILE", &c.RegFile)
	str("REG_ENCODING", &c.RegEncoding)

	str("STYLE", &c.Style)
	boolean("NO_COLOR", &c.NoColor)
	str("METRICS_FILE", &c.MetricsFile)

	str("LOG_LEVEL", &c.Log.Level)
	str("LOG_FORMAT", &c.Log.Format)
	str("LOG_FILE", &c.Log.File)
	integer("LOG_MAX_SIZE_MB", &c.Log.MaxSizeMB)
	integer("LOG_MAX_BACKUPS", &c.Log.MaxBackups)
	integer("LOG_MAX_AGE_DAYS", &c.Log.MaxAgeDays)
	boolean("LOG_COMPRESS", &c.Log.Compress)

	return errors.Join(errs...)
}

// SplitPaths splits a PathListSeparator-joined list, dropping blanks.
func SplitPaths(s string) []string {
	var out []string
	for _, p := range strings.Split(s, PathListSeparator) {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// EffectiveSource resolves SourceAuto from the files that are set.
func (c Config) EffectiveSource() Source {
	if c.Source != SourceAuto {
		return c.Source
	}
	switch {
	case c.HiveFile != "":
		return SourceHive
	case c.RegFile != "":
		return SourceReg
	default:
		return SourceLive
	}
}

// Validate checks c for mode. All problems are reported together.
func (c Config) Validate(mode Mode) error {
	var errs []error
	bad := func(format string, args ...any) {
		errs = append(errs, types.Errorf(types.ErrKindConfig, format, args...))
	}

	if mode == ModeExport {
		if strings.TrimSpace(c.Format) == "" {
			bad("export needs a format")
		} else if _, err := serialize.ParseFormat(c.Format); err != nil {
			errs = append(errs, err)
		}
		if strings.TrimSpace(c.Output) == "" {
			bad("export needs an output file")
		}
	}

	if c.HiveFile != "" && c.RegFile != "" {
		bad("hive file and reg file are mutually exclusive")
	}
	switch c.Source {
	case SourceAuto:
	case SourceLive:
		if c.HiveFile != "" || c.RegFile != "" {
			bad("source live conflicts with an input file")
		}
	case SourceHive:
		if c.HiveFile == "" {
			bad("source hive needs a hive file")
		}
		if c.RegFile != "" {
			bad("source hive conflicts with a reg file")
		}
	case SourceReg:
		if c.RegFile == "" {
			bad("source reg needs a reg file")
		}
		if c.HiveFile != "" {
			bad("source reg conflicts with a hive file")
		}
	default:
		bad("unknown source %q (want live, hive or reg)", c.Source)
	}
	if c.HiveMount != "" && c.EffectiveSource() != SourceHive {
		bad("hive mount only applies to a hive source")
	}

	if mode == ModeShow {
		if _, err := printer.ParseStyle(c.Style); err != nil {
			errs = append(errs, err)
		}
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		bad("unknown log format %q (want text or json)", c.Log.Format)
	}
	return errors.Join(errs...)
}
