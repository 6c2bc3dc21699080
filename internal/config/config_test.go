package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joshuapare/regexport/pkg/types"
)

func envMap(m map[string]string) func(string) (string, bool) {
	return func(k string) (string, bool) {
		v, ok := m[k]
		return v, ok
	}
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "regexport.yaml", `
paths:
  - HKCU:\SOFTWARE\Test
  - HKLM\SOFTWARE\Vendor
recurse: true
format: csv
output: out.csv
exclude_binary: true
source: hive
hive_file: /mnt/SOFTWARE
log:
  level: debug
  file: /var/log/regexport.log
`)
	cfg := Default()
	require.NoError(t, cfg.LoadFile(path))

	assert.Equal(t, []string{`HKCU:\SOFTWARE\Test`, `HKLM\SOFTWARE\Vendor`}, cfg.Paths)
	assert.True(t, cfg.Recurse)
	assert.Equal(t, "csv", cfg.Format)
	assert.True(t, cfg.ExcludeBinary)
	assert.Equal(t, SourceHive, cfg.Source)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format, "defaults survive keys the file omits")
	assert.Equal(t, "table", cfg.Style)
}

func TestLoadFile_Errors(t *testing.T) {
	cfg := Default()
	err := cfg.LoadFile(writeFile(t, "bad.yaml", "recurse: [nope"))
	assert.True(t, errors.Is(err, types.ErrConfig))

	err = cfg.LoadFile(writeFile(t, "unknown.yaml", "recursive: true\n"))
	assert.True(t, errors.Is(err, types.ErrConfig), "unknown keys are rejected")

	require.NoError(t, cfg.LoadFile(writeFile(t, "empty.yaml", "")))

	err = cfg.LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	cfg.Format = "json"
	err := cfg.ApplyEnv(envMap(map[string]string{
		"REGEXPORT_PATHS":           `HKCU\A; HKCU\B ;;`,
		"REGEXPORT_RECURSE":         "true",
		"REGEXPORT_FORMAT":          "xml",
		"REGEXPORT_SOURCE":          " Reg ",
		"REGEXPORT_REG_FILE":        "dump.reg",
		"REGEXPORT_LOG_MAX_BACKUPS": "9",
	}))
	require.NoError(t, err)

	assert.Equal(t, []string{`HKCU\A`, `HKCU\B`}, cfg.Paths)
	assert.True(t, cfg.Recurse)
	assert.Equal(t, "xml", cfg.Format, "environment overrides earlier layers")
	assert.Equal(t, SourceReg, cfg.Source)
	assert.Equal(t, "dump.reg", cfg.RegFile)
	assert.Equal(t, 9, cfg.Log.MaxBackups)
}

func TestApplyEnv_BadValues(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"REGEXPORT_RECURSE":         "sometimes",
		"REGEXPORT_LOG_MAX_SIZE_MB": "big",
	}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, types.ErrConfig))
	assert.Contains(t, err.Error(), "REGEXPORT_RECURSE")
	assert.Contains(t, err.Error(), "REGEXPORT_LOG_MAX_SIZE_MB")
}

func TestLoadEnvFile(t *testing.T) {
	path := writeFile(t, "test.env", "REGEXPORT_TEST_FORMAT=yaml\nREGEXPORT_TEST_KEEP=fromfile\n")
	t.Setenv("REGEXPORT_TEST_KEEP", "fromenv")
	t.Cleanup(func() { os.Unsetenv("REGEXPORT_TEST_FORMAT") })

	require.NoError(t, LoadEnvFile(path))
	assert.Equal(t, "yaml", os.Getenv("REGEXPORT_TEST_FORMAT"))
	assert.Equal(t, "fromenv", os.Getenv("REGEXPORT_TEST_KEEP"), "set variables win")

	err := LoadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
	assert.True(t, errors.Is(err, types.ErrConfig), "a named file must exist")
}

func TestLoadEnvFile_DefaultMayBeAbsent(t *testing.T) {
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(t.TempDir()))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	assert.NoError(t, LoadEnvFile(""))
}

func TestEffectiveSource(t *testing.T) {
	assert.Equal(t, SourceLive, Config{}.EffectiveSource())
	assert.Equal(t, SourceHive, Config{HiveFile: "x"}.EffectiveSource())
	assert.Equal(t, SourceReg, Config{RegFile: "x"}.EffectiveSource())
	assert.Equal(t, SourceLive, Config{Source: SourceLive}.EffectiveSource())
}

func TestValidate(t *testing.T) {
	base := Default()

	tests := []struct {
		name string
		mode Mode
		edit func(*Config)
		ok   bool
	}{
		{"show defaults", ModeShow, func(*Config) {}, true},
		{"validate defaults", ModeValidate, func(*Config) {}, true},
		{"export complete", ModeExport, func(c *Config) { c.Format, c.Output = "CSV", "out.csv" }, true},
		{"export reg accepted here", ModeExport, func(c *Config) { c.Format, c.Output = "reg", "out.reg" }, true},
		{"export without format", ModeExport, func(c *Config) { c.Output = "out.csv" }, false},
		{"export without output", ModeExport, func(c *Config) { c.Format = "csv" }, false},
		{"export unknown format", ModeExport, func(c *Config) { c.Format, c.Output = "html", "x" }, false},
		{"hive and reg", ModeShow, func(c *Config) { c.HiveFile, c.RegFile = "a", "b" }, false},
		{"live with file", ModeShow, func(c *Config) { c.Source, c.HiveFile = SourceLive, "a" }, false},
		{"hive without file", ModeShow, func(c *Config) { c.Source = SourceHive }, false},
		{"reg without file", ModeShow, func(c *Config) { c.Source = SourceReg }, false},
		{"unknown source", ModeShow, func(c *Config) { c.Source = "remote" }, false},
		{"mount without hive", ModeShow, func(c *Config) { c.HiveMount = `HKLM\X` }, false},
		{"mount with hive", ModeShow, func(c *Config) { c.HiveFile, c.HiveMount = "a", `HKLM\X` }, true},
		{"bad style", ModeShow, func(c *Config) { c.Style = "grid" }, false},
		{"bad style ignored on export", ModeExport, func(c *Config) { c.Style, c.Format, c.Output = "grid", "csv", "o" }, true},
		{"bad log level", ModeShow, func(c *Config) { c.Log.Level = "loud" }, false},
		{"bad log format", ModeShow, func(c *Config) { c.Log.Format = "xml" }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.edit(&cfg)
			err := cfg.Validate(tt.mode)
			if tt.ok {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, types.ErrConfig))
		})
	}
}
