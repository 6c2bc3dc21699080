package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/joshuapare/regexport/internal/config"
	"github.com/joshuapare/regexport/internal/logging"
)

// errBatchFailed marks a run that finished but recorded error diagnostics.
// The diagnostics have already been logged, so only the exit code remains.
var errBatchFailed = errors.New("one or more paths failed")

// app carries per-invocation state between the root command and its
// subcommands.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	// flag targets
	configFile string
	envFile    string
	verbose    bool
	quiet      bool
	flagCfg    config.Config

	cfg    config.Config
	logger *slog.Logger
	closer io.Closer
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{in: in, out: out, errOut: errOut, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// execute runs the CLI and returns the process exit code.
func execute(args []string, in io.Reader, out, errOut io.Writer) int {
	a := newApp(in, out, errOut)
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetIn(in)
	root.SetOut(out)
	root.SetErr(errOut)

	err := root.Execute()
	if a.closer != nil {
		a.closer.Close()
	}
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errBatchFailed):
		return 1
	default:
		fmt.Fprintln(errOut, "Error:", err)
		return 1
	}
}

func newRootCmd(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "regexport",
		Short: "Enumerate and export Windows registry keys",
		Long: `regexport reads registry keys, optionally with their whole subtree, and
flattens every value into a record of path, name, value and type. Records are
printed as a table or written to a CSV, XML, JSON or YAML file.

Keys are read from the live registry on Windows, or from an offline hive file
(--hive) or a .reg export (--reg-file) anywhere.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.setup(cmd.Flags())
		},
	}

	f := root.PersistentFlags()
	f.BoolVarP(&a.flagCfg.Recurse, "recurse", "r", false, "Include every subkey below each path")
	f.StringVar((*string)(&a.flagCfg.Source), "source", "", "Where keys are read from: live, hive or reg")
	f.StringVar(&a.flagCfg.HiveFile, "hive", "", "Offline hive file to read")
	f.StringVar(&a.flagCfg.HiveMount, "hive-mount", "", `Where the hive root appears, e.g. HKLM\SOFTWARE`)
	f.StringVar(&a.flagCfg.RegFile, "reg-file", "", ".reg file to read")
	f.StringVar(&a.flagCfg.RegEncoding, "reg-encoding", "", "Encoding of a .reg file without BOM: UTF-8, UTF-16LE or Windows-1252")
	f.StringVar(&a.flagCfg.Computername, "computername", "", "Host name stamped on records (default: this host)")
	f.StringVar(&a.configFile, "config", "", "YAML configuration file")
	f.StringVar(&a.envFile, "env-file", "", "Environment file to load (default: .env when present)")
	f.BoolVarP(&a.verbose, "verbose", "v", false, "Log debug detail")
	f.BoolVarP(&a.quiet, "quiet", "q", false, "Log errors only and suppress summaries")
	f.BoolVar(&a.flagCfg.NoColor, "no-color", false, "Disable colored output")
	f.StringVar(&a.flagCfg.Log.File, "log-file", "", "Also write JSON logs to this rotated file")
	f.StringVar(&a.flagCfg.Log.Format, "log-format", "", "Console log format: text or json")
	f.StringVar(&a.flagCfg.MetricsFile, "metrics-file", "", "Write run metrics in Prometheus text format to this file")
	root.MarkFlagsMutuallyExclusive("verbose", "quiet")
	root.MarkFlagsMutuallyExclusive("hive", "reg-file")

	root.AddCommand(newShowCmd(a), newExportCmd(a), newValidateCmd(a), newVersionCmd(a))
	return root
}

// setup layers defaults, the config file, the environment and changed
// flags into a.cfg, then builds the logger.
func (a *app) setup(flags *pflag.FlagSet) error {
	cfg := config.Default()
	if a.configFile != "" {
		if err := cfg.LoadFile(a.configFile); err != nil {
			return err
		}
	}
	if err := config.LoadEnvFile(a.envFile); err != nil {
		return err
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return err
	}
	applyFlags(flags, &cfg, a.flagCfg)

	switch {
	case a.verbose:
		cfg.Log.Level = "debug"
	case a.quiet:
		cfg.Log.Level = "error"
	}

	logger, closer, err := logging.New(logging.Options{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Console:    a.errOut,
		File:       cfg.Log.File,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
		Compress:   cfg.Log.Compress,
	})
	if err != nil {
		return err
	}
	a.cfg, a.logger, a.closer = cfg, logger, closer
	a.logger.Debug("configuration loaded", "source", string(cfg.EffectiveSource()), "config_file", a.configFile)
	return nil
}

// applyFlags copies the flags the user actually set, so an unset flag never
// masks the environment or the config file.
func applyFlags(flags *pflag.FlagSet, cfg *config.Config, from config.Config) {
	set := func(name string, apply func()) {
		if flags.Changed(name) {
			apply()
		}
	}
	set("recurse", func() { cfg.Recurse = from.Recurse })
	set("source", func() { cfg.Source = from.Source })
	set("hive", func() { cfg.HiveFile = from.HiveFile })
	set("hive-mount", func() { cfg.HiveMount = from.HiveMount })
	set("reg-file", func() { cfg.RegFile = from.RegFile })
	set("reg-encoding", func() { cfg.RegEncoding = from.RegEncoding })
	set("computername", func() { cfg.Computername = from.Computername })
	set("no-color", func() { cfg.NoColor = from.NoColor })
	set("log-file", func() { cfg.Log.File = from.Log.File })
	set("log-format", func() { cfg.Log.Format = from.Log.Format })
	set("metrics-file", func() { cfg.MetricsFile = from.MetricsFile })
	set("format", func() { cfg.Format = from.Format })
	set("output", func() { cfg.Output = from.Output })
	set("exclude-binary", func() { cfg.ExcludeBinary = from.ExcludeBinary })
	set("style", func() { cfg.Style = from.Style })
}

// printInfo writes a summary line unless --quiet is set.
func (a *app) printInfo(format string, args ...any) {
	if !a.quiet {
		fmt.Fprintf(a.out, format, args...)
	}
}
