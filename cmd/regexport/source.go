package main

import (
	"bufio"
	"io"
	"os"
	"strings"

	"github.com/mattn/go-isatty"

	"github.com/joshuapare/regexport/internal/config"
	"github.com/joshuapare/regexport/internal/hivefile"
	"github.com/joshuapare/regexport/internal/regpath"
	"github.com/joshuapare/regexport/internal/regtext"
	"github.com/joshuapare/regexport/internal/winreg"
	"github.com/joshuapare/regexport/pkg/types"
)

// openBackend opens the registry store cfg points at.
func openBackend(cfg config.Config) (types.Backend, error) {
	switch cfg.EffectiveSource() {
	case config.SourceHive:
		var opts hivefile.Options
		if cfg.HiveMount != "" {
			mount, err := regpath.Parse(cfg.HiveMount)
			if err != nil {
				return nil, types.Wrap(types.ErrKindConfig, err, "hive mount")
			}
			opts.Mount = mount
		}
		h, err := hivefile.Open(cfg.HiveFile, opts)
		if err != nil {
			return nil, err
		}
		return h, nil

	case config.SourceReg:
		tree, err := regtext.LoadFile(cfg.RegFile, regtext.Options{Encoding: cfg.RegEncoding})
		if err != nil {
			return nil, err
		}
		return tree, nil

	default:
		b, err := winreg.Open()
		if err != nil {
			return nil, err
		}
		return b, nil
	}
}

// inputPaths returns the paths to process: arguments first, then the
// configured list, then one path per line from piped stdin.
func (a *app) inputPaths(args []string) ([]string, error) {
	if len(args) > 0 {
		return args, nil
	}
	if len(a.cfg.Paths) > 0 {
		return a.cfg.Paths, nil
	}
	if a.in == nil || isTerminal(a.in) {
		return nil, types.Errorf(types.ErrKindConfig, "no registry paths given")
	}
	paths, err := readPaths(a.in)
	if err != nil {
		return nil, err
	}
	if len(paths) == 0 {
		return nil, types.Errorf(types.ErrKindConfig, "no registry paths given")
	}
	return paths, nil
}

func readPaths(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		if line := strings.TrimSpace(sc.Text()); line != "" {
			out = append(out, line)
		}
	}
	return out, sc.Err()
}

func isTerminal(v any) bool {
	f, ok := v.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
