package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/joshuapare/regexport/internal/config"
	"github.com/joshuapare/regexport/internal/serialize"
	"github.com/joshuapare/regexport/pkg/regexport"
	"github.com/joshuapare/regexport/pkg/types"
)

func newExportCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export [path...] --format FORMAT --output FILE",
		Short: "Write the records of registry keys to a file",
		Long: `The export command traverses the given keys and writes every record to a
file. Supported formats are csv, xml, json and yaml. The reg format is
recognized but not implemented.

An existing output file is overwritten. When nothing is collected, a warning
is logged and no file is written.

Example:
  regexport export HKCU:\SOFTWARE\Test --format csv --output test.csv
  regexport export -r HKLM\SOFTWARE\Vendor --format json --output vendor.json --exclude-binary
  Get-Content keys.txt | regexport export --format xml --output keys.xml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runExport(args)
		},
	}
	cmd.Flags().StringVarP(&a.flagCfg.Format, "format", "f", "", "Output format: csv, xml, json, yaml or reg")
	cmd.Flags().StringVarP(&a.flagCfg.Output, "output", "o", "", "Output file")
	cmd.Flags().BoolVar(&a.flagCfg.ExcludeBinary, "exclude-binary", false, "Drop Binary values before writing")
	return cmd
}

func (a *app) runExport(args []string) error {
	if err := a.cfg.Validate(config.ModeExport); err != nil {
		return err
	}
	format, err := serialize.ParseFormat(a.cfg.Format)
	if err != nil {
		return err
	}
	if !format.Supported() {
		return types.Errorf(types.ErrKindUnsupported, "export format %q is not implemented", format)
	}
	paths, err := a.inputPaths(args)
	if err != nil {
		return err
	}

	s, err := a.newSession()
	if err != nil {
		return err
	}
	records := s.export(paths)

	n, err := s.exporter.ExportToFile(records, regexport.ExportOptions{
		Format:        format,
		Path:          a.cfg.Output,
		ExcludeBinary: a.cfg.ExcludeBinary,
	})
	switch {
	case errors.Is(err, types.ErrEmptyResult):
		// Already warned; an empty batch is not a failure.
	case err != nil:
		s.finish()
		return err
	default:
		a.printInfo("Exported %d record(s) to %s\n", n, a.cfg.Output)
	}
	return s.finish()
}
