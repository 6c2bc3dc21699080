package main

import (
	"github.com/spf13/cobra"

	"github.com/joshuapare/regexport/internal/config"
	"github.com/joshuapare/regexport/internal/printer"
)

func newShowCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show [path...]",
		Short: "Print the records of registry keys",
		Long: `The show command prints one record per value. A key with neither values
nor subkeys is shown as a single (Default) record with no value.

Paths may use any registry spelling: HKCU:\SOFTWARE\Test, HKLM\SYSTEM,
Registry::HKEY_USERS\.DEFAULT. With no arguments, paths are read one per line
from stdin.

Example:
  regexport show HKCU:\SOFTWARE\Test
  regexport show -r --style list HKLM\SOFTWARE\Vendor
  regexport show --hive ./SOFTWARE -r HKLM\SOFTWARE\Microsoft\Windows`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runShow(args)
		},
	}
	cmd.Flags().StringVar(&a.flagCfg.Style, "style", string(printer.StyleTable), "Console layout: table or list")
	return cmd
}

func (a *app) runShow(args []string) error {
	if err := a.cfg.Validate(config.ModeShow); err != nil {
		return err
	}
	style, err := printer.ParseStyle(a.cfg.Style)
	if err != nil {
		return err
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
	opts := printer.Options{Style: style, Color: !a.cfg.NoColor && isTerminal(a.out)}
	if err := printer.Render(a.out, records, opts); err != nil {
		s.finish()
		return err
	}
	return s.finish()
}
