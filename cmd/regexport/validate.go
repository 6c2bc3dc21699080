package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/joshuapare/regexport/internal/config"
	"github.com/joshuapare/regexport/pkg/regexport"
)

func newValidateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "validate [path...]",
		Short: "Report whether each path names an existing registry key",
		Long: `The validate command prints true or false for every path, one per line, in
input order. A path of another provider (C:\Windows, Env:PATH) is false.

Example:
  regexport validate HKCU:\SOFTWARE\Test HKLM\SOFTWARE\Missing`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runValidate(args)
		},
	}
}

func (a *app) runValidate(args []string) error {
	if err := a.cfg.Validate(config.ModeValidate); err != nil {
		return err
	}
	paths, err := a.inputPaths(args)
	if err != nil {
		return err
	}
	backend, err := openBackend(a.cfg)
	if err != nil {
		return err
	}
	defer backend.Close()

	v := regexport.NewValidator(backend, a.logger)
	for _, p := range paths {
		fmt.Fprintln(a.out, v.IsValidKey(p))
	}
	return nil
}
