package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/xqscope/pkg/model"
	"github.com/odvcencio/xqscope/pkg/module"
)

func newImportsCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:     "imports <file>",
		Aliases: []string{"xqimports"},
		Short:   "Walk the module import graph from a file, depth first",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, span := tracer.Start(cmd.Context(), "cli.imports")
			defer span.End()

			s, err := openSession(ctx, flags)
			if err != nil {
				return err
			}
			m, err := s.module(ctx, args[0])
			if err != nil {
				return err
			}
			if m.Prolog.IsZero() {
				return exitCodeError{code: 2, err: fmt.Errorf("%s holds no module", m.Path)}
			}

			report := s.report(m)
			for p := range module.ImportedProlog(ctx, s.ws, m.Prolog) {
				report.Modules = append(report.Modules, model.Module{
					Resource:  string(p.Resource),
					Namespace: p.Namespace,
					Library:   p.IsLibrary(),
					Functions: len(p.FunctionDecls()),
					Variables: len(p.VarDecls()),
				})
			}

			if flags.json {
				return emitJSON(report)
			}
			fmt.Printf("modules: %d declarations: %d\n", len(report.Modules), report.DeclarationCount())
			for _, mod := range report.Modules {
				kind := "main"
				if mod.Library {
					kind = "library"
				}
				fmt.Printf("  %s %s", kind, mod.Resource)
				if mod.Namespace != "" {
					fmt.Printf(" namespace=%s", mod.Namespace)
				}
				fmt.Printf(" functions=%d variables=%d\n", mod.Functions, mod.Variables)
			}
			return nil
		},
	}
	addCommonFlags(cmd, &flags)
	return cmd
}

func runImports(args []string) error {
	return execute(newImportsCmd(), args)
}
