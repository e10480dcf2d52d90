package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/odvcencio/xqscope/pkg/model"
)

func addCommonFlags(cmd *cobra.Command, flags *commonFlags) {
	cmd.Flags().StringVar(&flags.root, "root", ".", "workspace root holding the module files")
	cmd.Flags().StringVar(&flags.at, "at", "", "query position: line:col or @label")
	cmd.Flags().BoolVar(&flags.json, "json", false, "emit JSON output")
	cmd.Flags().BoolVar(&flags.verbose, "verbose", false, "log workspace activity to stderr")
}

func newVarsCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:     "vars <file>",
		Aliases: []string{"xqvars"},
		Short:   "List variables in scope at a position, nearest first",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, span := tracer.Start(cmd.Context(), "cli.vars", trace.WithAttributes(attribute.String("file", args[0])))
			defer span.End()

			s, err := openSession(ctx, flags)
			if err != nil {
				return err
			}
			m, err := s.module(ctx, args[0])
			if err != nil {
				return err
			}
			pos, err := resolvePosition(m.Tree, flags.at)
			if err != nil {
				return err
			}

			report := s.report(m)
			at := locationOf(pos)
			report.At = &at
			for def := range s.engine.InScopeVariables(ctx, pos) {
				report.Variables = append(report.Variables, variableEntry(def))
			}

			if flags.json {
				return emitJSON(report)
			}
			printVariables(report.Variables)
			return nil
		},
	}
	addCommonFlags(cmd, &flags)
	return cmd
}

func printVariables(vars []model.Variable) {
	fmt.Printf("variables: %d\n", len(vars))
	for _, v := range vars {
		if v.Location.Line == 0 {
			fmt.Printf("  $%s (%s)\n", v.Name.Lexical, v.Kind)
			continue
		}
		fmt.Printf("  $%s (%s) %s:%d:%d\n", v.Name.Lexical, v.Kind, v.Location.File, v.Location.Line, v.Location.Column)
	}
}

func runVars(args []string) error {
	return execute(newVarsCmd(), args)
}
