package main

import (
	"github.com/spf13/cobra"
)

func newVariablesCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:     "variables <file>",
		Aliases: []string{"xqvariables"},
		Short:   "List global variables statically known for the name at a position, or all reachable globals",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, span := tracer.Start(cmd.Context(), "cli.variables")
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
			if flags.at == "" {
				for def := range s.engine.ReachableVariables(ctx, pos) {
					report.Variables = append(report.Variables, variableEntry(def))
				}
			} else {
				name, err := nameAt(pos)
				if err != nil {
					return err
				}
				at := locationOf(name)
				report.At = &at
				for def := range s.engine.StaticallyKnownVariables(ctx, name) {
					report.Variables = append(report.Variables, variableEntry(def))
				}
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

func runVariables(args []string) error {
	return execute(newVariablesCmd(), args)
}
