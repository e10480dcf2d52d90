package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/xqscope/pkg/namespace"
)

func newExpandCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:     "expand <file>",
		Aliases: []string{"xqexpand"},
		Short:   "Expand the qualified name at a position into its candidate expanded names",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, span := tracer.Start(cmd.Context(), "cli.expand")
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
			name, err := nameAt(pos)
			if err != nil {
				return err
			}

			report := s.report(m)
			at := locationOf(name)
			report.At = &at
			expander := s.engine.Expander()
			for expanded := range expander.Expand(ctx, name) {
				report.Expansions = append(report.Expansions, expandedName(expanded))
			}

			if flags.json {
				return emitJSON(report)
			}
			fmt.Printf("name: %s (%s)\n", name.Lexical(), expander.Classify(name))
			for _, expanded := range report.Expansions {
				fmt.Printf("  %s", namespace.ExpandedName{Namespace: expanded.Namespace, Local: expanded.Local})
				if expanded.Prefix != "" {
					fmt.Printf(" prefix=%s", expanded.Prefix)
				}
				fmt.Println()
			}
			return nil
		},
	}
	addCommonFlags(cmd, &flags)
	return cmd
}

func runExpand(args []string) error {
	return execute(newExpandCmd(), args)
}
