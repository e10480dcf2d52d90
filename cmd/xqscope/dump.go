package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/odvcencio/xqscope/pkg/syntax"
)

func newDumpCmd() *cobra.Command {
	var flags commonFlags

	cmd := &cobra.Command{
		Use:     "dump <file>",
		Aliases: []string{"xqdump"},
		Short:   "Print the syntax tree of a module file as a tree dump",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			s, err := openSession(ctx, flags)
			if err != nil {
				return err
			}
			m, err := s.module(ctx, args[0])
			if err != nil {
				return err
			}
			n, err := resolvePosition(m.Tree, flags.at)
			if err != nil {
				return err
			}
			if flags.at == "" {
				n = m.Tree
			}
			return syntax.Fprint(os.Stdout, n)
		},
	}
	addCommonFlags(cmd, &flags)
	return cmd
}

func runDump(args []string) error {
	return execute(newDumpCmd(), args)
}
