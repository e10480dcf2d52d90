package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/xqscope/pkg/model"
	"github.com/odvcencio/xqscope/pkg/scope"
)

func newFunctionsCmd() *cobra.Command {
	var flags commonFlags
	var arrow bool

	cmd := &cobra.Command{
		Use:     "functions <file>",
		Aliases: []string{"xqfunctions"},
		Short:   "List functions statically known for the name at a position, or all reachable functions",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, span := tracer.Start(cmd.Context(), "cli.functions")
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
			add := func(fn scope.FunctionDeclaration) {
				if arrow && fn.Arity.Max == 0 {
					return
				}
				report.Functions = append(report.Functions, functionEntry(fn))
			}
			if flags.at == "" {
				for fn := range s.engine.ReachableFunctions(ctx, pos) {
					add(fn)
				}
			} else {
				name, err := nameAt(pos)
				if err != nil {
					return err
				}
				at := locationOf(name)
				report.At = &at
				for fn := range s.engine.StaticallyKnownFunctions(ctx, name) {
					add(fn)
				}
			}

			if flags.json {
				return emitJSON(report)
			}
			printFunctions(report.Functions)
			return nil
		},
	}
	addCommonFlags(cmd, &flags)
	cmd.Flags().BoolVar(&arrow, "arrow", false, "only list functions usable as arrow targets (arity >= 1)")
	return cmd
}

func printFunctions(fns []model.Function) {
	fmt.Printf("functions: %d\n", len(fns))
	for _, fn := range fns {
		arity := fmt.Sprintf("%d", fn.MinArity)
		if fn.MaxArity != fn.MinArity {
			arity = fmt.Sprintf("%d-%d", fn.MinArity, fn.MaxArity)
		}
		fmt.Printf("  %s#%s %s:%d\n", fn.Name.Lexical, arity, fn.Location.File, fn.Location.Line)
	}
}

func runFunctions(args []string) error {
	return execute(newFunctionsCmd(), args)
}
