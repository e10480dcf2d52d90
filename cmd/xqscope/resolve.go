package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/xqscope/pkg/model"
	"github.com/odvcencio/xqscope/pkg/workspace"
)

func newResolveCmd() *cobra.Command {
	var flags commonFlags
	var unresolvedOnly bool
	var failOnUnresolved bool

	cmd := &cobra.Command{
		Use:     "resolve <file>",
		Aliases: []string{"xqresolve"},
		Short:   "Resolve every variable and function reference in a file",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, span := tracer.Start(cmd.Context(), "cli.resolve")
			defer span.End()

			s, err := openSession(ctx, flags)
			if err != nil {
				return err
			}
			m, err := s.module(ctx, args[0])
			if err != nil {
				return err
			}

			report := s.resolveReport(ctx, m)
			if unresolvedOnly {
				kept := report.References[:0]
				for _, ref := range report.References {
					if !ref.Resolved() {
						kept = append(kept, ref)
					}
				}
				report.References = kept
			}

			if flags.json {
				if err := emitJSON(report); err != nil {
					return err
				}
			} else {
				printReferences(report)
			}
			if failOnUnresolved && report.UnresolvedCount() > 0 {
				return exitCodeError{code: 3, err: fmt.Errorf("%d unresolved references", report.UnresolvedCount())}
			}
			return nil
		},
	}
	addCommonFlags(cmd, &flags)
	cmd.Flags().BoolVar(&unresolvedOnly, "unresolved", false, "only list references that resolve to nothing")
	cmd.Flags().BoolVar(&failOnUnresolved, "fail-on-unresolved", false, "exit with code 3 when a reference is unresolved")
	return cmd
}

func (s *session) resolveReport(ctx context.Context, m *workspace.Module) *model.Report {
	report := s.report(m)
	graph := s.engine.ResolveAll(ctx, m.Tree)
	for _, ref := range graph.Refs {
		entry := model.Reference{
			Kind:     "function",
			Name:     ref.Name.Lexical(),
			Location: locationOf(ref.Node),
		}
		if ref.IsVariable() {
			entry.Kind = "variable"
			if ref.Variable != nil {
				entry.Targets = append(entry.Targets, locationOf(ref.Variable.Name))
			}
		}
		for _, fn := range ref.Functions {
			entry.Targets = append(entry.Targets, locationOf(fn.Decl))
		}
		report.References = append(report.References, entry)
	}
	return report
}

func printReferences(report *model.Report) {
	fmt.Printf("references: %d resolved=%d unresolved=%d\n", len(report.References), report.ResolvedCount(), report.UnresolvedCount())
	for _, ref := range report.References {
		status := "unresolved"
		if ref.Resolved() {
			status = fmt.Sprintf("-> %d", len(ref.Targets))
		}
		fmt.Printf("  %d:%d %s %s %s\n", ref.Location.Line, ref.Location.Column, ref.Kind, ref.Name, status)
	}
}

func runResolve(args []string) error {
	return execute(newResolveCmd(), args)
}
