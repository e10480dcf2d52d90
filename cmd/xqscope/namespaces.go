package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/odvcencio/xqscope/pkg/model"
	"github.com/odvcencio/xqscope/pkg/namespace"
)

func newNamespacesCmd() *cobra.Command {
	var flags commonFlags
	var defaults string

	cmd := &cobra.Command{
		Use:     "namespaces <file>",
		Aliases: []string{"xqnamespaces"},
		Short:   "List statically known namespaces at a position, nearest first",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, span := tracer.Start(cmd.Context(), "cli.namespaces")
			defer span.End()

			kind, err := parseNamespaceKind(defaults)
			if err != nil {
				return err
			}
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
			index := s.engine.Expander().Index()
			bindings := index.StaticallyKnownNamespaces(ctx, pos)
			if kind != namespace.None {
				bindings = index.DefaultNamespaces(ctx, pos, kind)
			}
			for b := range bindings {
				entry := model.Namespace{Prefix: b.Prefix, URI: b.URI, Kind: b.Kind.String()}
				if b.Decl != nil {
					entry.Line = b.Decl.Span().Start.Line
				}
				report.Namespaces = append(report.Namespaces, entry)
			}

			if flags.json {
				return emitJSON(report)
			}
			fmt.Printf("namespaces: %d\n", len(report.Namespaces))
			for _, ns := range report.Namespaces {
				prefix := ns.Prefix
				if prefix == "" {
					prefix = "(default)"
				}
				fmt.Printf("  %-10s %s (%s)\n", prefix, ns.URI, ns.Kind)
			}
			return nil
		},
	}
	addCommonFlags(cmd, &flags)
	cmd.Flags().StringVar(&defaults, "defaults", "", "list default namespaces for a kind instead: element|type|function|function-ref")
	return cmd
}

func parseNamespaceKind(value string) (namespace.Kind, error) {
	switch value {
	case "":
		return namespace.None, nil
	case "element":
		return namespace.Element, nil
	case "type":
		return namespace.Type, nil
	case "function":
		return namespace.DefaultFunctionDecl, nil
	case "function-ref":
		return namespace.DefaultFunctionRef, nil
	default:
		return namespace.None, fmt.Errorf("unknown namespace kind %q", value)
	}
}

func runNamespaces(args []string) error {
	return execute(newNamespacesCmd(), args)
}
