package main

import (
	"context"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/odvcencio/fluffyui/keybind"
	"github.com/spf13/cobra"
)

const version = "0.3.0"

type commandSpec struct {
	ID      string
	Aliases []string
	Summary string
	Usage   string
	Run     func(args []string) error
}

type cli struct {
	registry   *keybind.CommandRegistry
	specs      map[string]commandSpec
	aliasToID  map[string]string
	invokeArgs []string
	invokeErr  error
}

type exitCodeError struct {
	code int
	err  error
}

func (e exitCodeError) Error() string {
	if e.err == nil {
		return "command failed"
	}
	return e.err.Error()
}

func (e exitCodeError) ExitCode() int {
	if e.code <= 0 {
		return 1
	}
	return e.code
}

func (e exitCodeError) Unwrap() error {
	return e.err
}

func newCLI() *cli {
	c := &cli{
		registry:  keybind.NewRegistry(),
		specs:     make(map[string]commandSpec),
		aliasToID: make(map[string]string),
	}

	commands := []commandSpec{
		{
			ID:      "xqvars",
			Aliases: []string{"vars"},
			Summary: "List variables in scope at a position, nearest first",
			Usage:   "xqvars <file> --at line:col|@label [--root .] [--json] [--verbose]",
			Run:     runVars,
		},
		{
			ID:      "xqexpand",
			Aliases: []string{"expand"},
			Summary: "Expand the qualified name at a position",
			Usage:   "xqexpand <file> --at line:col|@label [--root .] [--json]",
			Run:     runExpand,
		},
		{
			ID:      "xqfunctions",
			Aliases: []string{"functions"},
			Summary: "List statically known or reachable functions",
			Usage:   "xqfunctions <file> [--at line:col|@label] [--arrow] [--root .] [--json]",
			Run:     runFunctions,
		},
		{
			ID:      "xqvariables",
			Aliases: []string{"variables"},
			Summary: "List statically known or reachable global variables",
			Usage:   "xqvariables <file> [--at line:col|@label] [--root .] [--json]",
			Run:     runVariables,
		},
		{
			ID:      "xqimports",
			Aliases: []string{"imports"},
			Summary: "Walk the module import graph from a file",
			Usage:   "xqimports <file> [--root .] [--json]",
			Run:     runImports,
		},
		{
			ID:      "xqnamespaces",
			Aliases: []string{"namespaces"},
			Summary: "List statically known or default namespaces at a position",
			Usage:   "xqnamespaces <file> [--at line:col|@label] [--defaults element|type|function|function-ref] [--root .] [--json]",
			Run:     runNamespaces,
		},
		{
			ID:      "xqresolve",
			Aliases: []string{"resolve"},
			Summary: "Resolve every variable and function reference in a file",
			Usage:   "xqresolve <file> [--unresolved] [--fail-on-unresolved] [--root .] [--json]",
			Run:     runResolve,
		},
		{
			ID:      "xqdump",
			Aliases: []string{"dump"},
			Summary: "Print a module's syntax tree as a tree dump",
			Usage:   "xqdump <file> [--at line:col|@label] [--root .]",
			Run:     runDump,
		},
		{
			ID:      "xqwatch",
			Aliases: []string{"watch"},
			Summary: "Re-resolve a file whenever workspace modules change",
			Usage:   "xqwatch <file> [--debounce 250ms] [--root .] [--json] [--verbose]",
			Run:     runWatch,
		},
	}

	for _, spec := range commands {
		specCopy := spec
		c.specs[specCopy.ID] = specCopy
		c.aliasToID[specCopy.ID] = specCopy.ID
		for _, alias := range specCopy.Aliases {
			c.aliasToID[strings.ToLower(alias)] = specCopy.ID
		}

		commandID := specCopy.ID
		c.registry.Register(keybind.Command{
			ID:          commandID,
			Title:       specCopy.ID,
			Description: specCopy.Summary,
			Handler: func(ctx keybind.Context) {
				c.invokeErr = c.specs[commandID].Run(c.invokeArgs)
			},
		})
	}

	return c
}

func (c *cli) Run(args []string) error {
	if len(args) == 0 {
		c.printHelp()
		return nil
	}

	name := strings.ToLower(strings.TrimSpace(args[0]))
	if name == "-h" || name == "--help" {
		c.printHelp()
		return nil
	}
	if name == "-v" || name == "--version" || name == "version" {
		fmt.Printf("xqscope v%s\n", version)
		return nil
	}
	if name == "help" {
		if len(args) == 1 {
			c.printHelp()
			return nil
		}
		id, ok := c.aliasToID[strings.ToLower(strings.TrimSpace(args[1]))]
		if !ok {
			return fmt.Errorf("unknown command %q", args[1])
		}
		c.printCommandHelp(id)
		return nil
	}

	commandID, ok := c.aliasToID[name]
	if !ok {
		return fmt.Errorf("unknown command %q", args[0])
	}
	if len(args) > 1 {
		firstArg := strings.TrimSpace(args[1])
		if firstArg == "-h" || firstArg == "--help" {
			c.printCommandHelp(commandID)
			return nil
		}
	}

	c.invokeArgs = args[1:]
	c.invokeErr = nil

	if ok := c.registry.Execute(commandID, keybind.Context{}); !ok {
		return fmt.Errorf("command %q is not executable", commandID)
	}
	return c.invokeErr
}

func (c *cli) printHelp() {
	ids := make([]string, 0, len(c.specs))
	for id := range c.specs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	fmt.Fprintf(os.Stderr, "xqscope v%s\n\n", version)
	fmt.Println("XQuery static-context resolution")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  xqscope <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	for _, id := range ids {
		spec := c.specs[id]
		fmt.Printf("  %-13s %s\n", spec.ID, spec.Summary)
	}
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  xqscope vars main.xq --at 12:9")
	fmt.Println("  xqscope expand main.xq --at 4:18 --json")
	fmt.Println("  xqscope functions main.xq --at 20:5 --arrow")
	fmt.Println("  xqscope imports main.xq --root .")
	fmt.Println("  xqscope namespaces fixtures/nested.xqt --at @inner --defaults element")
	fmt.Println("  xqscope resolve main.xq --unresolved --fail-on-unresolved")
	fmt.Println("  xqscope watch main.xq --debounce 500ms")
	fmt.Println("  xqscope help xqvars")
}

func (c *cli) printCommandHelp(id string) {
	spec, ok := c.specs[id]
	if !ok {
		return
	}

	fmt.Printf("%s\n", spec.ID)
	fmt.Println()
	fmt.Printf("Summary: %s\n", spec.Summary)
	fmt.Printf("Usage:   xqscope %s\n", spec.Usage)
	if len(spec.Aliases) > 0 {
		fmt.Printf("Aliases: %s\n", strings.Join(spec.Aliases, ", "))
	}
}

// execute runs a sub-command the way the registry dispatches it.
func execute(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}
