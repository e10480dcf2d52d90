package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/odvcencio/xqscope/pkg/workspace"
)

func newWatchCmd() *cobra.Command {
	var flags commonFlags
	var debounce time.Duration

	cmd := &cobra.Command{
		Use:     "watch <file>",
		Aliases: []string{"xqwatch"},
		Short:   "Re-resolve a file's references whenever workspace modules change",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			s, err := openSession(ctx, flags)
			if err != nil {
				return err
			}
			target, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}

			run := func() {
				m, err := s.module(ctx, target)
				if err != nil {
					s.logger.Warn("module unavailable", slog.String("path", target), slog.String("error", err.Error()))
					return
				}
				report := s.resolveReport(ctx, m)
				if flags.json {
					_ = emitJSON(report)
					return
				}
				printReferences(report)
			}

			run()
			return s.ws.Watch(ctx, debounce, func(changed []string) {
				fmt.Fprintf(os.Stderr, "changed: %d file(s)\n", len(changed))
				run()
			})
		},
	}
	addCommonFlags(cmd, &flags)
	cmd.Flags().DurationVar(&debounce, "debounce", workspace.DefaultDebounce, "quiet period before re-resolving")
	return cmd
}

func runWatch(args []string) error {
	return execute(newWatchCmd(), args)
}

