// Package main provides the crate command-line tool.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/samber/do/v2"
	"github.com/spf13/cobra"

	"github.com/listenupapp/crate-server/internal/config"
	"github.com/listenupapp/crate-server/internal/di"
)

var cmdRoot = &cobra.Command{
	Use:   "crate",
	Short: "Normalize genres and compose playlists from a local music library",
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
}

func init() {
	config.RegisterFlags(cmdRoot.PersistentFlags(), "data-path", "log-level")
}

func main() {
	if err := cmdRoot.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorColor.Sprint("error: ")+err.Error())
		os.Exit(1)
	}
}

// run builds a container from cmd's flags, hands it to fn with a context
// that is cancelled on SIGINT or SIGTERM, and shuts it down afterwards.
// Only the handles fn invokes are constructed; the HTTP server never is.
func run(cmd *cobra.Command, fn func(ctx context.Context, i do.Injector) error) error {
	injector := di.NewContainer(config.Options{Flags: cmd.Flags()})
	defer func() { _ = injector.Shutdown() }()

	if _, err := do.Invoke[*config.Config](injector); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return fn(ctx, injector)
}
