package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/koustreak/relstore/internal/httpapi"
)

// ServeOptions holds flags for the serve command.
type ServeOptions struct {
	*RootOptions
	Addr string
}

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the database over a JSON HTTP API",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address (default from config, :8080)")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	addr := opts.cfg.HTTP.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	c, err := opts.open(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	if err := httpapi.New(c, opts.log).Run(ctx, addr); err != nil {
		return WrapExitError(ExitFailure, "http server failed", err)
	}
	return nil
}
