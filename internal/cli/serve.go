package cli

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/ingyamilmolinar/staffline/internal/server"
	"github.com/spf13/cobra"
)

var serveAddr string

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (default from config)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the relay that orders every container's ops",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		addr := cfg.Server.Addr
		if serveAddr != "" {
			addr = serveAddr
		}
		return server.New(logger).ListenAndServe(ctx, addr)
	},
}
