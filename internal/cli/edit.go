package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/ingyamilmolinar/staffline/internal/ui"
	"github.com/spf13/cobra"
)

var editRelay string

func init() {
	editCmd.Flags().StringVar(&editRelay, "relay", "", "relay base URL used when creating a container (default from config)")
	rootCmd.AddCommand(editCmd)
}

var editCmd = &cobra.Command{
	Use:   "edit [join-url]",
	Short: "Open the editor on a shared score",
	Long: `Open the editor on the container named by join-url, e.g.
http://localhost:8080/#<container-id>. Without one a new container is
created on the relay and seeded with generated bars.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		base := cfg.Server.URL
		if editRelay != "" {
			base = editRelay
		}
		var joinURL string
		if len(args) == 1 {
			joinURL = args[0]
		}
		e, url, err := openSession(ctx, base, joinURL, cfg.Editor.PollInterval.Std(), logger)
		if err != nil {
			return err
		}
		defer e.Close()
		if err := seedIfEmpty(ctx, e, cfg.Editor.SeedBars, time.Now().UnixNano()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), url)

		game, err := ui.New(ui.Options{
			Score:          e.Score,
			Changes:        e.Events,
			Connected:      e.Client.IsConnected,
			Title:          url,
			ScrollDebounce: cfg.Editor.ScrollDebounce.Std(),
		}, logger)
		if err != nil {
			return err
		}
		w, h := ui.WindowSize(cfg.Editor.WindowWidth, cfg.Editor.WindowHeight)
		ebiten.SetWindowSize(w, h)
		ebiten.SetWindowTitle("staffline")
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
		return ebiten.RunGame(game)
	},
}
