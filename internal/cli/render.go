package cli

import (
	"context"
	"fmt"

	"github.com/ingyamilmolinar/staffline/core/geom"
	game_log "github.com/ingyamilmolinar/staffline/internal/log"
	"github.com/ingyamilmolinar/staffline/internal/render"
	"github.com/spf13/cobra"
)

var renderOut string

func init() {
	renderCmd.Flags().StringVarP(&renderOut, "out", "o", "score.png", "output PNG path")
	rootCmd.AddCommand(renderCmd)
}

var renderCmd = &cobra.Command{
	Use:   "render <join-url>",
	Short: "Pull a shared score and write it as a PNG",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := renderPNG(cmd.Context(), args[0], renderOut, logger); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), renderOut)
		return nil
	},
}

// offCanvas keeps every note undecorated.
var offCanvas = geom.Pt(-1000, -1000)

func renderPNG(ctx context.Context, joinURL, out string, logger *game_log.Logger) error {
	e, _, err := openSession(ctx, "", joinURL, cfg.Editor.PollInterval.Std(), logger)
	if err != nil {
		return err
	}
	defer e.Close()

	r, err := render.NewRenderer(logger)
	if err != nil {
		return err
	}
	dc := render.NewCanvas()
	if _, _, err := r.Draw(dc, e.Score, offCanvas); err != nil {
		return err
	}
	if err := dc.SavePNG(out); err != nil {
		return fmt.Errorf("write %s: %w", out, err)
	}
	logger.Tag("CLI").Infof("rendered %d entries to %s", e.Score.Len(), out)
	return nil
}
