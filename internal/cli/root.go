package cli

import (
	"os"

	"github.com/ingyamilmolinar/staffline/internal/config"
	game_log "github.com/ingyamilmolinar/staffline/internal/log"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string

	cfg    = config.DefaultConfig()
	logger = game_log.New(os.Stderr, game_log.LevelInfo)
)

var rootCmd = &cobra.Command{
	Use:   "staffline",
	Short: "Shared music notation editor",
	Long: `staffline edits a score whose notes live in a shared sequence on a relay.
Every editor joined to the same container sees the others' edits.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := loadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
		level := cfg.Log.Level
		if logLevel != "" {
			level = logLevel
		}
		logger.SetLevel(game_log.LevelFromString(level))
		logger.Tag("CLI").Debugf("config loaded, log level %s", logger.Level())
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.config/staffline/config.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "DEBUG, INFO, WARN, ERROR or NONE")
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		return config.Load()
	}
	return config.LoadFrom(path)
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}
