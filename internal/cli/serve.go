package cli

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/papaleguas-app/papaleguas/internal/daemon"
)

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("config", "c", "", "Path to config.toml (default ~/.papaleguas/config.toml)")
	serveCmd.Flags().IntP("port", "p", 0, "Override the API port")
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the driver simulation daemon",
	Long:  `Start the simulation services and serve the local HTTP API until interrupted.`,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = daemon.DefaultPath()
	}

	cfg, err := daemon.Load(configPath)
	if err != nil {
		return err
	}
	if port, _ := cmd.Flags().GetInt("port"); port > 0 {
		cfg.API.Port = port
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return daemon.Run(ctx, cfg)
}
