package cli

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/papaleguas-app/papaleguas/internal/daemon"
)

func init() {
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(versionCmd)
	statusCmd.Flags().StringP("config", "c", "", "Path to config.toml (default ~/.papaleguas/config.toml)")
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the running daemon's driver state",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	if configPath == "" {
		configPath = daemon.DefaultPath()
	}
	cfg, err := daemon.Load(configPath)
	if err != nil {
		return err
	}

	client := &http.Client{Timeout: 3 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://%s/api/state", cfg.Addr()))
	if err != nil {
		return fmt.Errorf("daemon not reachable at %s: %w\nStart it with 'papaleguas serve'", cfg.Addr(), err)
	}
	defer resp.Body.Close()

	var state struct {
		Status        string  `json:"status"`
		StatusLabel   string  `json:"status_label"`
		Balance       float64 `json:"balance"`
		DailyEarnings float64 `json:"daily_earnings"`
		Stats         struct {
			Accepted int `json:"accepted"`
			Finished int `json:"finished"`
			Rejected int `json:"rejected"`
		} `json:"stats"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&state); err != nil {
		return fmt.Errorf("decode state: %w", err)
	}

	fmt.Fprintf(os.Stdout, "Status:    %s\n", state.Status)
	if state.StatusLabel != "" {
		fmt.Fprintf(os.Stdout, "Banner:    %s\n", state.StatusLabel)
	}
	fmt.Fprintf(os.Stdout, "Balance:   R$ %.2f\n", state.Balance)
	fmt.Fprintf(os.Stdout, "Today:     R$ %.2f earned\n", state.DailyEarnings)
	fmt.Fprintf(os.Stdout, "Missions:  %d accepted / %d finished / %d rejected\n",
		state.Stats.Accepted, state.Stats.Finished, state.Stats.Rejected)
	return nil
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "papaleguas %s\n", Version)
	},
}
