package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/yourorg/imnotdurnk/internal/handlers"
)

var healthBaseURL string

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Query GET /health on a running server",
	RunE: func(cmd *cobra.Command, args []string) error {
		base := healthBaseURL
		if base == "" {
			base = os.Getenv("BASE_URL")
		}
		if base == "" {
			base = "http://127.0.0.1:" + cfg.Port
		}

		client := &http.Client{Timeout: 5 * time.Second}
		resp, err := client.Get(strings.TrimRight(base, "/") + "/health")
		if err != nil {
			return fmt.Errorf("health: %w", err)
		}
		defer resp.Body.Close()

		var body handlers.HealthResponse
		if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
			return fmt.Errorf("health: decode response: %w", err)
		}

		status := color.GreenString(body.Status)
		if body.Status != "healthy" {
			status = color.RedString(body.Status)
		}
		fmt.Printf("%s %s\n", color.New(color.Bold).Sprint("status:"), status)
		faint := color.New(color.Faint)
		for name, state := range body.Services {
			fmt.Printf("  %-10s %s\n", name, faint.Sprint(state))
		}
		if body.Transit != nil {
			fmt.Printf("  %-10s %d stops, %d routes, %d stop times\n", "transit",
				body.Transit.Stops, body.Transit.Routes, body.Transit.StopTimes)
		}
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("server answered %s", resp.Status)
		}
		return nil
	},
}

func init() {
	healthCmd.Flags().StringVar(&healthBaseURL, "url", "", "server base URL (default BASE_URL or http://127.0.0.1:$PORT)")
}
