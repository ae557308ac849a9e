package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/spf13/cobra"

	"confreg/internal/registrations/events"
	"confreg/internal/registrations/handler"
	"confreg/pkg/client"
	"confreg/pkg/config"
	"confreg/pkg/model"
)

var (
	healthURL  string
	healthWait time.Duration
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Print the health report as JSON",
	Long: `Runs the dependency checks once and prints the health report.

Without --url the checks run in process against the configured Google
Sheet and mNotify key. With --url the report is fetched from a running
instance.

Examples:
  registration health
  registration health --url http://localhost:8000 --wait 30s`,
	RunE: runHealth,
}

func init() {
	healthCmd.Flags().StringVar(&healthURL, "url", "", "base URL of a running instance")
	healthCmd.Flags().DurationVar(&healthWait, "wait", 0, "with --url, wait up to this long for the instance to come up")
}

func runHealth(cmd *cobra.Command, args []string) error {
	var report *model.HealthReport
	var err error

	if healthURL != "" {
		report, err = remoteHealth(cmd)
	} else {
		report = localHealth(cmd)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(report); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}

	if report.Status != model.HealthStatusHealthy {
		return fmt.Errorf("service is %s", report.Status)
	}
	return nil
}

func localHealth(cmd *cobra.Command) *model.HealthReport {
	cfg := config.Load(ServiceName)
	registrationService := initServices(cfg, events.NewNopPublisher())

	ctx, cancel := withTimeout(cmd.Context(), cfg.SheetsTimeout+time.Second)
	defer cancel()
	return registrationService.Health(ctx)
}

func remoteHealth(cmd *cobra.Command) (*model.HealthReport, error) {
	httpClient := client.NewHttpClient(healthURL, 10*time.Second)

	ctx, cancel := withTimeout(cmd.Context(), healthWait+10*time.Second)
	defer cancel()

	if healthWait > 0 {
		if err := httpClient.WaitForHealthy(ctx, handler.HealthPath, healthWait); err != nil {
			return nil, err
		}
	}

	resp, err := httpClient.GET(ctx, handler.HealthPath)
	if err != nil {
		return nil, fmt.Errorf("fetching health: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("health endpoint returned %d: %s", resp.StatusCode, client.GetErrorMessage(resp))
	}

	var report model.HealthReport
	if err := resp.DecodeJSON(&report); err != nil {
		return nil, fmt.Errorf("decoding health report: %w", err)
	}
	return &report, nil
}
