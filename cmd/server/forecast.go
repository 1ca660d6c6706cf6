package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/warp/budget-forecast/cli"
	"github.com/warp/budget-forecast/forecast"
	"github.com/warp/budget-forecast/generic"
)

var (
	flagProject string
	flagStart   string
	flagEnd     string
)

var forecastCmd = &cobra.Command{
	Use:   "forecast",
	Short: "Print a project's cash-flow timeline and monthly projection",
	RunE:  runForecast,
}

func init() {
	forecastCmd.Flags().StringVar(&flagProject, "project", "", "Project id")
	forecastCmd.Flags().StringVar(&flagStart, "start", "", "First day, YYYY-MM-DD (default today)")
	forecastCmd.Flags().StringVar(&flagEnd, "end", "", "Day after the last day, YYYY-MM-DD (default start + forecast.horizon_months)")
	_ = forecastCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(forecastCmd)
}

func runForecast(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	window, err := forecastWindow(flagStart, flagEnd, cfg.Forecast.HorizonMonths)
	if err != nil {
		return err
	}

	store, logger, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := cmd.Context()
	service := forecast.NewService(store, store, logger)
	report, err := service.ProjectForecast(ctx, forecast.ProjectID(flagProject), window)
	if err != nil {
		return fmt.Errorf("forecasting project %s: %w", flagProject, err)
	}

	accounts, err := store.ListAccounts(ctx)
	if err != nil {
		return err
	}
	names := make(cli.Names, len(accounts))
	for _, a := range accounts {
		names[a.ID] = a.Name
	}

	return cli.RenderReport(cmd.OutOrStdout(), report.Project.Name, report, names)
}

// forecastWindow parses the optional range flags.
func forecastWindow(start, end string, horizonMonths int) (generic.Window, error) {
	from := generic.Today()
	if start != "" {
		tp, err := generic.ParseDate(start)
		if err != nil {
			return generic.Window{}, fmt.Errorf("--start: %w", err)
		}
		from = tp
	}
	if end == "" {
		return generic.MonthsAhead(from, horizonMonths), nil
	}
	to, err := generic.ParseDate(end)
	if err != nil {
		return generic.Window{}, fmt.Errorf("--end: %w", err)
	}
	return generic.Window{Start: from, End: to}, nil
}
