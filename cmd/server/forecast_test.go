package main

import (
	"bytes"
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/budget-forecast/forecast"
	"github.com/warp/budget-forecast/generic"
	"github.com/warp/budget-forecast/store/sqlite"
)

func TestForecastWindow(t *testing.T) {
	w, err := forecastWindow("2025-01-31", "", 2)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-31", w.Start.String())
	assert.Equal(t, "2025-03-31", w.End.String())

	w, err = forecastWindow("2025-03-01", "2025-04-01", 12)
	require.NoError(t, err)
	assert.Equal(t, "[2025-03-01, 2025-04-01)", w.String())

	_, err = forecastWindow("01/03/2025", "", 12)
	assert.ErrorIs(t, err, generic.ErrInvalidDate)
	_, err = forecastWindow("", "tomorrow", 12)
	assert.ErrorIs(t, err, generic.ErrInvalidDate)
}

func TestForecastCommand_PrintsTables(t *testing.T) {
	// GIVEN: A database file with one project
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "budget.db")
	store, err := sqlite.New(dbPath)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, store.SaveAccount(ctx, forecast.Account{ID: "checking", Name: "Checking"}))
	require.NoError(t, store.AppendEntry(ctx, forecast.LedgerEntry{
		ID: "open", AccountID: "checking", Date: "2025-01-01", Amount: generic.NewMoneyFromInt(1000),
	}))
	require.NoError(t, store.SaveProject(ctx, forecast.Project{
		ID:   "bike",
		Name: "Commuter bike",
		Items: []forecast.BudgetItem{{
			ID: "bike-item", Name: "Bike", TotalPrice: generic.NewMoneyFromInt(1500),
			Installments: []forecast.Installment{
				{ID: "bike-1", Date: "2025-03-02", Amount: generic.NewMoneyFromInt(1500), AccountID: "checking"},
			},
		}},
	}))
	require.NoError(t, store.Close())

	// WHEN: Running the forecast command against it
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{
		"forecast",
		"--config", filepath.Join(dir, "absent.toml"),
		"--db", dbPath,
		"--project", "bike",
		"--start", "2025-03-01",
		"--end", "2025-05-01",
	})
	t.Cleanup(func() { rootCmd.SetArgs(nil) })
	require.NoError(t, rootCmd.Execute())

	// THEN: The report shows the shortfall
	text := out.String()
	assert.Contains(t, text, "Commuter bike")
	assert.Contains(t, text, "-1,500.00")
	assert.Contains(t, text, "short from 2025-03")
	assert.Contains(t, text, "2025-04")
}
