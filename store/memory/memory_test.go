package memory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/budget-forecast/forecast"
	"github.com/warp/budget-forecast/generic"
	"github.com/warp/budget-forecast/store/memory"
)

func TestMemory_ProjectsAreCopied(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	project := forecast.Project{
		ID:   "bike",
		Name: "Bike",
		Items: []forecast.BudgetItem{{
			ID: "frame", Name: "Frame", TotalPrice: generic.NewMoneyFromInt(800),
			Installments: []forecast.Installment{{ID: "frame-1", Date: "2025-05-01", Amount: generic.NewMoneyFromInt(800), AccountID: "checking"}},
		}},
	}
	require.NoError(t, store.SaveProject(ctx, project))

	// Editing the caller's copy or a read copy leaves the stored project alone.
	project.Items[0].Installments[0].Date = "2030-01-01"
	got, err := store.GetProject(ctx, "bike")
	require.NoError(t, err)
	got.Items[0].Installments[0].Amount = generic.NewMoneyFromInt(1)

	again, err := store.GetProject(ctx, "bike")
	require.NoError(t, err)
	assert.Equal(t, "2025-05-01", again.Items[0].Installments[0].Date)
	assert.Equal(t, "800.00", again.Items[0].Installments[0].Amount.String())
}

func TestMemory_NotFound(t *testing.T) {
	ctx := context.Background()
	store := memory.New()

	_, err := store.GetProject(ctx, "x")
	assert.ErrorIs(t, err, generic.ErrProjectNotFound)
	assert.ErrorIs(t, store.DeleteProject(ctx, "x"), generic.ErrProjectNotFound)
	_, err = store.GetAccount(ctx, "x")
	assert.ErrorIs(t, err, generic.ErrAccountNotFound)
	_, err = store.GetLiability(ctx, "x")
	assert.ErrorIs(t, err, generic.ErrRecordNotFound)
	_, err = store.GetReceivable(ctx, "x")
	assert.ErrorIs(t, err, generic.ErrRecordNotFound)
}

func TestMemory_EntriesAndBalances(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.SaveAccount(ctx, forecast.Account{ID: "bank", Name: "Bank"}))
	require.NoError(t, store.SaveAccount(ctx, forecast.Account{ID: "checking", Name: "Checking", ParentID: "bank"}))

	require.NoError(t, store.AppendEntry(ctx, forecast.LedgerEntry{ID: "e2", AccountID: "checking", Date: "2025-02-01", Amount: generic.NewMoneyFromInt(-20)}))
	require.NoError(t, store.AppendEntry(ctx, forecast.LedgerEntry{ID: "e1", AccountID: "checking", Date: "2025-01-01", Amount: generic.NewMoneyFromInt(100)}))
	assert.ErrorIs(t, store.AppendEntry(ctx, forecast.LedgerEntry{ID: "e1", AccountID: "bank"}), generic.ErrInvalidRecord)

	entries, err := store.ListEntries(ctx, "checking")
	require.NoError(t, err)
	assert.Equal(t, []string{"e1", "e2"}, []string{entries[0].ID, entries[1].ID})

	balances, err := store.CurrentBalances(ctx)
	require.NoError(t, err)
	assert.Equal(t, "80.00", balances["checking"].String())
	assert.Equal(t, "80.00", balances["bank"].String())
}

func TestMemory_MonitorRunsAndReset(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.SaveMonitorRun(ctx, forecast.MonitorRun{ID: "r1", Status: forecast.RunOK}))
	require.NoError(t, store.SaveMonitorRun(ctx, forecast.MonitorRun{ID: "r2", Status: forecast.RunShortfall}))
	require.NoError(t, store.SaveMonitorRun(ctx, forecast.MonitorRun{ID: "r3", Status: forecast.RunOK}))

	all, err := store.ListMonitorRuns(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"r3", "r2", "r1"}, []string{all[0].ID, all[1].ID, all[2].ID})

	ok, err := store.ListMonitorRuns(ctx, forecast.RunOK)
	require.NoError(t, err)
	assert.Len(t, ok, 2)

	require.NoError(t, store.Reset(ctx))
	all, err = store.ListMonitorRuns(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, all)
}
