package forecast_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/budget-forecast/forecast"
	"github.com/warp/budget-forecast/generic"
	"github.com/warp/budget-forecast/store/memory"
)

func assertMoney(t *testing.T, expected int64, actual generic.Money, msgAndArgs ...any) {
	t.Helper()
	assert.Equal(t, money(expected).String(), actual.String(), msgAndArgs...)
}

func balances(events []forecast.CashFlowEvent) []string {
	out := make([]string, len(events))
	for i, e := range events {
		out[i] = e.RunningBalance.String()
	}
	return out
}

// =============================================================================
// SIMULATOR
// =============================================================================

func TestSimulate_RunningBalances(t *testing.T) {
	// GIVEN: 100 on checking, +50 then -30
	w := window(t, "2024-03-01", "2024-04-01")
	items := []forecast.BudgetItem{item("chair", installment("chair-1", "2024-03-20", 30, "checking"))}
	receivables := []forecast.Receivable{oneTime("refund", "2024-03-05", 50, "checking")}
	events, _ := forecast.Materialize(w, items, nil, receivables)

	// WHEN: Simulating
	timeline := forecast.Simulate(forecast.Sequence(events),
		[]forecast.Account{{ID: "checking"}},
		forecast.BalanceMap{"checking": money(100)})

	// THEN: 150 after the refund, 120 after the chair
	assert.Equal(t, []string{"150.00", "120.00"}, balances(timeline))
	assert.True(t, events[0].RunningBalance.IsZero(), "input events are not modified")
}

func TestSimulate_AccountsAreIndependent(t *testing.T) {
	sorted := forecast.Sequence([]forecast.CashFlowEvent{
		{ID: "a1", Date: generic.MustParseDate("2024-03-01"), Type: forecast.EventLiability, Amount: money(10), AccountID: "a"},
		{ID: "b1", Date: generic.MustParseDate("2024-03-02"), Type: forecast.EventReceivable, Amount: money(500), AccountID: "b"},
		{ID: "a2", Date: generic.MustParseDate("2024-03-03"), Type: forecast.EventInstallment, Amount: money(5), AccountID: "a"},
	})

	timeline := forecast.Simulate(sorted,
		[]forecast.Account{{ID: "a"}, {ID: "b"}},
		forecast.BalanceMap{"a": money(20), "b": money(1)})

	assert.Equal(t, []string{"10.00", "501.00", "5.00"}, balances(timeline))
}

func TestSimulate_UnknownAccountStartsAtZero(t *testing.T) {
	sorted := []forecast.CashFlowEvent{
		{ID: "x", Date: generic.MustParseDate("2024-03-01"), Type: forecast.EventLiability, Amount: money(40), AccountID: "ghost"},
	}

	timeline := forecast.Simulate(sorted, nil, forecast.BalanceMap{"checking": money(1000)})
	assert.Equal(t, []string{"-40.00"}, balances(timeline))

	timeline = forecast.Simulate(sorted, []forecast.Account{{ID: "ghost"}}, nil)
	assert.Equal(t, []string{"-40.00"}, balances(timeline), "nil oracle means zero")
}

func TestSimulate_UnlistedAccountSeedsFromOracle(t *testing.T) {
	// GIVEN: The oracle knows "x" but the account list only has "a"
	w := window(t, "2024-03-01", "2024-04-01")
	oracle := forecast.BalanceMap{"a": money(100), "x": money(500)}
	items := []forecast.BudgetItem{item("lamp", installment("lamp-1", "2024-03-10", 10, "x"))}
	events, _ := forecast.Materialize(w, items, nil, nil)

	// WHEN: Simulating and aggregating with the same oracle
	timeline := forecast.Simulate(forecast.Sequence(events), []forecast.Account{{ID: "a"}}, oracle)
	projection := forecast.Aggregate(timeline, w, oracle)

	// THEN: Timeline and projection start from the same balance
	assert.Equal(t, []string{"490.00"}, balances(timeline))
	require.Len(t, projection["x"], 1)
	assertMoney(t, 500, projection["x"][0].Start)
	assert.True(t, projection["x"][0].End.Equal(timeline[0].RunningBalance))
}

func TestEngine_TimelineAgreesWithProjection(t *testing.T) {
	in := householdInput(t)
	in.Accounts = nil
	engine := forecast.NewEngine(forecast.BalanceMap{"checking": money(500), "savings": money(1000)}, nil)

	result := engine.Forecast(in)

	assert.Equal(t, []string{"-400.00", "1600.00", "400.00", "-500.00", "1500.00", "700.00"}, balances(result.Timeline))
	months := result.Projection["checking"]
	last := result.Timeline[len(result.Timeline)-2]
	require.Equal(t, forecast.AccountID("checking"), last.AccountID)
	assert.True(t, months[len(months)-1].End.Equal(last.RunningBalance))
}

// =============================================================================
// AGGREGATOR
// =============================================================================

func TestAggregate_MonthStartEndMin(t *testing.T) {
	// GIVEN: 100 at month start, -150 on the 5th, +80 on the 10th
	w := window(t, "2024-03-01", "2024-04-01")
	items := []forecast.BudgetItem{item("sofa", installment("sofa-1", "2024-03-05", 150, "checking"))}
	receivables := []forecast.Receivable{oneTime("bonus", "2024-03-10", 80, "checking")}
	oracle := forecast.BalanceMap{"checking": money(100)}
	events, _ := forecast.Materialize(w, items, nil, receivables)
	timeline := forecast.Simulate(forecast.Sequence(events), []forecast.Account{{ID: "checking"}}, oracle)

	// WHEN: Aggregating
	projection := forecast.Aggregate(timeline, w, oracle)

	// THEN: {start: 100, end: 30, min: -50}
	require.Len(t, projection["checking"], 1)
	march := projection["checking"][0]
	assert.Equal(t, "2024-03", march.Label)
	assert.Equal(t, "2024-03-01", march.Month.String())
	assertMoney(t, 100, march.Start)
	assertMoney(t, 30, march.End)
	assertMoney(t, -50, march.Min)
}

func TestAggregate_MonthsChainAndQuietMonthsAppear(t *testing.T) {
	w := window(t, "2024-01-15", "2024-04-10")
	sorted := forecast.Sequence([]forecast.CashFlowEvent{
		{ID: "i1", Date: generic.MustParseDate("2024-01-20"), Type: forecast.EventInstallment, Amount: money(40), AccountID: "a"},
		{ID: "r1", Date: generic.MustParseDate("2024-03-02"), Type: forecast.EventReceivable, Amount: money(15), AccountID: "a"},
	})

	projection := forecast.Aggregate(sorted, w, forecast.BalanceMap{"a": money(50)})

	months := projection["a"]
	require.Len(t, months, 4)
	assert.Equal(t, []string{"2024-01", "2024-02", "2024-03", "2024-04"},
		[]string{months[0].Label, months[1].Label, months[2].Label, months[3].Label})
	for i := 1; i < len(months); i++ {
		assert.True(t, months[i].Start.Equal(months[i-1].End), "month %d starts where %d ended", i, i-1)
	}
	assertMoney(t, 10, months[0].End)
	assertMoney(t, 10, months[1].Start)
	assertMoney(t, 10, months[1].Min, "quiet month min equals start")
	assertMoney(t, 25, months[2].End)
	assertMoney(t, 10, months[2].Min, "min includes start")
	assertMoney(t, 25, months[3].End)
}

func TestAggregate_OnlyInstallmentAccounts(t *testing.T) {
	sorted := []forecast.CashFlowEvent{
		{ID: "bill", Date: generic.MustParseDate("2024-03-01"), Type: forecast.EventLiability, Amount: money(10), AccountID: "bills"},
		{ID: "inst", Date: generic.MustParseDate("2024-03-02"), Type: forecast.EventInstallment, Amount: money(10), AccountID: "card"},
		{ID: "card-bill", Date: generic.MustParseDate("2024-03-03"), Type: forecast.EventLiability, Amount: money(5), AccountID: "card"},
	}

	projection := forecast.Aggregate(sorted, window(t, "2024-03-01", "2024-04-01"), nil)

	require.Len(t, projection, 1)
	require.Contains(t, projection, forecast.AccountID("card"))
	assertMoney(t, -15, projection["card"][0].End, "non-installment events on a project account still count")
}

func TestAggregate_EmptyInputs(t *testing.T) {
	w := window(t, "2024-03-01", "2024-04-01")

	projection := forecast.Aggregate(nil, w, nil)
	assert.NotNil(t, projection)
	assert.Empty(t, projection)

	projection = forecast.Aggregate(nil, window(t, "2024-04-01", "2024-03-01"), nil)
	assert.NotNil(t, projection)
	assert.Empty(t, projection)
}

// =============================================================================
// ENGINE
// =============================================================================

func householdInput(t *testing.T) forecast.Input {
	t.Helper()
	salary := recurring("salary", "2024-01-31", 2000, "checking")
	return forecast.Input{
		Accounts: []forecast.Account{{ID: "checking", Name: "Checking"}, {ID: "savings", Name: "Savings"}},
		Liabilities: []forecast.Liability{
			liability("rent", "2024-02-01", 1200, "checking"),
			liability("insurance", "2024-03-15", 300, "savings"),
		},
		Receivables: []forecast.Receivable{salary},
		Items: []forecast.BudgetItem{item("Laptop",
			installment("laptop-1", "2024-01-31", 900, "checking"),
			installment("laptop-2", "2024-02-29", 900, "checking"),
		)},
		Window: window(t, "2024-01-15", "2024-03-20"),
	}
}

func TestEngine_Forecast(t *testing.T) {
	// GIVEN: 500 on checking, a salary on the 31st and a two-part laptop
	engine := forecast.NewEngine(forecast.BalanceMap{"checking": money(500), "savings": money(1000)}, nil)

	// WHEN: Forecasting mid-January to mid-March
	result := engine.Forecast(householdInput(t))

	// THEN: Same-day ties put the installment before the salary
	assert.Equal(t, []string{
		"laptop-1", "salary-2024-01", "rent", "laptop-2", "salary-2024-02", "insurance",
	}, ids(result.Timeline))
	assert.Equal(t, []string{"-400.00", "1600.00", "400.00", "-500.00", "1500.00", "700.00"}, balances(result.Timeline))

	// AND: Only checking is projected; savings never has an installment
	require.Len(t, result.Projection, 1)
	months := result.Projection["checking"]
	require.Len(t, months, 3)
	assertMoney(t, 500, months[0].Start)
	assertMoney(t, -400, months[0].Min)
	assertMoney(t, 1600, months[0].End)
	assertMoney(t, -500, months[1].Min)
	assertMoney(t, 1500, months[1].End)
	assertMoney(t, 1500, months[2].Start)
	assertMoney(t, 1500, months[2].End, "March salary on the 31st is past the window end")
	assert.Empty(t, result.Skipped)
}

func TestEngine_Idempotent(t *testing.T) {
	engine := forecast.NewEngine(forecast.BalanceMap{"checking": money(500)}, nil)
	in := householdInput(t)

	first := engine.Forecast(in)
	second := engine.Forecast(in)

	assert.Equal(t, first, second)
	assert.Equal(t, ids(first.Timeline), ids(second.Timeline))
	assert.Equal(t, householdInput(t), in, "input is not modified")
}

func TestEngine_EmptyResults(t *testing.T) {
	engine := forecast.NewEngine(nil, nil)

	tests := []struct {
		name string
		in   forecast.Input
	}{
		{"no records", forecast.Input{Window: window(t, "2024-03-01", "2024-04-01")}},
		{"zero-length window", func() forecast.Input {
			in := householdInput(t)
			in.Window = window(t, "2024-02-01", "2024-02-01")
			return in
		}()},
		{"inverted window", func() forecast.Input {
			in := householdInput(t)
			in.Window = window(t, "2024-03-01", "2024-02-01")
			return in
		}()},
		{"nothing inside the window", func() forecast.Input {
			in := householdInput(t)
			in.Receivables = nil
			in.Window = window(t, "2030-01-01", "2030-01-10")
			return in
		}()},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := engine.Forecast(tt.in)

			assert.NotNil(t, result.Timeline)
			assert.Empty(t, result.Timeline)
			assert.NotNil(t, result.Projection)
			assert.Empty(t, result.Projection)
		})
	}
}

func TestEngine_NoInstallmentsMeansNoProjection(t *testing.T) {
	in := householdInput(t)
	in.Items = nil

	result := forecast.NewEngine(forecast.BalanceMap{"checking": money(500)}, nil).Forecast(in)

	assert.NotEmpty(t, result.Timeline)
	assert.Empty(t, result.Projection)
}

func TestEngine_ForecastRange(t *testing.T) {
	engine := forecast.NewEngine(forecast.BalanceMap{"checking": money(500)}, nil)
	in := householdInput(t)

	result, err := engine.ForecastRange(in, "2024-02-01", "2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, []string{"rent", "laptop-2", "salary-2024-02"}, ids(result.Timeline))

	_, err = engine.ForecastRange(in, "2024-02-30", "2024-03-01")
	assert.ErrorIs(t, err, generic.ErrInvalidDate)
	_, err = engine.ForecastRange(in, "2024-02-01", "March")
	assert.ErrorIs(t, err, generic.ErrInvalidDate)

	result, err = engine.ForecastRange(in, "2024-03-01", "2024-02-01")
	require.NoError(t, err, "an inverted range is empty, not invalid")
	assert.Empty(t, result.Timeline)
}

// =============================================================================
// COMPATIBILITY AND ALLOCATION
// =============================================================================

func TestSummarize(t *testing.T) {
	engine := forecast.NewEngine(forecast.BalanceMap{"checking": money(500), "card": money(5000)}, nil)
	in := householdInput(t)
	in.Items = append(in.Items, item("Phone", installment("phone-1", "2024-02-10", 700, "card")))

	summary := forecast.Summarize(engine.Forecast(in).Projection)

	require.Len(t, summary, 2)
	assert.Equal(t, forecast.AccountID("card"), summary[0].AccountID, "sorted by id")
	assert.True(t, summary[0].Affordable)
	assert.Empty(t, summary[0].FirstShortfall)
	assertMoney(t, 4300, summary[0].LowestBalance)
	assertMoney(t, 4300, summary[0].EndBalance)

	assert.Equal(t, forecast.AccountID("checking"), summary[1].AccountID)
	assert.False(t, summary[1].Affordable)
	assert.Equal(t, "2024-01", summary[1].FirstShortfall)
	assert.Equal(t, "2024-02", summary[1].LowestMonth)
	assertMoney(t, -500, summary[1].LowestBalance)
	assertMoney(t, 1500, summary[1].EndBalance)
}

func TestSummarize_Empty(t *testing.T) {
	assert.Empty(t, forecast.Summarize(forecast.Projection{}))
	assert.Empty(t, forecast.Summarize(forecast.Projection{"a": nil}))
}

func TestCheckAllocation(t *testing.T) {
	tests := []struct {
		name      string
		price     string
		parts     []string
		status    forecast.AllocationStatus
		remaining string
	}{
		{"balanced", "1299.99", []string{"1000", "299.99"}, forecast.AllocationBalanced, "0.00"},
		{"under", "500", []string{"100.10", "200.20"}, forecast.AllocationUnder, "199.70"},
		{"over", "100", []string{"60", "60"}, forecast.AllocationOver, "-20.00"},
		{"no installments", "75", nil, forecast.AllocationUnder, "75.00"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it := forecast.BudgetItem{TotalPrice: generic.MustParseMoney(tt.price)}
			for _, p := range tt.parts {
				it.Installments = append(it.Installments, forecast.Installment{Amount: generic.MustParseMoney(p)})
			}

			allocation := forecast.CheckAllocation(it)

			assert.Equal(t, tt.status, allocation.Status)
			assert.Equal(t, tt.remaining, allocation.Remaining.String())
		})
	}
}

// =============================================================================
// ACCOUNT TREE
// =============================================================================

func TestAccountTreeBalances(t *testing.T) {
	accounts := []forecast.Account{
		{ID: "bank"},
		{ID: "checking", ParentID: "bank"},
		{ID: "savings", ParentID: "bank"},
		{ID: "vacation", ParentID: "savings"},
		{ID: "cash"},
	}
	entries := []forecast.LedgerEntry{
		{AccountID: "checking", Amount: money(100)},
		{AccountID: "checking", Amount: money(-30)},
		{AccountID: "savings", Amount: money(500)},
		{AccountID: "vacation", Amount: money(250)},
		{AccountID: "bank", Amount: money(1)},
	}

	got := forecast.AccountTreeBalances(accounts, entries)

	assertMoney(t, 821, got["bank"])
	assertMoney(t, 70, got["checking"])
	assertMoney(t, 750, got["savings"])
	assertMoney(t, 250, got["vacation"])
	assertMoney(t, 0, got["cash"])
}

func TestAccountTreeBalances_CycleTerminates(t *testing.T) {
	accounts := []forecast.Account{
		{ID: "a", ParentID: "b"},
		{ID: "b", ParentID: "a"},
	}
	entries := []forecast.LedgerEntry{
		{AccountID: "a", Amount: money(10)},
		{AccountID: "b", Amount: money(5)},
	}

	got := forecast.AccountTreeBalances(accounts, entries)

	assertMoney(t, 15, got["a"])
	assertMoney(t, 15, got["b"])
}

// =============================================================================
// SERVICE
// =============================================================================

type failingStore struct {
	*memory.Memory
}

func (failingStore) ListReceivables(context.Context) ([]forecast.Receivable, error) {
	return nil, errors.New("disk on fire")
}

func seededStore(t *testing.T) *memory.Memory {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	require.NoError(t, store.SaveAccount(ctx, forecast.Account{ID: "checking", Name: "Checking"}))
	require.NoError(t, store.AppendEntry(ctx, forecast.LedgerEntry{ID: "open", AccountID: "checking", Date: "2024-01-01", Amount: money(100)}))
	require.NoError(t, store.SaveLiability(ctx, liability("bill", "2024-03-05", 20, "checking")))
	require.NoError(t, store.SaveReceivable(ctx, oneTime("refund", "2024-03-20", 50, "checking")))
	require.NoError(t, store.SaveProject(ctx, forecast.Project{
		ID:    "desk",
		Name:  "Standing desk",
		Items: []forecast.BudgetItem{item("Desk", installment("desk-1", "2024-03-10", 30, "checking"))},
	}))
	return store
}

func TestService_ProjectForecast(t *testing.T) {
	store := seededStore(t)
	service := forecast.NewService(store, store, nil)

	report, err := service.ProjectForecast(context.Background(), "desk", window(t, "2024-03-01", "2024-04-01"))

	require.NoError(t, err)
	assert.Equal(t, "Standing desk", report.Project.Name)
	assert.Equal(t, []string{"80.00", "50.00", "100.00"}, balances(report.Result.Timeline))
	march := report.Result.Projection["checking"][0]
	assertMoney(t, 100, march.Start)
	assertMoney(t, 100, march.End)
	assertMoney(t, 50, march.Min)
	require.Len(t, report.Compatibility, 1)
	assert.True(t, report.Compatibility[0].Affordable)
}

func TestService_ProjectNotFound(t *testing.T) {
	store := seededStore(t)
	service := forecast.NewService(store, store, nil)

	_, err := service.ProjectForecast(context.Background(), "nope", window(t, "2024-03-01", "2024-04-01"))

	assert.ErrorIs(t, err, generic.ErrProjectNotFound)
}

func TestService_DraftForecast(t *testing.T) {
	store := seededStore(t)
	service := forecast.NewService(store, store, nil)
	draft := []forecast.BudgetItem{item("TV", installment("tv-1", "2024-03-06", 500, "checking"))}

	report, err := service.DraftForecast(context.Background(), draft, window(t, "2024-03-01", "2024-04-01"))

	require.NoError(t, err)
	assert.Nil(t, report.Project)
	assert.Equal(t, []string{"bill", "tv-1", "refund"}, ids(report.Result.Timeline))
	require.Len(t, report.Compatibility, 1)
	assert.False(t, report.Compatibility[0].Affordable)
	assertMoney(t, -420, report.Compatibility[0].LowestBalance)
}

func TestService_StoreErrorIsWrapped(t *testing.T) {
	store := failingStore{Memory: seededStore(t)}
	service := forecast.NewService(store, store, nil)

	_, err := service.ProjectForecast(context.Background(), "desk", window(t, "2024-03-01", "2024-04-01"))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load receivables")
	assert.Contains(t, err.Error(), "disk on fire")
}
