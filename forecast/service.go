package forecast

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/warp/budget-forecast/generic"
)

// Service loads snapshots from a Store and runs the engine on them.
type Service struct {
	Store    Store
	Balances BalanceSource
	Log      logrus.FieldLogger
}

func NewService(store Store, balances BalanceSource, log logrus.FieldLogger) *Service {
	return &Service{Store: store, Balances: balances, Log: log}
}

// Report is a forecast plus its compatibility summary.
type Report struct {
	Project       *Project // nil for drafts
	Result        Result
	Compatibility []AccountCompatibility
}

// ProjectForecast forecasts a saved project over w.
func (s *Service) ProjectForecast(ctx context.Context, id ProjectID, w generic.Window) (*Report, error) {
	project, err := s.Store.GetProject(ctx, id)
	if err != nil {
		return nil, err
	}
	report, err := s.forecast(ctx, project.Items, w)
	if err != nil {
		return nil, err
	}
	report.Project = project
	return report, nil
}

// DraftForecast forecasts unsaved items over w.
func (s *Service) DraftForecast(ctx context.Context, items []BudgetItem, w generic.Window) (*Report, error) {
	return s.forecast(ctx, items, w)
}

func (s *Service) forecast(ctx context.Context, items []BudgetItem, w generic.Window) (*Report, error) {
	accounts, err := s.Store.ListAccounts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load accounts: %w", err)
	}
	liabilities, err := s.Store.ListLiabilities(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load liabilities: %w", err)
	}
	receivables, err := s.Store.ListReceivables(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load receivables: %w", err)
	}
	balances, err := s.Balances.CurrentBalances(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load balances: %w", err)
	}

	engine := NewEngine(BalanceMap(balances), s.Log)
	result := engine.Forecast(Input{
		Accounts:    accounts,
		Liabilities: liabilities,
		Receivables: receivables,
		Items:       items,
		Window:      w,
	})

	if s.Log != nil {
		s.Log.WithFields(logrus.Fields{
			"window":   w.String(),
			"events":   len(result.Timeline),
			"accounts": len(result.Projection),
			"skipped":  len(result.Skipped),
		}).Debug("forecast computed")
	}

	return &Report{
		Result:        result,
		Compatibility: Summarize(result.Projection),
	}, nil
}
