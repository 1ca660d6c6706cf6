/*
engine.go - Budget forecast pipeline

PURPOSE:
  Answers "can I afford this plan?" by simulating every account touched by a
  forecast project from today's balance forward through the window.

PIPELINE:
  1. Materialize: installments, pending liabilities, pending receivables
     (recurring ones expanded per month) become dated events in [Start, End)
  2. Sequence:    stable sort by date
  3. Simulate:    running balance per account, seeded from the oracle
  4. Aggregate:   start/end/min per month for accounts the project touches

KEY INSIGHT:
  The oracle's value is the balance at the instant the simulation begins.
  Everything dated before Start is assumed settled and already folded in,
  so the engine never reads transaction history.

PURITY:
  Forecast has no I/O, no goroutines and no caches. Inputs are borrowed
  snapshots and are never modified; every call builds fresh output, so two
  calls with the same input return deep-equal results.

EXAMPLE:
  engine := &forecast.Engine{Balances: forecast.BalanceMap{"checking": generic.NewMoney(1200)}}
  result := engine.Forecast(forecast.Input{
      Accounts: accounts,
      Items:    project.Items,
      Window:   generic.MonthsAhead(generic.Today(), 6),
  })

SEE ALSO:
  - materialize.go, sequence.go, simulate.go, aggregate.go: the stages
  - service.go: loads snapshots from a Store and runs the engine
*/
package forecast

import (
	"io"

	"github.com/sirupsen/logrus"
	"github.com/warp/budget-forecast/generic"
)

// Engine runs the forecast pipeline against an injected balance oracle.
type Engine struct {
	Balances BalanceOracle
	Log      logrus.FieldLogger
}

// NewEngine creates an engine. A nil logger discards output.
func NewEngine(balances BalanceOracle, log logrus.FieldLogger) *Engine {
	return &Engine{Balances: balances, Log: log}
}

// Input is everything one recompute reads.
type Input struct {
	Accounts    []Account
	Liabilities []Liability
	Receivables []Receivable
	Items       []BudgetItem
	Window      generic.Window
}

// Result is the output of one recompute.
type Result struct {
	Window     generic.Window
	Timeline   []CashFlowEvent // chronological, RunningBalance populated
	Projection Projection      // project-relevant accounts only
	Skipped    []SkippedRecord // records left out for unparsable dates
}

// Forecast runs materialize, sequence, simulate and aggregate.
func (e *Engine) Forecast(in Input) Result {
	result := Result{
		Window:     in.Window,
		Timeline:   []CashFlowEvent{},
		Projection: make(Projection),
	}
	if in.Window.IsEmpty() {
		return result
	}

	events, skipped := Materialize(in.Window, in.Items, in.Liabilities, in.Receivables)
	for _, s := range skipped {
		e.logger().WithFields(logrus.Fields{
			"kind": s.Kind,
			"id":   s.ID,
			"date": s.Date,
		}).Debug("skipping record with unparsable date")
	}
	result.Skipped = skipped
	if len(events) == 0 {
		return result
	}

	sorted := Sequence(events)
	result.Timeline = Simulate(sorted, in.Accounts, e.Balances)
	result.Projection = Aggregate(result.Timeline, in.Window, e.Balances)
	return result
}

// ForecastRange parses the yyyy-MM-dd filter range and runs Forecast. Only a
// malformed filter date is an error; an empty range yields an empty result.
func (e *Engine) ForecastRange(in Input, start, end string) (Result, error) {
	w, err := generic.NewWindow(start, end)
	if err != nil {
		return Result{}, err
	}
	in.Window = w
	return e.Forecast(in), nil
}

func (e *Engine) logger() logrus.FieldLogger {
	if e.Log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		return l
	}
	return e.Log
}
