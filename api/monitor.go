/*
monitor.go - Scheduled shortfall monitor

PURPOSE:
  Periodically forecasts every saved project over a rolling horizon and
  records, per project account, whether the balance dips below zero. The
  history is served by GET /api/monitor/runs.

DESIGN:
  - Runs on a cron schedule (robfig/cron), default hourly
  - Overlapping runs are skipped, never queued
  - One MonitorRun per (project, account); a failed forecast records a
    single error run for the project
  - The forecast itself is the same pure engine the API uses

USAGE:
  monitor := NewShortfallMonitor(repo, runs, log)
  monitor.Start()
  // ... later
  monitor.Stop()

SEE ALSO:
  - handlers.go: ListMonitorRuns, TriggerMonitor
  - forecast/compatibility.go: per-account shortfall summary
*/
package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"github.com/sirupsen/logrus"
	"github.com/warp/budget-forecast/forecast"
	"github.com/warp/budget-forecast/generic"
)

// DefaultMonitorSchedule runs the monitor at the top of every hour.
const DefaultMonitorSchedule = "@hourly"

// ShortfallMonitor checks saved projects for future negative balances.
type ShortfallMonitor struct {
	Store         forecast.Repository
	Runs          forecast.RunStore
	Service       *forecast.Service
	Log           logrus.FieldLogger
	Schedule      string
	HorizonMonths int
	Enabled       bool

	// Today returns the first day of the horizon.
	Today func() generic.TimePoint

	cron    *cron.Cron
	initial sync.WaitGroup // the check Start runs right away
	mu      sync.Mutex
}

// NewShortfallMonitor creates a monitor with the default schedule.
func NewShortfallMonitor(store forecast.Repository, runs forecast.RunStore, log logrus.FieldLogger) *ShortfallMonitor {
	if log == nil {
		l := logrus.New()
		l.SetOutput(io.Discard)
		log = l
	}
	return &ShortfallMonitor{
		Store:         store,
		Runs:          runs,
		Service:       forecast.NewService(store, store, log),
		Log:           log.WithField("component", "monitor"),
		Schedule:      DefaultMonitorSchedule,
		HorizonMonths: DefaultHorizonMonths,
		Enabled:       true,
		Today:         generic.Today,
	}
}

// Start schedules the monitor and runs one check immediately.
func (m *ShortfallMonitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.Enabled {
		m.Log.Info("monitor disabled, not starting")
		return nil
	}
	if m.cron != nil {
		return nil
	}

	logger := cron.PrintfLogger(m.Log)
	c := cron.New(cron.WithLogger(logger))
	// One wrapped job serves both the schedule and the initial check, so
	// SkipIfStillRunning sees them as the same job.
	job := cron.NewChain(cron.Recover(logger), cron.SkipIfStillRunning(logger)).
		Then(cron.FuncJob(func() { m.runOnce() }))
	if _, err := c.AddJob(m.Schedule, job); err != nil {
		return fmt.Errorf("invalid monitor schedule %q: %w", m.Schedule, err)
	}
	m.cron = c
	c.Start()

	m.initial.Add(1)
	go func() {
		defer m.initial.Done()
		job.Run()
	}()

	m.Log.WithField("schedule", m.Schedule).Info("monitor started")
	return nil
}

// Stop halts the schedule and waits for a running check to finish.
func (m *ShortfallMonitor) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cron == nil {
		return
	}
	<-m.cron.Stop().Done()
	m.initial.Wait()
	m.cron = nil
	m.Log.Info("monitor stopped")
}

func (m *ShortfallMonitor) runOnce() {
	recorded, err := m.CheckAll(context.Background())
	if err != nil {
		m.Log.WithError(err).Error("monitor check failed")
		return
	}
	m.Log.WithField("runs", recorded).Info("monitor check completed")
}

// CheckAll forecasts every project and records one run per project account.
// It returns the number of runs recorded.
func (m *ShortfallMonitor) CheckAll(ctx context.Context) (int, error) {
	projects, err := m.Store.ListProjects(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list projects: %w", err)
	}

	today := generic.Today
	if m.Today != nil {
		today = m.Today
	}
	months := m.HorizonMonths
	if months <= 0 {
		months = DefaultHorizonMonths
	}
	window := generic.MonthsAhead(today(), months)

	recorded := 0
	for _, p := range projects {
		runs := m.checkProject(ctx, p.ID, window)
		for _, run := range runs {
			if err := m.Runs.SaveMonitorRun(ctx, run); err != nil {
				return recorded, fmt.Errorf("failed to save monitor run: %w", err)
			}
			recorded++
		}
	}
	return recorded, nil
}

func (m *ShortfallMonitor) checkProject(ctx context.Context, id forecast.ProjectID, window generic.Window) []forecast.MonitorRun {
	now := time.Now().UTC()
	log := m.Log.WithField("project_id", id)

	report, err := m.Service.ProjectForecast(ctx, id, window)
	if err != nil {
		log.WithError(err).Warn("forecast failed")
		return []forecast.MonitorRun{{
			ID:          uuid.NewString(),
			ProjectID:   id,
			WindowStart: window.Start,
			WindowEnd:   window.End,
			Status:      forecast.RunError,
			Error:       err.Error(),
			CreatedAt:   now,
		}}
	}

	runs := make([]forecast.MonitorRun, 0, len(report.Compatibility))
	for _, c := range report.Compatibility {
		status := forecast.RunOK
		if !c.Affordable {
			status = forecast.RunShortfall
			log.WithFields(logrus.Fields{
				"account_id":      c.AccountID,
				"first_shortfall": c.FirstShortfall,
				"lowest_balance":  c.LowestBalance.String(),
			}).Warn("projected shortfall")
		}
		runs = append(runs, forecast.MonitorRun{
			ID:            uuid.NewString(),
			ProjectID:     id,
			AccountID:     c.AccountID,
			WindowStart:   window.Start,
			WindowEnd:     window.End,
			LowestBalance: c.LowestBalance,
			LowestMonth:   c.LowestMonth,
			Status:        status,
			CreatedAt:     now,
		})
	}
	return runs
}

// TriggerMonitor runs a shortfall check now and returns the recorded runs.
func (h *Handler) TriggerMonitor(w http.ResponseWriter, r *http.Request) {
	monitor := h.Monitor
	if monitor == nil {
		monitor = NewShortfallMonitor(h.Store, h.Runs, h.Log)
		monitor.HorizonMonths = h.HorizonMonths
	}

	recorded, err := monitor.CheckAll(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to run monitor", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"runs": recorded})
}
