/*
main.go - Application entry point

PURPOSE:
  Starts the budget-forecast command tree. Configuration is loaded from
  the TOML config file, then environment variables, then flags.

COMMANDS:
  serve     Run the HTTP API and the shortfall monitor
  forecast  Print a project's forecast as terminal tables

GLOBAL FLAGS:
  --config     Config file (default: $XDG_CONFIG_HOME/budget-forecast/config.toml)
  --db         SQLite database path, ":memory:" for in-memory
  --log-level  logrus level (debug, info, warn, error)

ENVIRONMENT:
  BUDGET_FORECAST_DB                 Database path
  LOG_LEVEL                          Log level
  PORT                               HTTP port
  BUDGET_FORECAST_MONITOR_SCHEDULE   Monitor cron schedule

EXAMPLES:
  budget-forecast serve --port 3000
  budget-forecast forecast --project laptop --start 2025-03-01 --end 2025-09-01

SEE ALSO:
  - config/config.go: Config file format
  - api/server.go: Router configuration
*/
package main

func main() {
	Execute()
}
