package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"autoassign/internal/domain"
	"autoassign/internal/notify"
	"autoassign/internal/storage/sqlite"
)

type engine interface {
	Run(ctx context.Context, resources []domain.Resource) (domain.RunReport, error)
}

// Runner performs one scheduled pass: resolve resources, run the engine,
// store the outcome and post a summary.
type Runner struct {
	Resources func() ([]domain.Resource, error)
	Engine    engine
	DB        *sql.DB
	Notifier  *notify.Notifier // nil disables Slack summaries
	Logger    *slog.Logger
}

func (r *Runner) RunOnce(ctx context.Context) error {
	resources, cfgErr := r.Resources()
	if cfgErr != nil {
		r.Logger.Error("invalid resource configuration", "err", cfgErr)
		resources = nil
	}

	report, runErr := r.Engine.Run(ctx, resources)
	if cfgErr != nil && runErr != nil {
		runErr = fmt.Errorf("%w: %v", runErr, cfgErr)
	}

	if r.DB != nil {
		if err := sqlite.SaveRun(r.DB, report, runErr); err != nil {
			r.Logger.Error("error saving run", "run_id", report.RunID, "err", err)
		}
	}
	if r.Notifier != nil {
		if err := r.Notifier.Post(ctx, report, runErr); err != nil {
			r.Logger.Error("error posting run summary", "run_id", report.RunID, "err", err)
		}
	}
	return runErr
}
