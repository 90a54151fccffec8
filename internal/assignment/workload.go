package assignment

import (
	"context"
	"log/slog"

	"autoassign/internal/domain"
	"autoassign/internal/metrics"
)

// snapshotWorkloads looks up the open complaint count of every inspector,
// one request at a time with a pause between requests. A failed lookup marks
// that inspector's workload unknown and the batch continues. The only error
// returned is the pacer's, when ctx is done.
func (e *Engine) snapshotWorkloads(ctx context.Context, log *slog.Logger, res domain.Resource, inspectors []domain.Inspector) (domain.Snapshot, error) {
	snapshot := make(domain.Snapshot, len(inspectors))
	for _, insp := range inspectors {
		if _, seen := snapshot[insp.ID]; seen {
			continue
		}
		if len(snapshot) > 0 {
			if err := e.pacer.Wait(ctx); err != nil {
				return snapshot, err
			}
		}

		count, err := e.workloads.CountOpenComplaints(ctx, res.ComplaintQuery, insp.Login)
		if err != nil {
			log.Error("error fetching inspector workload",
				"inspector", insp.Name, "login", insp.Login, "err", err)
			e.metrics.IncLookupFailure(res.Region, metrics.StageWorkload)
			snapshot[insp.ID] = domain.UnknownWorkload
			continue
		}
		snapshot[insp.ID] = domain.KnownWorkload(count)
		log.Debug("inspector workload", "inspector", insp.Name, "open", count)
	}
	return snapshot, nil
}
