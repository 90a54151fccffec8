package assignment

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"time"

	"autoassign/internal/domain"
	"autoassign/internal/metrics"

	"github.com/google/uuid"
)

// ErrNoResources is returned by Run when it is given no resources to process.
var ErrNoResources = errors.New("no resources configured")

// Engine matches pending complaints to inspectors, one resource at a time.
// It is not safe for concurrent use; runs must not overlap.
type Engine struct {
	complaints ComplaintSource
	inspectors InspectorSource
	workloads  WorkloadCounter
	assigner   Assigner

	pacer   Pacer
	logger  *slog.Logger
	metrics metrics.Recorder
	now     func() time.Time
	runID   func() string
}

type Option func(*Engine)

func WithPacer(p Pacer) Option {
	return func(e *Engine) { e.pacer = p }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

func WithMetrics(m metrics.Recorder) Option {
	return func(e *Engine) { e.metrics = m }
}

func WithClock(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

func New(complaints ComplaintSource, inspectors InspectorSource, workloads WorkloadCounter, assigner Assigner, opts ...Option) *Engine {
	e := &Engine{
		complaints: complaints,
		inspectors: inspectors,
		workloads:  workloads,
		assigner:   assigner,
		pacer:      FixedDelay{Interval: DefaultPaceInterval},
		logger:     slog.Default(),
		metrics:    metrics.Nop{},
		now:        time.Now,
		runID:      func() string { return uuid.NewString() },
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Run processes resources in order. Lookup, selection and dispatch failures
// are logged and recorded in the report; they never stop the run. Run
// returns an error only when resources is empty (before anything is
// processed) or when ctx ends during a pause.
func (e *Engine) Run(ctx context.Context, resources []domain.Resource) (domain.RunReport, error) {
	report := domain.RunReport{RunID: e.runID(), StartedAt: e.now()}
	log := e.logger.With("run_id", report.RunID)

	if len(resources) == 0 {
		log.Error("no resources configured, aborting complaint assignment")
		report.FinishedAt = e.now()
		e.metrics.ObserveRun(report.FinishedAt.Sub(report.StartedAt), false)
		return report, ErrNoResources
	}

	log.Info("starting complaint assignment", "resources", len(resources))
	for _, res := range resources {
		rr, err := e.runResource(ctx, log, res)
		report.Resources = append(report.Resources, rr)
		if err != nil {
			report.FinishedAt = e.now()
			log.Warn("complaint assignment interrupted", "region", res.Region, "err", err)
			e.metrics.ObserveRun(report.FinishedAt.Sub(report.StartedAt), false)
			return report, err
		}
	}

	report.FinishedAt = e.now()
	e.metrics.ObserveRun(report.FinishedAt.Sub(report.StartedAt), true)
	log.Info("finished complaint assignment",
		"assigned", report.TotalAssigned(),
		"failed", report.TotalFailed(),
		"duration", report.FinishedAt.Sub(report.StartedAt).Round(time.Millisecond))
	return report, nil
}

func (e *Engine) runResource(ctx context.Context, log *slog.Logger, res domain.Resource) (domain.ResourceReport, error) {
	rr := domain.ResourceReport{Region: res.Region, ComplaintQuery: res.ComplaintQuery}
	log = log.With("region", res.Region, "complaint_query", res.ComplaintQuery)

	log.Info("checking for pending complaints")
	pending, err := e.complaints.FetchPendingComplaints(ctx, res.ComplaintQuery)
	if err != nil {
		log.Error("error fetching pending complaints", "err", err)
		e.metrics.IncLookupFailure(res.Region, metrics.StageComplaints)
		rr.LookupErrors = append(rr.LookupErrors, err.Error())
	}
	for _, c := range pending {
		if c.IsRejected() {
			rr.Rejected++
		} else {
			rr.Unassigned++
		}
	}
	log.Info("found pending complaints", "unassigned", rr.Unassigned, "rejected", rr.Rejected)
	if len(pending) == 0 {
		rr.Skipped = domain.SkipNoPending
		return rr, nil
	}

	log.Info("getting inspectors", "inspector_query", res.InspectorQuery)
	inspectors, err := e.inspectors.FetchInspectors(ctx, res.InspectorQuery)
	if err != nil {
		log.Error("error fetching inspectors, skipping assignments", "inspector_query", res.InspectorQuery, "err", err)
		e.metrics.IncLookupFailure(res.Region, metrics.StageInspectors)
		rr.LookupErrors = append(rr.LookupErrors, err.Error())
		rr.Skipped = domain.SkipNoInspectors
		return rr, nil
	}
	if len(inspectors) == 0 {
		log.Error("no inspectors found, skipping assignments", "inspector_query", res.InspectorQuery)
		rr.Skipped = domain.SkipNoInspectors
		return rr, nil
	}
	rr.Inspectors = len(inspectors)

	log.Info("calculating workloads, this might take a while", "inspectors", len(inspectors))
	snapshot, err := e.snapshotWorkloads(ctx, log, res, inspectors)
	if err != nil {
		return rr, err
	}
	for _, w := range snapshot {
		if !w.Known() {
			rr.UnknownWorkloads++
		}
	}
	log.Info("finished calculating workloads, picking the fittest inspector per complaint",
		"unknown", rr.UnknownWorkloads)

	if err := e.assignPending(ctx, log, &rr, res, pending, inspectors, snapshot); err != nil {
		return rr, err
	}

	log.Info("finished resource",
		"assigned", len(rr.Assignments)-rr.Failed(),
		"failed", rr.Failed(),
		"no_candidate", len(rr.NoCandidate))
	return rr, nil
}

// assignPending picks and assigns an inspector for every pending complaint.
// snapshot is updated in place after each dispatch, whatever its outcome, so
// later complaints see the load added earlier in the pass.
func (e *Engine) assignPending(ctx context.Context, log *slog.Logger, rr *domain.ResourceReport, res domain.Resource,
	pending []domain.Complaint, inspectors []domain.Inspector, snapshot domain.Snapshot) error {
	byID := make(map[string]domain.Inspector, len(inspectors))
	for _, insp := range inspectors {
		if _, ok := byID[insp.ID]; !ok {
			byID[insp.ID] = insp
		}
	}

	for _, c := range pending {
		clog := log.With("complaint", c.IncrementalID)
		var excludeIDs []string
		if c.IsRejected() {
			excludeIDs = rejectingInspectorIDs(inspectors, c.RejectedBy)
		}

		fittestID, ok := PickFittest(scoreCandidates(c, inspectors, snapshot), excludeIDs...)
		if !ok {
			clog.Error("no inspector left for complaint, skipping", "rejected_by", c.RejectedBy)
			e.metrics.IncNoCandidate(res.Region)
			rr.NoCandidate = append(rr.NoCandidate, c.IncrementalID)
			continue
		}
		fittest := byID[fittestID]
		clog.Info("fittest inspector found, assigning",
			"inspector", fittest.Name, "workload", snapshot[fittestID].String(), "reassignment", c.IsRejected())

		if err := e.pacer.Wait(ctx); err != nil {
			return err
		}
		err := e.assigner.AssignInspector(ctx, c.ID, fittest.Login, c.IsRejected())
		snapshot[fittestID] = snapshot[fittestID].Inc()

		rr.Assignments = append(rr.Assignments, domain.Assignment{
			ComplaintID:    c.ID,
			IncrementalID:  c.IncrementalID,
			InspectorID:    fittest.ID,
			InspectorLogin: fittest.Login,
			InspectorName:  fittest.Name,
			Reassignment:   c.IsRejected(),
			Err:            err,
			AssignedAt:     e.now(),
		})
		e.metrics.IncAssignment(res.Region, c.IsRejected(), err == nil)
		if err != nil {
			clog.Error("error assigning inspector", "inspector", fittest.Name, "login", fittest.Login, "err", err)
			continue
		}
		clog.Info("finished assigning complaint", "inspector", fittest.Name)
	}
	return nil
}

func scoreCandidates(c domain.Complaint, inspectors []domain.Inspector, snapshot domain.Snapshot) []Candidate {
	candidates := make([]Candidate, 0, len(inspectors))
	seen := make(map[string]bool, len(inspectors))
	for _, insp := range inspectors {
		if seen[insp.ID] {
			continue
		}
		seen[insp.ID] = true
		candidates = append(candidates, Candidate{
			InspectorID: insp.ID,
			Score:       ScoreInspector(c, insp, snapshot[insp.ID]),
		})
	}
	return candidates
}

// rejectingInspectorIDs resolves the login recorded on a declined complaint to
// every inspector ID registered under it in this pool.
func rejectingInspectorIDs(inspectors []domain.Inspector, login string) []string {
	var ids []string
	for _, insp := range inspectors {
		if insp.Login == login && !slices.Contains(ids, insp.ID) {
			ids = append(ids, insp.ID)
		}
	}
	return ids
}
