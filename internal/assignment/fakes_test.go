package assignment

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"autoassign/internal/domain"
)

type assignCall struct {
	ComplaintID  string
	Login        string
	Reassignment bool
}

// fakeStore implements the four record store ports and records every call in
// timeline, together with pacer waits, so tests can check call ordering.
type fakeStore struct {
	pending    map[string][]domain.Complaint
	pendingErr map[string]error
	inspectors map[string][]domain.Inspector
	inspErr    map[string]error
	workloads  map[string]int
	workErr    map[string]error
	assignErr  map[string]error

	timeline    *[]string
	counted     []string
	assigned    []assignCall
	inspQueries []string
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		pending:    map[string][]domain.Complaint{},
		pendingErr: map[string]error{},
		inspectors: map[string][]domain.Inspector{},
		workloads:  map[string]int{},
		inspErr:    map[string]error{},
		workErr:    map[string]error{},
		assignErr:  map[string]error{},
		timeline:   &[]string{},
	}
}

func (f *fakeStore) FetchPendingComplaints(_ context.Context, q string) ([]domain.Complaint, error) {
	*f.timeline = append(*f.timeline, "pending:"+q)
	return f.pending[q], f.pendingErr[q]
}

func (f *fakeStore) FetchInspectors(_ context.Context, q string) ([]domain.Inspector, error) {
	*f.timeline = append(*f.timeline, "inspectors:"+q)
	f.inspQueries = append(f.inspQueries, q)
	return f.inspectors[q], nil
}

func (f *fakeStore) CountOpenComplaints(_ context.Context, _ string, login string) (int, error) {
	*f.timeline = append(*f.timeline, "count:"+login)
	f.counted = append(f.counted, login)
	if err := f.workErr[login]; err != nil {
		return 0, err
	}
	return f.workloads[login], nil
}

func (f *fakeStore) AssignInspector(_ context.Context, complaintID, login string, reassignment bool) error {
	*f.timeline = append(*f.timeline, fmt.Sprintf("assign:%s->%s", complaintID, login))
	f.assigned = append(f.assigned, assignCall{ComplaintID: complaintID, Login: login, Reassignment: reassignment})
	return f.assignErr[complaintID]
}

type recordingPacer struct {
	timeline *[]string
	waits    int
	err      error
}

func (p *recordingPacer) Wait(ctx context.Context) error {
	p.waits++
	*p.timeline = append(*p.timeline, "wait")
	if p.err != nil {
		return p.err
	}
	return ctx.Err()
}

func newTestEngine(store *fakeStore, opts ...Option) (*Engine, *recordingPacer, *bytes.Buffer) {
	pacer := &recordingPacer{timeline: store.timeline}
	buf := &bytes.Buffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	base := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	all := append([]Option{
		WithPacer(pacer),
		WithLogger(logger),
		WithClock(func() time.Time { return base }),
	}, opts...)
	return New(store, store, store, store, all...), pacer, buf
}

func inspector(id, region string, specs ...string) domain.Inspector {
	return domain.Inspector{
		ID:              id,
		Name:            "Inspector " + id,
		Login:           id + "@example.org",
		Region:          region,
		Specializations: specs,
	}
}
