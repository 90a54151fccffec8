package assignment

import (
	"context"

	"autoassign/internal/domain"
)

// ComplaintSource returns the complaints of one resource that still need an
// inspector: newly validated ones and ones declined by their inspector but not
// yet reassigned. Implementations may return a partial list together with an
// error.
type ComplaintSource interface {
	FetchPendingComplaints(ctx context.Context, complaintQuery string) ([]domain.Complaint, error)
}

type InspectorSource interface {
	FetchInspectors(ctx context.Context, inspectorQuery string) ([]domain.Inspector, error)
}

// WorkloadCounter counts the complaints assigned to login that are not closed.
type WorkloadCounter interface {
	CountOpenComplaints(ctx context.Context, complaintQuery, login string) (int, error)
}

type Assigner interface {
	AssignInspector(ctx context.Context, complaintID, login string, reassignment bool) error
}
