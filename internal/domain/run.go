package domain

import "time"

type Assignment struct {
	ComplaintID    string
	IncrementalID  string
	InspectorID    string
	InspectorLogin string
	InspectorName  string
	Reassignment   bool
	Err            error // dispatch failure, the local workload was still incremented
	AssignedAt     time.Time
}

// Reasons a resource short-circuited, stored in ResourceReport.Skipped.
const (
	SkipNoPending    = "no pending complaints"
	SkipNoInspectors = "no inspectors"
)

type ResourceReport struct {
	Region           string
	ComplaintQuery   string
	Unassigned       int
	Rejected         int
	Inspectors       int
	UnknownWorkloads int
	Assignments      []Assignment
	NoCandidate      []string // incremental IDs skipped because nobody was left after exclusion
	Skipped          string   // non-empty when the resource short-circuited
	LookupErrors     []string
}

// Failed counts dispatches that returned an error.
func (r ResourceReport) Failed() int {
	n := 0
	for _, a := range r.Assignments {
		if a.Err != nil {
			n++
		}
	}
	return n
}

type RunReport struct {
	RunID      string
	StartedAt  time.Time
	FinishedAt time.Time
	Resources  []ResourceReport
}

func (r RunReport) TotalAssigned() int {
	n := 0
	for _, res := range r.Resources {
		n += len(res.Assignments) - res.Failed()
	}
	return n
}

func (r RunReport) TotalFailed() int {
	n := 0
	for _, res := range r.Resources {
		n += res.Failed()
	}
	return n
}
