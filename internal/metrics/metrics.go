package metrics

import "time"

// Recorder receives assignment engine measurements.
type Recorder interface {
	ObserveRun(duration time.Duration, ok bool)
	IncAssignment(region string, reassignment, ok bool)
	IncLookupFailure(region, stage string)
	IncNoCandidate(region string)
}

// Lookup stages reported through IncLookupFailure.
const (
	StageComplaints = "complaints"
	StageInspectors = "inspectors"
	StageWorkload   = "workload"
)

// Nop discards every measurement.
type Nop struct{}

var _ Recorder = Nop{}

func (Nop) ObserveRun(time.Duration, bool)   {}
func (Nop) IncAssignment(string, bool, bool) {}
func (Nop) IncLookupFailure(string, string)  {}
func (Nop) IncNoCandidate(string)            {}
