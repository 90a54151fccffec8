package domain

import "strconv"

// Workload is an inspector's count of open complaints. The zero value is a
// known count of zero; UnknownWorkload marks a failed lookup and ranks worse
// than every known count.
type Workload struct {
	count   int
	unknown bool
}

var UnknownWorkload = Workload{unknown: true}

func KnownWorkload(n int) Workload {
	if n < 0 {
		n = 0
	}
	return Workload{count: n}
}

func (w Workload) Known() bool { return !w.unknown }

// Count returns the open complaint count; it is meaningless when unknown.
func (w Workload) Count() int { return w.count }

// Inc returns the workload with one more open complaint. Unknown stays unknown.
func (w Workload) Inc() Workload {
	if w.unknown {
		return w
	}
	return Workload{count: w.count + 1}
}

// Less reports whether w is a lighter load than other.
func (w Workload) Less(other Workload) bool {
	switch {
	case w.unknown:
		return false
	case other.unknown:
		return true
	default:
		return w.count < other.count
	}
}

func (w Workload) String() string {
	if w.unknown {
		return "unknown"
	}
	return strconv.Itoa(w.count)
}

// Snapshot maps inspector ID to workload for one resource pass.
type Snapshot map[string]Workload

type Score struct {
	SameRegion              bool
	MatchingSpecializations int
	Workload                Workload
}
