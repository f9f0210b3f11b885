package bridge

// State is the terminal (or in the failure case, last reached) state of a
// billing unit in the reconciliation workflow.
type State int

const (
	StatePending State = iota
	StateSkippedBooked
	StateSkippedTooShort
	StateSkippedNotBillable
	StateResolvingProject
	StateSkippedByUser
	StateBooked
)

func (s State) String() string {
	switch s {
	case StatePending:
		return "pending"
	case StateSkippedBooked:
		return "skipped-booked"
	case StateSkippedTooShort:
		return "skipped-too-short"
	case StateSkippedNotBillable:
		return "skipped-not-billable"
	case StateResolvingProject:
		return "resolving-project"
	case StateSkippedByUser:
		return "skipped-by-user"
	case StateBooked:
		return "booked"
	default:
		return "unknown"
	}
}
