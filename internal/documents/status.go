package documents

// Status is the processing lifecycle state of an analyzable unit.
type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// CanBegin reports whether an analyze request may move the unit into
// processing. Failed units are re-entrant; a unit already processing is not.
func (s Status) CanBegin() bool {
	switch s {
	case StatusPending, StatusCompleted, StatusFailed:
		return true
	}
	return false
}
