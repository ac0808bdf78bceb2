package core

// Status is the lifecycle state of a generation job as reported by the API.
//
// The protocol defines three values. An unrecognized value is preserved
// verbatim rather than rejected at decode time: the server may introduce new
// states, and a client that hard-fails mid-job on an unknown string strands
// the job. Unknown statuses are non-terminal; callers that need strictness
// can check Known.
type Status string

const (
	StatusProcessing Status = "processing"
	StatusSuccess    Status = "success"
	StatusFailed     Status = "failed"
)

// Known reports whether the status is one of the documented values.
func (s Status) Known() bool {
	switch s {
	case StatusProcessing, StatusSuccess, StatusFailed:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the job has finished, successfully or not.
func (s Status) IsTerminal() bool {
	return s == StatusSuccess || s == StatusFailed
}
