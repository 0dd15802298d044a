package diag

// Severity ranks how serious a diagnostic is. The ordering is
// meaningful: HasErrors and Sort compare severities numerically.
type Severity uint8

const (
	// SevInfo marks purely informational output.
	SevInfo Severity = iota
	// SevWarning marks suspicious declarations the loader still binds.
	SevWarning
	// SevError marks declarations the loader had to reject.
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "INFO"
	case SevWarning:
		return "WARNING"
	case SevError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}
