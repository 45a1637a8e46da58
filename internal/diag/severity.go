package diag

// Severity defines the importance of a diagnostic.
type Severity uint8

const (
	SevInfo Severity = iota
	SevWarning
	SevError
)

func (s Severity) String() string {
	switch s {
	case SevInfo:
		return "info"
	case SevWarning:
		return "warning"
	case SevError:
		return "error"
	}
	return "unknown"
}

// ParseSeverity accepts the String form; unknown names map to SevError.
func ParseSeverity(s string) Severity {
	switch s {
	case "info":
		return SevInfo
	case "warning":
		return SevWarning
	}
	return SevError
}
