package models

// Confidence is the ordinal trust level attached to a resolved geolocation.
type Confidence int

const (
	ConfidenceUnknown Confidence = iota
	ConfidenceLow
	ConfidenceMedium
	ConfidenceHigh
)

// String returns the wire label for the confidence level.
func (c Confidence) String() string {
	switch c {
	case ConfidenceLow:
		return "low"
	case ConfidenceMedium:
		return "medium"
	case ConfidenceHigh:
		return "high"
	default:
		return "unknown"
	}
}

// AtLeast reports whether c meets the given minimum level.
func (c Confidence) AtLeast(min Confidence) bool {
	return c >= min
}
