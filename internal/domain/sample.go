package domain

import "fmt"

// SampleType selects one of the canned demo fixtures. It is a closed
// enum rather than a free string so an unknown key is a request error,
// not a silent fallback.
type SampleType string

const (
	SampleSafe     SampleType = "safe"
	SampleRisky    SampleType = "risky"
	SampleModerate SampleType = "moderate"
)

// ParseSampleType validates a sample key.
func ParseSampleType(s string) (SampleType, error) {
	switch SampleType(s) {
	case SampleSafe, SampleRisky, SampleModerate:
		return SampleType(s), nil
	default:
		return "", fmt.Errorf("unknown sample type %q", s)
	}
}
