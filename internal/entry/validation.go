package entry

import (
	"fmt"

	"github.com/mauv0809/catchboard/internal/competition"
)

// ValidationError reports a submission rejected before it reaches the
// lifecycle. Field names match the write intent's JSON fields.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// ValidateHourly checks the values of an hourly submission.
func ValidateHourly(hour, fishCount, totalWeight int) error {
	if hour < 1 || hour > competition.Hours {
		return &ValidationError{Field: "hour", Reason: fmt.Sprintf("must be between 1 and %d", competition.Hours)}
	}
	if fishCount < 0 {
		return &ValidationError{Field: "fishCount", Reason: "must not be negative"}
	}
	if totalWeight < 0 {
		return &ValidationError{Field: "totalWeight", Reason: "must not be negative"}
	}
	if fishCount == 0 && totalWeight != 0 {
		return &ValidationError{Field: "totalWeight", Reason: "must be 0 when no fish were caught"}
	}
	return nil
}

// ValidateBigCatch checks the value of a big-catch submission.
func ValidateBigCatch(biggestCatch int) error {
	if biggestCatch < 0 {
		return &ValidationError{Field: "biggestCatch", Reason: "must not be negative"}
	}
	return nil
}
