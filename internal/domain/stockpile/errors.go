package stockpile

import (
	"fmt"
	"strings"
)

// MarkerFailure is one marker write that did not go through
type MarkerFailure struct {
	Key MarkerKey
	Err error
}

// PartialRebalanceFailure reports the markers that failed during a resize. Markers that
// were written stay written; nothing is rolled back.
type PartialRebalanceFailure struct {
	TypeID   int32
	Failures []MarkerFailure
}

func (e *PartialRebalanceFailure) Error() string {
	parts := make([]string, 0, len(e.Failures))
	for _, f := range e.Failures {
		parts = append(parts, fmt.Sprintf("%s: %v", f.Key, f.Err))
	}
	return fmt.Sprintf("resize of type %d failed for %d marker(s): %s", e.TypeID, len(e.Failures), strings.Join(parts, "; "))
}

func (e *PartialRebalanceFailure) Unwrap() []error {
	errs := make([]error, 0, len(e.Failures))
	for _, f := range e.Failures {
		errs = append(errs, f.Err)
	}
	return errs
}
