package review

import (
	"errors"
	"fmt"
	"strings"

	"github.com/sells-group/intake-cli/internal/model"
)

var (
	// ErrInvalidTransition is returned for a status change the workflow does
	// not allow. Transitions out of promoted always fail with it.
	ErrInvalidTransition = errors.New("review: invalid status transition")

	// ErrAlreadyPromoted is returned when promotion is attempted twice.
	ErrAlreadyPromoted = errors.New("review: record already promoted")

	// ErrNoSourceURL is returned by Refresh when raw_payload has no source URL.
	ErrNoSourceURL = errors.New("review: record has no source url to refresh from")

	// ErrUnknownRecord is returned by queue actions for ids not in the queue.
	ErrUnknownRecord = errors.New("review: record not in queue")
)

// FieldError is a single form validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError reports promotion form fields that block submission. It is
// returned before any collaborator is called.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		parts = append(parts, f.Field+": "+f.Message)
	}
	return "review: invalid promotion form: " + strings.Join(parts, "; ")
}

// Field returns the message recorded for name, if any.
func (e *ValidationError) Field(name string) (string, bool) {
	for _, f := range e.Fields {
		if f.Field == name {
			return f.Message, true
		}
	}
	return "", false
}

// Phase names a step of the two-phase promotion.
type Phase string

const (
	PhaseUpdate  Phase = "update"
	PhasePromote Phase = "promote"
)

// PromotionError is returned when a promotion phase fails. When Phase is
// PhasePromote, Updated holds the record as persisted by the update phase:
// its fields changed but its status did not.
type PromotionError struct {
	RecordID string
	Phase    Phase
	Updated  *model.Record
	Err      error
}

func (e *PromotionError) Error() string {
	return fmt.Sprintf("review: promote %s: %s phase failed: %v", e.RecordID, e.Phase, e.Err)
}

func (e *PromotionError) Unwrap() error { return e.Err }

// BulkResult is the outcome of one member of a bulk action.
type BulkResult struct {
	ID     string        `json:"id"`
	Record *model.Record `json:"record,omitempty"`
	Err    error         `json:"-"`
}

// OK reports whether the member succeeded.
func (r BulkResult) OK() bool { return r.Err == nil }

// BulkError aggregates the failed members of a bulk action.
type BulkError struct {
	Action string
	Total  int
	Failed []BulkResult
}

func (e *BulkError) Error() string {
	return fmt.Sprintf("review: bulk %s: %d of %d failed", e.Action, len(e.Failed), e.Total)
}

func (e *BulkError) Unwrap() []error {
	errs := make([]error, 0, len(e.Failed))
	for _, r := range e.Failed {
		errs = append(errs, r.Err)
	}
	return errs
}
