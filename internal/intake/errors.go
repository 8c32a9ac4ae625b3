// internal/intake/errors.go
//
// Intake – validation outcome types.
//
// Context
//   One submission can fail many rules at once.  Every section records its
//   problems into a shared *Errors value instead of returning early, so one
//   response names every offending field, record, and message.
//
//   Scalar problems are keyed by field name (“fullName”, “resume_type”).
//   Repeating sections keep one slot per retained record, in index order, so
//   a renderer can line messages up with the exact rows it posted.
//
// Workflow
//   •  Sections call Add / SetRecords.
//   •  Engine.Submit wraps a non-empty *Errors in *ValidationError.
//   •  Handlers detect it with IsValidationError and re-display the draft.
//
//------------------------------------------------------------------------------

package intake

import (
	"encoding/json"
	"errors"
	"sort"
)

// Kind classifies a Problem.
type Kind string

const (
	MissingRequired             Kind = "missing_required"
	FormatInvalid               Kind = "format_invalid"
	RangeInvalid                Kind = "range_invalid"
	DependentFieldUnvalidatable Kind = "dependent_field_unvalidatable"
	FileTypeInvalid             Kind = "file_type_invalid"
	FileMissing                 Kind = "file_missing"
	StorageFailure              Kind = "storage_failure"
	DuplicateEntry              Kind = "duplicate_entry"
)

// ErrDuplicate is returned by a Registry whose own constraint rejected an
// Append.  The engine reports it as a DuplicateEntry problem.
var ErrDuplicate = errors.New("intake: applicant already registered")

// Problem is one user-facing failure on one field.
type Problem struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// FieldErrors maps field name to its Problem.
type FieldErrors map[string]Problem

func (fe FieldErrors) add(field string, kind Kind, msg string) {
	fe[field] = Problem{Kind: kind, Message: msg}
}

// Errors aggregates every problem of one submission.
type Errors struct {
	Fields  FieldErrors              // scalar and section-level keys
	Records map[string][]FieldErrors // section → one slot per retained record
}

// NewErrors returns an empty, writable Errors.
func NewErrors() *Errors {
	return &Errors{
		Fields:  FieldErrors{},
		Records: map[string][]FieldErrors{},
	}
}

// Add records a scalar problem.  A later Add on the same key replaces it.
func (e *Errors) Add(field string, kind Kind, msg string) {
	e.Fields.add(field, kind, msg)
}

// SetRecords stores per-record slots for section when at least one slot is
// non-empty.  Clean sections leave no key behind.
func (e *Errors) SetRecords(section string, slots []FieldErrors) {
	for _, s := range slots {
		if len(s) > 0 {
			e.Records[section] = slots
			return
		}
	}
}

// Empty reports whether no problem was recorded.
func (e *Errors) Empty() bool { return e.Count() == 0 }

// Count returns the number of field-level problems, records included.
func (e *Errors) Count() int {
	n := len(e.Fields)
	for _, slots := range e.Records {
		for _, s := range slots {
			n += len(s)
		}
	}
	return n
}

// Has reports whether a scalar key carries a problem.
func (e *Errors) Has(field string) bool {
	_, ok := e.Fields[field]
	return ok
}

// Get returns the scalar Problem for field.
func (e *Errors) Get(field string) (Problem, bool) {
	p, ok := e.Fields[field]
	return p, ok
}

// Record returns the Problem at section[index][field].
func (e *Errors) Record(section string, index int, field string) (Problem, bool) {
	slots := e.Records[section]
	if index < 0 || index >= len(slots) {
		return Problem{}, false
	}
	p, ok := slots[index][field]
	return p, ok
}

// Keys returns every top-level key, scalar and section, sorted.
func (e *Errors) Keys() []string {
	keys := make([]string, 0, len(e.Fields)+len(e.Records))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	for k := range e.Records {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// MarshalJSON flattens Errors to the display shape:
//
//	{"fullName": "Full Name is required.", "education": [{"school_name": "…"}, {}]}
func (e *Errors) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(e.Fields)+len(e.Records))
	for k, p := range e.Fields {
		out[k] = p.Message
	}
	for section, slots := range e.Records {
		list := make([]map[string]string, len(slots))
		for i, s := range slots {
			list[i] = make(map[string]string, len(s))
			for f, p := range s {
				list[i][f] = p.Message
			}
		}
		out[section] = list
	}
	return json.Marshal(out)
}

// ValidationError is returned by Engine.Submit when the submission is
// rejected.  Draft holds the normalized input so callers can re-display it.
type ValidationError struct {
	Draft  Application
	Errors *Errors
}

func (ve *ValidationError) Error() string { return "application validation failed" }

// IsValidationError reports whether err came from a rejected submission.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// AsValidationError unwraps err into a *ValidationError when possible.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	ok := errors.As(err, &ve)
	return ve, ok
}
