// internal/form/group.go
//
// Intake – Forms subsystem: repeating-group reconstruction.
//
// Context
//   Client-addable rows are posted as “prefix[index][field]”.  Indices start
//   at zero and are per-section, but nothing guarantees they are contiguous
//   or bounded, so ParseGroup walks indices upward until a slot is judged
//   absent or the hard limit is reached.
//
// Stopping policies
//   •  StrictPresence – the slot exists only if the first probe key exists.
//   •  SoftPresence   – the slot is absent only when no probe key exists AND
//      every field reads empty.  A half-filled trailing row is therefore
//      still parsed, so “required” messages can point at it.
//
//   Slots past Limit are silently ignored.  This bounds work on hostile input
//   and is not reported as a validation failure.
//
//------------------------------------------------------------------------------

package form

import "fmt"

// DefaultGroupLimit is the maximum number of slots read per section.
const DefaultGroupLimit = 50

// Policy selects how ParseGroup decides that the sequence has ended.
type Policy int

const (
	// SoftPresence stops on a slot that is absent by key and empty by value.
	SoftPresence Policy = iota
	// StrictPresence stops on the absence of the first probe key.
	StrictPresence
)

// String returns the config spelling of p.
func (p Policy) String() string {
	if p == StrictPresence {
		return "strict"
	}
	return "soft"
}

// ParsePolicy maps “strict” / “soft” to a Policy.  Empty means soft.
func ParsePolicy(s string) (Policy, error) {
	switch s {
	case "", "soft":
		return SoftPresence, nil
	case "strict":
		return StrictPresence, nil
	default:
		return SoftPresence, fmt.Errorf("unknown group policy %q", s)
	}
}

// GroupSpec describes one repeating section.
type GroupSpec struct {
	Prefix string   // e.g. “education”
	Fields []string // every sub-key read per slot, in display order
	Probes []string // sub-keys whose presence marks an intentional slot
	Policy Policy
	Limit  int // ≤ 0 means DefaultGroupLimit
}

// Record is one parsed slot.  Values holds every field in GroupSpec.Fields,
// trimmed, with “” for absent keys.
type Record struct {
	Index  int
	Values map[string]string
}

// Get returns the trimmed value of field.
func (r Record) Get(field string) string { return r.Values[field] }

// Blank reports whether every field is empty.
func (r Record) Blank() bool {
	for _, v := range r.Values {
		if v != "" {
			return false
		}
	}
	return true
}

// Key builds the flat submission key for one slot field.
func Key(prefix string, index int, field string) string {
	return fmt.Sprintf("%s[%d][%s]", prefix, index, field)
}

// ParseGroup reconstructs the ordered slots of spec from sub.  Blank slots
// that precede the stop are kept; callers decide whether to retain them.
func ParseGroup(sub *Submission, spec GroupSpec) []Record {
	limit := spec.Limit
	if limit <= 0 {
		limit = DefaultGroupLimit
	}

	var out []Record
	for i := 0; i < limit; i++ {
		rec := Record{Index: i, Values: make(map[string]string, len(spec.Fields))}
		for _, f := range spec.Fields {
			rec.Values[f] = sub.Get(Key(spec.Prefix, i, f))
		}

		if slotAbsent(sub, spec, i, rec) {
			break
		}
		out = append(out, rec)
	}
	return out
}

// slotAbsent applies the stopping policy to slot i.
func slotAbsent(sub *Submission, spec GroupSpec, i int, rec Record) bool {
	switch spec.Policy {
	case StrictPresence:
		if len(spec.Probes) == 0 {
			return true
		}
		return !sub.Has(Key(spec.Prefix, i, spec.Probes[0]))
	default:
		for _, p := range spec.Probes {
			if sub.Has(Key(spec.Prefix, i, p)) {
				return false
			}
		}
		return rec.Blank()
	}
}
