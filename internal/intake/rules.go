package intake

import (
	"fmt"
	"strings"

	"github.com/yanizio/intake/internal/form"
)

// Rules carries the tunable parts of the engine.  The zero value is not
// useful; start from DefaultRules.
type Rules struct {
	MaxEntries           int      // slots read per repeating section
	MinimumAge           int      // years, at submission date
	ResumeExtensions     []string // without dots, display order
	PhotoExtensions      []string
	SubdivisionCountries []string    // countries that must name a province
	EducationPolicy      form.Policy // stop rule for education rows
}

// DefaultRules returns the production defaults.
func DefaultRules() Rules {
	return Rules{
		MaxEntries:           form.DefaultGroupLimit,
		MinimumAge:           18,
		ResumeExtensions:     []string{"pdf", "doc", "docx"},
		PhotoExtensions:      []string{"jpg", "jpeg", "png"},
		SubdivisionCountries: []string{"Philippines"},
		EducationPolicy:      form.SoftPresence,
	}
}

// RequiresProvince reports whether country is one whose applicants must name
// a province.  Matching is exact: “philippines” does not qualify.
func (r Rules) RequiresProvince(country string) bool {
	for _, c := range r.SubdivisionCountries {
		if c == country {
			return true
		}
	}
	return false
}

// allowedList renders extensions as “.pdf, .doc, .docx”.
func allowedList(exts []string) string {
	parts := make([]string, len(exts))
	for i, e := range exts {
		parts[i] = "." + strings.TrimPrefix(strings.ToLower(e), ".")
	}
	return strings.Join(parts, ", ")
}

func (r Rules) group(prefix string, fields, probes []string, p form.Policy) form.GroupSpec {
	return form.GroupSpec{
		Prefix: prefix,
		Fields: fields,
		Probes: probes,
		Policy: p,
		Limit:  r.MaxEntries,
	}
}

func (r Rules) validate() error {
	if r.MinimumAge < 0 {
		return fmt.Errorf("intake: minimum age %d is negative", r.MinimumAge)
	}
	if len(r.ResumeExtensions) == 0 || len(r.PhotoExtensions) == 0 {
		return fmt.Errorf("intake: resume and photo extension sets must be non-empty")
	}
	return nil
}
