package intake

import (
	"fmt"
	"time"

	"github.com/yanizio/intake/internal/form"
)

var (
	educationFields = []string{"school_name", "subject_studied", "school_year_from", "school_year_to", "education_level"}
	educationProbes = []string{"school_name", "education_level"}

	experienceFields = []string{"company_name", "job_title", "from_date", "to_date"}
	experienceProbes = []string{"company_name", "job_title"}
)

// validateEducation keeps every parsed row.  Years are only checked for
// presence, and no minimum row count applies.
func validateEducation(sub *form.Submission, r Rules) ([]Education, []FieldErrors) {
	recs := form.ParseGroup(sub, r.group("education", educationFields, educationProbes, r.EducationPolicy))

	rows := make([]Education, 0, len(recs))
	slots := make([]FieldErrors, 0, len(recs))
	for _, rec := range recs {
		row := Education{
			SchoolName:     rec.Get("school_name"),
			SubjectStudied: rec.Get("subject_studied"),
			SchoolYearFrom: rec.Get("school_year_from"),
			SchoolYearTo:   rec.Get("school_year_to"),
			Level:          rec.Get("education_level"),
		}
		fe := FieldErrors{}
		if !form.Required(row.SchoolName) {
			fe.add("school_name", MissingRequired, "School Name is required.")
		}
		if !form.Required(row.SchoolYearFrom) {
			fe.add("school_year_from", MissingRequired, "School Year (From) is required.")
		}
		if !form.Required(row.SchoolYearTo) {
			fe.add("school_year_to", MissingRequired, "School Year (To) is required.")
		}
		if !form.Required(row.Level) {
			fe.add("education_level", MissingRequired, "Education Level is required.")
		}
		rows = append(rows, row)
		slots = append(slots, fe)
	}
	return rows, slots
}

// EighteenthBirthday returns the date the applicant reaches age years.
// A Feb 29 birth rolls to Mar 1 in non-leap years, which agrees with
// form.Age.
func EighteenthBirthday(dob time.Time, age int) time.Time {
	return dob.AddDate(age, 0, 0)
}

// validateExperience checks date formats, date order, and the rule that no
// job may start before the applicant came of age.  Rows with no content and
// no problem are dropped.
func validateExperience(sub *form.Submission, r Rules, dob DOB) ([]Experience, []FieldErrors) {
	recs := form.ParseGroup(sub, r.group("experience", experienceFields, experienceProbes, form.SoftPresence))

	var (
		rows  []Experience
		slots []FieldErrors
	)
	for _, rec := range recs {
		row := Experience{
			CompanyName: rec.Get("company_name"),
			JobTitle:    rec.Get("job_title"),
			FromDate:    rec.Get("from_date"),
			ToDate:      rec.Get("to_date"),
		}
		fe := checkExperience(row, r.MinimumAge, dob)
		if rec.Blank() && len(fe) == 0 {
			continue
		}
		rows = append(rows, row)
		slots = append(slots, fe)
	}
	return rows, slots
}

func checkExperience(row Experience, minAge int, dob DOB) FieldErrors {
	fe := FieldErrors{}

	var from, to time.Time
	fromOK, toOK := false, false
	if row.FromDate != "" {
		if d, err := form.ParseDate(row.FromDate); err != nil {
			fe.add("from_date", FormatInvalid, "Invalid From Date format.")
		} else {
			from, fromOK = d, true
		}
	}
	if row.ToDate != "" {
		if d, err := form.ParseDate(row.ToDate); err != nil {
			fe.add("to_date", FormatInvalid, "Invalid To Date format.")
		} else {
			to, toOK = d, true
		}
	}
	if fromOK && toOK && from.After(to) {
		fe.add("to_date", RangeInvalid, "To Date must be after From Date.")
	}

	switch {
	case fromOK && dob.Valid:
		adult := EighteenthBirthday(dob.Date, minAge)
		if from.Before(adult) {
			fe.add("from_date", RangeInvalid, fmt.Sprintf(
				"From Date cannot be before applicant turned %d (%s).", minAge, adult.Format(form.DateLayout)))
		}
	case row.FromDate != "" && !dob.Valid && !dob.Flagged:
		fe.add("from_date", DependentFieldUnvalidatable,
			"Cannot validate From Date without applicant Date of Birth.")
	}
	return fe
}
