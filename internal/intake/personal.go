package intake

import (
	"fmt"
	"time"

	"github.com/yanizio/intake/internal/form"
)

// DOB is the Personal Information verdict on the date of birth, handed to
// sections that depend on it.
type DOB struct {
	Date    time.Time
	Valid   bool // parsed and old enough
	Flagged bool // “dob” carries its own problem
}

// validatePersonal checks identity and contact fields.  Gender and marital
// status are carried through without rules.
func validatePersonal(sub *form.Submission, r Rules, today time.Time, app *Application, errs *Errors) DOB {
	app.FullName = sub.Get("fullName")
	app.DateOfBirth = sub.Get("dob")
	app.Gender = sub.Get("gender")
	app.MaritalStatus = sub.Get("maritalStatus")
	app.Mobile = sub.Get("mobile")
	app.Viber = sub.Get("viber")
	app.WhatsApp = sub.Get("whatsapp")
	app.Email = sub.Get("email")

	if !form.Required(app.FullName) {
		errs.Add("fullName", MissingRequired, "Full Name is required.")
	}

	dob := checkDOB(app.DateOfBirth, r.MinimumAge, today, errs)

	switch {
	case !form.Required(app.Mobile):
		errs.Add("mobile", MissingRequired, "Mobile number is required.")
	case !form.NumericIfPresent(app.Mobile):
		errs.Add("mobile", FormatInvalid, "Mobile number must be numeric.")
	}
	if !form.NumericIfPresent(app.Viber) {
		errs.Add("viber", FormatInvalid, "Viber number must be numeric if provided.")
	}
	if !form.NumericIfPresent(app.WhatsApp) {
		errs.Add("whatsapp", FormatInvalid, "WhatsApp number must be numeric if provided.")
	}

	switch {
	case !form.Required(app.Email):
		errs.Add("email", MissingRequired, "Email is required.")
	case !form.EmailShape(app.Email):
		errs.Add("email", FormatInvalid, "Invalid email format.")
	}
	return dob
}

func checkDOB(raw string, minAge int, today time.Time, errs *Errors) DOB {
	if !form.Required(raw) {
		errs.Add("dob", MissingRequired, "Date of Birth is required.")
		return DOB{Flagged: true}
	}
	d, err := form.ParseDate(raw)
	if err != nil {
		errs.Add("dob", FormatInvalid, "Invalid Date of Birth format.")
		return DOB{Flagged: true}
	}
	if form.Age(d, today) < minAge {
		errs.Add("dob", RangeInvalid, fmt.Sprintf("Applicant must be %d years or older.", minAge))
		return DOB{Date: d, Flagged: true}
	}
	return DOB{Date: d, Valid: true}
}

// validateAddress applies the country-dependent province rule and the
// province-dependent city rule.
func validateAddress(sub *form.Submission, r Rules, app *Application, errs *Errors) {
	app.Street = sub.Get("street")
	app.Country = sub.Get("country")
	app.Province = sub.Get("province")
	app.City = sub.Get("city")
	app.Barangay = sub.Get("barangay")
	app.PostalCode = sub.Get("postalCode")

	if !form.Required(app.Country) {
		errs.Add("country", MissingRequired, "Country is required.")
	}
	if r.RequiresProvince(app.Country) && !form.Required(app.Province) {
		errs.Add("province", MissingRequired, "Province is required.")
	}
	if form.Required(app.Province) && !form.Required(app.City) {
		errs.Add("city", MissingRequired, "City/Municipality is required.")
	}
	if !form.NumericIfPresent(app.PostalCode) {
		errs.Add("postalCode", FormatInvalid, "Postal Code must be numeric if provided.")
	}
}
