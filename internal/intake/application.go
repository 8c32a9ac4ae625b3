// internal/intake/application.go
//
// Intake – application data model.
//
// Application is the normalized shape of one submission.  It doubles as the
// re-display draft on rejection, so it may hold invalid values.  Accepted is
// the only type a Registry will take, and only this package can build one,
// after every rule has passed.

package intake

import (
	"encoding/json"
	"slices"
	"time"
)

// Education is one school history row.  Years are kept as submitted.
type Education struct {
	SchoolName     string `json:"school_name"`
	SubjectStudied string `json:"subject_studied"`
	SchoolYearFrom string `json:"school_year_from"`
	SchoolYearTo   string `json:"school_year_to"`
	Level          string `json:"education_level"`
}

// Experience is one employment row.  Dates are YYYY-MM-DD when valid.
type Experience struct {
	CompanyName string `json:"company_name"`
	JobTitle    string `json:"job_title"`
	FromDate    string `json:"from_date"`
	ToDate      string `json:"to_date"`
}

// Language is one spoken-language row.
type Language struct {
	Name    string `json:"name"`
	Fluency string `json:"fluency"`
}

// SocialMedia is one optional profile row.
type SocialMedia struct {
	Platform    string `json:"platform"`
	ProfileLink string `json:"profile_link"`
}

// Application holds every normalized field.  JSON names match the posted
// form keys so a renderer can prefill inputs directly.
type Application struct {
	FullName      string `json:"fullName"`
	DateOfBirth   string `json:"dob"`
	Gender        string `json:"gender"`
	MaritalStatus string `json:"maritalStatus"`
	Mobile        string `json:"mobile"`
	Viber         string `json:"viber"`
	WhatsApp      string `json:"whatsapp"`
	Email         string `json:"email"`

	Street     string `json:"street"`
	Barangay   string `json:"barangay"`
	City       string `json:"city"`
	Province   string `json:"province"`
	Country    string `json:"country"`
	PostalCode string `json:"postalCode"`

	Education   []Education   `json:"education"`
	Experience  []Experience  `json:"experience"`
	Languages   []Language    `json:"language"`
	SocialMedia []SocialMedia `json:"social_media"`

	JoinAvailability string `json:"join_availability"`
	ResumeFilename   string `json:"resume_filename,omitempty"`
	PhotoFilename    string `json:"photo_filename,omitempty"`
}

func (a Application) clone() Application {
	a.Education = slices.Clone(a.Education)
	a.Experience = slices.Clone(a.Experience)
	a.Languages = slices.Clone(a.Languages)
	a.SocialMedia = slices.Clone(a.SocialMedia)
	return a
}

// Accepted is a fully validated, uniqueness-checked application.
type Accepted struct {
	app         Application
	submittedAt time.Time
}

func newAccepted(app Application, at time.Time) *Accepted {
	return &Accepted{app: app.clone(), submittedAt: at.UTC()}
}

// Application returns a copy of the accepted data.
func (a *Accepted) Application() Application { return a.app.clone() }

// Email is the uniqueness key shared with Mobile.
func (a *Accepted) Email() string { return a.app.Email }

// Mobile is the uniqueness key shared with Email.
func (a *Accepted) Mobile() string { return a.app.Mobile }

// FullName is used by stores for display columns.
func (a *Accepted) FullName() string { return a.app.FullName }

// SubmittedAt is the acceptance time in UTC.
func (a *Accepted) SubmittedAt() time.Time { return a.submittedAt }

// MarshalJSON emits {"application": …, "submitted_at": …} for stores.
func (a *Accepted) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Application Application `json:"application"`
		SubmittedAt time.Time   `json:"submitted_at"`
	}{a.app, a.submittedAt})
}
