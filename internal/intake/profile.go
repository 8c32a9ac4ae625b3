package intake

import "github.com/yanizio/intake/internal/form"

var (
	languageFields = []string{"name", "fluency"}
	socialFields   = []string{"platform", "profile_link"}
)

// validateLanguages reports per-row problems, or a single section-level
// problem when no row was retained.  This is the only section with a
// minimum row count.
func validateLanguages(sub *form.Submission, r Rules, errs *Errors) []Language {
	recs := form.ParseGroup(sub, r.group("language", languageFields, languageFields, form.SoftPresence))

	var (
		rows  []Language
		slots []FieldErrors
	)
	for _, rec := range recs {
		row := Language{Name: rec.Get("name"), Fluency: rec.Get("fluency")}
		fe := FieldErrors{}
		if !form.Required(row.Name) {
			fe.add("name", MissingRequired, "Language is required.")
		}
		if !form.Required(row.Fluency) {
			fe.add("fluency", MissingRequired, "Fluency is required.")
		}
		// A blank row fails both rules, so every parsed row is retained.
		rows = append(rows, row)
		slots = append(slots, fe)
	}

	if len(rows) == 0 {
		errs.Add("language_general", MissingRequired, "At least one language entry is required.")
		return rows
	}
	errs.SetRecords("language", slots)
	return rows
}

// validateSocialMedia processes only rows with a platform or a link.  Fully
// blank rows vanish without a slot.
func validateSocialMedia(sub *form.Submission, r Rules) ([]SocialMedia, []FieldErrors) {
	recs := form.ParseGroup(sub, r.group("social_media", socialFields, socialFields, form.SoftPresence))

	var (
		rows  []SocialMedia
		slots []FieldErrors
	)
	for _, rec := range recs {
		if rec.Blank() {
			continue
		}
		row := SocialMedia{Platform: rec.Get("platform"), ProfileLink: rec.Get("profile_link")}
		fe := FieldErrors{}
		if !form.Required(row.Platform) {
			fe.add("platform", MissingRequired, "Platform is required if adding a social media account.")
		}
		if row.ProfileLink != "" && !form.URLShape(row.ProfileLink) {
			fe.add("profile_link", FormatInvalid, "Invalid URL format. Please include http:// or https://.")
		}
		rows = append(rows, row)
		slots = append(slots, fe)
	}
	return rows, slots
}
