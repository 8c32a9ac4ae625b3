package intake

import (
	"context"
	"fmt"
	"mime/multipart"

	"github.com/yanizio/intake/internal/form"
	"github.com/yanizio/intake/internal/metrics"
)

// FileStore persists an accepted upload and returns the generated name it
// was stored under.  kind is “resume” or “photo”.
type FileStore interface {
	Put(ctx context.Context, kind string, fh *multipart.FileHeader) (string, error)
}

type upload struct {
	kind    string // form key and storage namespace
	label   string // “Resume” / “Photo”
	allowed []string
}

// validateFiles checks availability and both uploads.  A type-valid upload
// is stored right away; a storage failure becomes a problem on its own key
// and leaves the other upload untouched.
func (e *Engine) validateFiles(ctx context.Context, sub *form.Submission, app *Application, errs *Errors) {
	app.JoinAvailability = sub.Get("join_availability")
	if !form.Required(app.JoinAvailability) {
		errs.Add("join_availability", MissingRequired, "Join Availability is required.")
	}

	app.ResumeFilename = e.checkUpload(ctx, sub, upload{"resume", "Resume", e.rules.ResumeExtensions}, errs)
	app.PhotoFilename = e.checkUpload(ctx, sub, upload{"photo", "Photo", e.rules.PhotoExtensions}, errs)
}

func (e *Engine) checkUpload(ctx context.Context, sub *form.Submission, u upload, errs *Errors) string {
	fh := sub.File(u.kind)
	if fh == nil || fh.Filename == "" {
		errs.Add(u.kind, FileMissing, u.label+" is required.")
		return ""
	}
	if !form.AllowedExtension(fh.Filename, u.allowed) {
		errs.Add(u.kind+"_type", FileTypeInvalid, fmt.Sprintf(
			"Invalid %s file type. Allowed: %s.", u.kind, allowedList(u.allowed)))
		return ""
	}

	name, err := e.files.Put(ctx, u.kind, fh)
	if err != nil {
		metrics.StorageFailuresTotal.WithLabelValues(u.kind).Inc()
		e.log.Errorw("upload store failed", "kind", u.kind, "err", err)
		errs.Add(u.kind+"_save", StorageFailure, fmt.Sprintf("Could not save %s: %v", u.kind, err))
		return ""
	}
	return name
}
