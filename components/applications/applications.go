// components/applications/applications.go
//
// Applications Component – accepts posted job applications.
//
//	POST /applications          multipart form → 303 /applications/success
//	                            or 422 {"form": …, "values": …, "errors": …}
//	GET  /applications/success  confirmation page
//
// Clients sending Accept: application/json get 201 with the stored record
// instead of the redirect.
package applications

import (
	"context"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/intake/internal/component"
	"github.com/yanizio/intake/internal/form"
	"github.com/yanizio/intake/internal/intake"
	"github.com/yanizio/intake/internal/logger"
	"github.com/yanizio/intake/internal/requestinfo"
)

var _ component.Component = (*Comp)(nil)

// Submitter is the engine surface the handler needs.
type Submitter interface {
	Submit(ctx context.Context, sub *form.Submission) (*intake.Accepted, error)
}

// Comp implements component.Component.
type Comp struct {
	engine   Submitter
	maxBytes int64
	ddl      []string
}

// New wires the component.  maxBytes caps the request body; ddl is returned
// from Migrations and may be nil.
func New(engine Submitter, maxBytes int64, ddl ...string) *Comp {
	return &Comp{engine: engine, maxBytes: maxBytes, ddl: ddl}
}

func (c *Comp) Name() string         { return "applications" }
func (c *Comp) Migrations() []string { return c.ddl }

func (c *Comp) Routes() chi.Router {
	r := chi.NewRouter()
	r.Post("/", c.submit)
	r.Get("/success", success)
	return r
}

func (c *Comp) submit(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContext(r.Context()).With(requestinfo.FromContext(r.Context()).Fields()...)

	r.Body = http.MaxBytesReader(w, r.Body, c.maxBytes)
	if err := r.ParseMultipartForm(c.maxBytes); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var mbe *http.MaxBytesError
		if errors.As(err, &mbe) {
			writeJSON(w, http.StatusRequestEntityTooLarge, map[string]string{"error": "request body too large"})
			return
		}
		log.Warnw("application form unreadable", "err", err)
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "malformed form data"})
		return
	}
	if r.MultipartForm != nil {
		defer func() { _ = r.MultipartForm.RemoveAll() }()
	}

	sub := form.FromRequest(r)
	acc, err := c.engine.Submit(r.Context(), sub)
	if ve, ok := intake.AsValidationError(err); ok {
		log.Infow("application returned for correction", "errors", ve.Errors.Count())
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"form":   ve.Draft,
			"values": sub.Trimmed(),
			"errors": ve.Errors,
		})
		return
	}
	if err != nil {
		log.Errorw("application submit failed", "err", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal error"})
		return
	}

	log.Infow("application received", "submitted_at", acc.SubmittedAt())
	if wantsJSON(r) {
		writeJSON(w, http.StatusCreated, acc)
		return
	}
	http.Redirect(w, r, "/applications/success", http.StatusSeeOther)
}

var successTpl = template.Must(template.New("success").Parse(`<!doctype html>
<html>
<head><meta charset="utf-8"><title>Application received</title></head>
<body>
  <h1>Thank you!</h1>
  <p>Your application has been submitted successfully.  We will contact you soon.</p>
</body>
</html>`))

func success(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := successTpl.Execute(w, nil); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func wantsJSON(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "application/json")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
