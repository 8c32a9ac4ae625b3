// internal/form/submission.go
//
// Intake – Forms subsystem: flat submission access.
//
// Context
//   Browsers post the application as one flat multipart body.  Scalar inputs
//   arrive as plain keys (“fullName”, “dob”), repeatable rows arrive as
//   bracketed keys (“education[0][school_name]”), and uploads arrive as file
//   parts.  Submission wraps both halves so section validators never touch
//   *http.Request directly.
//
// Workflow
//   •  FromRequest builds a Submission from an already-parsed request.
//   •  Get returns a trimmed scalar, “” when absent.  It never fails; callers
//      decide whether absence is an error.
//   •  Has reports key presence, which the group parser uses as a probe.
//
//------------------------------------------------------------------------------

package form

import (
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
)

// Submission is one posted form: string values plus uploaded file parts.
type Submission struct {
	Values url.Values
	Files  map[string]*multipart.FileHeader
}

// NewSubmission returns an empty Submission ready for Set / SetFile.
func NewSubmission() *Submission {
	return &Submission{
		Values: url.Values{},
		Files:  make(map[string]*multipart.FileHeader),
	}
}

// FromRequest collects values and files from r.  The caller must have run
// ParseMultipartForm or ParseForm first.  Multipart values win over the
// urlencoded PostForm when both are present.
func FromRequest(r *http.Request) *Submission {
	sub := NewSubmission()
	for k, v := range r.PostForm {
		sub.Values[k] = v
	}
	if r.MultipartForm != nil {
		for k, v := range r.MultipartForm.Value {
			sub.Values[k] = v
		}
		for k, fhs := range r.MultipartForm.File {
			if len(fhs) > 0 {
				sub.Files[k] = fhs[0]
			}
		}
	}
	return sub
}

// Set stores a single value under key, replacing earlier ones.
func (s *Submission) Set(key, value string) { s.Values.Set(key, value) }

// SetFile attaches an uploaded file part under key.
func (s *Submission) SetFile(key string, fh *multipart.FileHeader) { s.Files[key] = fh }

// Get returns the first value for key with surrounding whitespace removed.
func (s *Submission) Get(key string) string {
	if s == nil || s.Values == nil {
		return ""
	}
	return strings.TrimSpace(s.Values.Get(key))
}

// Has reports whether key was submitted at all, even with an empty value.
func (s *Submission) Has(key string) bool {
	if s == nil || s.Values == nil {
		return false
	}
	_, ok := s.Values[key]
	return ok
}

// File returns the uploaded part for key, or nil.
func (s *Submission) File(key string) *multipart.FileHeader {
	if s == nil || s.Files == nil {
		return nil
	}
	return s.Files[key]
}

// Trimmed returns every scalar value trimmed, keyed by field name.  Used to
// echo the submission back on rejection.
func (s *Submission) Trimmed() map[string]string {
	if s == nil || s.Values == nil {
		return map[string]string{}
	}
	out := make(map[string]string, len(s.Values))
	for k := range s.Values {
		out[k] = s.Get(k)
	}
	return out
}
