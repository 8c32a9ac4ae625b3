// Package upload persists applicant resumes and photos.  Both backends store
// a file under <kind>/<stored name> and return the stored name, which is
// what the application record keeps.
package upload

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var unsafeChars = regexp.MustCompile(`[^A-Za-z0-9._-]+`)

// SecureFilename reduces name to its base and replaces anything outside
// [A-Za-z0-9._-] with “_”.  Returns "unnamed" when nothing usable is left.
//
//	SecureFilename("../../etc/passwd")   // "passwd"
//	SecureFilename(`C:\cv\My CV (1).pdf`) // "My_CV_1_.pdf"
func SecureFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.ReplaceAll(name, "\x00", "")
	name = unsafeChars.ReplaceAllString(name, "_")
	name = strings.TrimLeft(name, ".")

	if name == "" || name == "_" {
		return "unnamed"
	}
	return name
}

// StoredName prefixes the sanitized original with a random UUID so two
// applicants uploading “cv.pdf” never collide.
func StoredName(original string) string {
	return uuid.NewString() + "_" + SecureFilename(original)
}

func validKind(kind string) bool {
	return kind != "" && SecureFilename(kind) == kind && !strings.Contains(kind, ".")
}
