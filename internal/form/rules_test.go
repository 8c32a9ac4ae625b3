package form

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := ParseDate(s)
	require.NoError(t, err)
	return d
}

func TestNumericIfPresent(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want bool
	}{
		{"", true},
		{"09171234567", true},
		{"+639171234567", false},
		{"12.5", false},
		{"123 456", false},
		{"-1", false},
		{"abc", false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, NumericIfPresent(tt.in), "input %q", tt.in)
	}
}

func TestEmailShape(t *testing.T) {
	t.Parallel()
	assert.True(t, EmailShape("test@example.com"))
	assert.True(t, EmailShape("first.last@sub.example.co"))
	assert.False(t, EmailShape("test"))
	assert.False(t, EmailShape("test@example"))
	assert.False(t, EmailShape("@example.com"))
	assert.False(t, EmailShape("a@@example.com"))
}

func TestURLShape(t *testing.T) {
	t.Parallel()
	for _, ok := range []string{
		"http://linkedin.com/in/x", "https://x.y", "HTTPS://X.Y", "ftp://files", "ftps://files",
	} {
		assert.True(t, URLShape(ok), ok)
	}
	for _, bad := range []string{"invalid-url", "linkedin.com", "mailto:a@b.c", "httpx://a", ""} {
		assert.False(t, URLShape(bad), bad)
	}
}

func TestParseDate(t *testing.T) {
	t.Parallel()
	d, err := ParseDate("1990-01-31")
	require.NoError(t, err)
	assert.Equal(t, 1990, d.Year())
	assert.Equal(t, time.January, d.Month())
	assert.Equal(t, 31, d.Day())

	for _, bad := range []string{"31/01/1990", "1990-13-01", "1990-02-30", "yesterday", ""} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, ErrDateFormat, bad)
	}
}

func TestAge(t *testing.T) {
	t.Parallel()
	dob := date(t, "2000-01-01")
	assert.Equal(t, 25, Age(dob, date(t, "2025-06-15")))
	assert.Equal(t, 25, Age(dob, date(t, "2025-01-01")))
	assert.Equal(t, 24, Age(dob, date(t, "2024-12-31")))

	summer := date(t, "2000-06-16")
	assert.Equal(t, 24, Age(summer, date(t, "2025-06-15")), "birthday not reached yet")
	assert.Equal(t, 25, Age(summer, date(t, "2025-06-16")), "birthday today")

	leap := date(t, "2000-02-29")
	assert.Equal(t, 17, Age(leap, date(t, "2018-02-28")))
	assert.Equal(t, 18, Age(leap, date(t, "2018-03-01")))
}

func TestExtension(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "pdf", Extension("resume.PDF"))
	assert.Equal(t, "gz", Extension("archive.tar.gz"))
	assert.Equal(t, "", Extension("resume"))
	assert.Equal(t, "", Extension("resume."))

	set := []string{"pdf", "doc", ".DOCX"}
	assert.True(t, AllowedExtension("cv.docx", set))
	assert.True(t, AllowedExtension("CV.Pdf", set))
	assert.False(t, AllowedExtension("resume", set))
	assert.False(t, AllowedExtension("resume.txt", set))
}
