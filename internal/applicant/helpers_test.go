package applicant

import (
	"context"
	"mime/multipart"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yanizio/intake/internal/form"
	"github.com/yanizio/intake/internal/intake"
)

type nameFiles struct{}

func (nameFiles) Put(_ context.Context, kind string, fh *multipart.FileHeader) (string, error) {
	return kind + "-" + fh.Filename, nil
}

// accepted runs a clean submission through a throwaway engine so tests get a
// real *intake.Accepted.
func accepted(t *testing.T, email, mobile string) *intake.Accepted {
	t.Helper()
	e, err := intake.New(NewMemory(), nameFiles{},
		intake.WithLogger(zap.NewNop().Sugar()),
		intake.WithClock(func() time.Time { return time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC) }),
	)
	require.NoError(t, err)

	s := form.NewSubmission()
	s.Set("fullName", "Jose Rizal")
	s.Set("dob", "1990-06-19")
	s.Set("mobile", mobile)
	s.Set("email", email)
	s.Set("country", "Japan")
	s.Set("language[0][name]", "Tagalog")
	s.Set("language[0][fluency]", "Native")
	s.Set("join_availability", "2 weeks")
	s.SetFile("resume", &multipart.FileHeader{Filename: "cv.docx"})
	s.SetFile("photo", &multipart.FileHeader{Filename: "p.png"})

	acc, err := e.Submit(context.Background(), s)
	require.NoError(t, err)
	return acc
}
