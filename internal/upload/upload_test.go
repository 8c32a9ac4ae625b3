package upload

import (
	"bytes"
	"context"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createFileHeader(t *testing.T, filename string, content []byte) *multipart.FileHeader {
	t.Helper()
	body := new(bytes.Buffer)
	w := multipart.NewWriter(body)
	part, err := w.CreateFormFile("file", filename)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := &http.Request{
		Method: http.MethodPost,
		Header: http.Header{"Content-Type": []string{w.FormDataContentType()}},
		Body:   io.NopCloser(body),
	}
	require.NoError(t, req.ParseMultipartForm(32<<20))
	return req.MultipartForm.File["file"][0]
}

func TestSecureFilename(t *testing.T) {
	t.Parallel()
	cases := map[string]string{
		"cv.pdf":               "cv.pdf",
		"../../etc/passwd":     "passwd",
		`C:\cv\My CV (1).pdf`:  "My_CV_1_.pdf",
		"..":                   "unnamed",
		"":                     "unnamed",
		".hidden.png":          "hidden.png",
		"r\x00esume.doc":       "resume.doc",
	}
	for in, want := range cases {
		assert.Equal(t, want, SecureFilename(in), "input %q", in)
	}
}

func TestStoredName(t *testing.T) {
	t.Parallel()
	a, b := StoredName("cv.pdf"), StoredName("cv.pdf")
	assert.NotEqual(t, a, b)
	assert.True(t, strings.HasSuffix(a, "_cv.pdf"))
	assert.Len(t, a, 36+len("_cv.pdf"))
}

func TestLocal_Put(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()
	s, err := NewLocal(dir)
	require.NoError(t, err)

	content := []byte("%PDF-1.4")
	name, err := s.Put(context.Background(), "resume", createFileHeader(t, "../cv.pdf", content))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(name, "_cv.pdf"))

	data, err := os.ReadFile(filepath.Join(dir, "resume", name))
	require.NoError(t, err)
	assert.Equal(t, content, data)

	info, err := os.Stat(filepath.Join(dir, "resume", name))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm())
}

func TestLocal_PutRejects(t *testing.T) {
	t.Parallel()
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Put(ctx, "resume", nil)
	assert.ErrorIs(t, err, ErrNilFileHeader)

	_, err = s.Put(ctx, "../etc", createFileHeader(t, "x.pdf", []byte("x")))
	assert.ErrorIs(t, err, ErrInvalidKind)

	cctx, cancel := context.WithCancel(ctx)
	cancel()
	_, err = s.Put(cctx, "photo", createFileHeader(t, "x.png", []byte("x")))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocal_ResolvePath(t *testing.T) {
	t.Parallel()
	s, err := NewLocal(t.TempDir())
	require.NoError(t, err)

	_, err = s.resolvePath("../outside.txt")
	assert.ErrorIs(t, err, ErrInvalidPath)
	p, err := s.resolvePath("photo/a.png")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(s.Dir(), "photo", "a.png"), p)
}

/* S3 */

type fakeS3 struct {
	got  *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.got = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, nil
}

func TestNewS3_RequiresBucketAndRegion(t *testing.T) {
	t.Parallel()
	_, err := NewS3(context.Background(), S3Config{Bucket: "b"})
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestS3_Put(t *testing.T) {
	t.Parallel()
	fake := &fakeS3{}
	s, err := NewS3(context.Background(),
		S3Config{Bucket: "applicants", Region: "ap-southeast-1", Prefix: "/intake/"},
		WithS3Client(fake))
	require.NoError(t, err)

	name, err := s.Put(context.Background(), "photo", createFileHeader(t, "me.png", []byte("PNG")))
	require.NoError(t, err)

	require.NotNil(t, fake.got)
	assert.Equal(t, "applicants", *fake.got.Bucket)
	assert.Equal(t, "intake/photo/"+name, *fake.got.Key)
	assert.Equal(t, []byte("PNG"), fake.body)
	assert.NotEmpty(t, *fake.got.ContentType)
}

func TestS3_PutClassifiesErrors(t *testing.T) {
	t.Parallel()
	cases := []struct {
		err  error
		want error
	}{
		{&smithy.GenericAPIError{Code: "AccessDenied"}, ErrAccessDenied},
		{&smithy.GenericAPIError{Code: "SlowDown"}, ErrServiceUnavailable},
		{&smithy.GenericAPIError{Code: "NoSuchBucket"}, ErrBucketNotFound},
		{context.DeadlineExceeded, ErrOperationTimeout},
	}
	for _, tc := range cases {
		s, err := NewS3(context.Background(), S3Config{Bucket: "b", Region: "r"}, WithS3Client(&fakeS3{err: tc.err}))
		require.NoError(t, err)
		_, err = s.Put(context.Background(), "resume", createFileHeader(t, "cv.pdf", []byte("x")))
		assert.ErrorIs(t, err, tc.want)
	}

	plain := errors.New("reset by peer")
	assert.ErrorIs(t, classifyS3Error(plain, "upload"), plain)
}
