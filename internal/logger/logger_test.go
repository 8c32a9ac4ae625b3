package logger

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNew_WritesDailyFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")
	l, err := New(Options{Dir: dir, Level: "debug"})
	require.NoError(t, err)
	l.Debugw("rotated", "k", "v")
	_ = l.Sync()

	data, err := os.ReadFile(filepath.Join(dir, time.Now().Format("2006-01-02")+".log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"msg":"rotated"`)
}

func TestNew_BadLevel(t *testing.T) {
	_, err := New(Options{Dir: t.TempDir(), Level: "loud"})
	assert.Error(t, err)
}

func TestFromContext(t *testing.T) {
	l := zap.NewNop().Sugar()
	ctx := WithContext(context.Background(), l)
	assert.Same(t, l, FromContext(ctx))
	assert.NotNil(t, FromContext(context.Background()))
}
