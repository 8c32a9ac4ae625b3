package vault

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeKV struct {
	data  map[string]map[string]any // mount/rel → data
	reads int
}

func (f *fakeKV) Read(_ context.Context, mount, rel string) (map[string]any, error) {
	f.reads++
	d, ok := f.data[mount+"/"+rel]
	if !ok {
		return nil, errors.New("secret not found")
	}
	return d, nil
}

func TestParseRef(t *testing.T) {
	t.Parallel()

	path, key, err := ParseRef("vault:secret/intake#db_password")
	require.NoError(t, err)
	assert.Equal(t, "secret/intake", path)
	assert.Equal(t, "db_password", key)

	for _, bad := range []string{
		"secret/intake#db",
		"vault:secret/intake",
		"vault:#db",
		"vault:secret#db",
		"vault:secret/intake#",
	} {
		_, _, err := ParseRef(bad)
		assert.Error(t, err, bad)
	}
}

func TestSplitMount(t *testing.T) {
	t.Parallel()
	m, rel := splitMount("kv/apps/intake")
	assert.Equal(t, "kv", m)
	assert.Equal(t, "apps/intake", rel)
}

func TestResolve(t *testing.T) {
	t.Parallel()
	kv := &fakeKV{data: map[string]map[string]any{
		"secret/intake": {"db": "s3cr3t", "port": 3306},
	}}
	c := newClient(kv, zap.NewNop().Sugar())
	now := time.Date(2024, 6, 15, 0, 0, 0, 0, time.UTC)
	c.now = func() time.Time { return now }
	ctx := context.Background()

	v, err := c.Resolve(ctx, "vault:secret/intake#db")
	require.NoError(t, err)
	assert.Equal(t, "s3cr3t", v)

	_, err = c.Resolve(ctx, "vault:secret/intake#db")
	require.NoError(t, err)
	assert.Equal(t, 1, kv.reads, "second lookup served from cache")

	now = now.Add(RefTTL + time.Second)
	_, err = c.Resolve(ctx, "vault:secret/intake#db")
	require.NoError(t, err)
	assert.Equal(t, 2, kv.reads, "expired entry re-read")

	_, err = c.Resolve(ctx, "vault:secret/intake#missing")
	assert.Error(t, err)
	_, err = c.Resolve(ctx, "vault:secret/intake#port")
	assert.Error(t, err)
	_, err = c.Resolve(ctx, "vault:secret/other#db")
	assert.Error(t, err)
	_, err = c.Resolve(ctx, "plain")
	assert.Error(t, err)
}
