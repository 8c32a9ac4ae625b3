package applicant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yanizio/intake/internal/intake"
)

func TestMemory(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	m := NewMemory()

	require.NoError(t, m.Append(ctx, accepted(t, "a@x.io", "111")))
	require.NoError(t, m.Append(ctx, accepted(t, "b@x.io", "222")))

	ok, err := m.ContainsEmail(ctx, "a@x.io")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = m.ContainsEmail(ctx, "A@x.io")
	assert.False(t, ok, "email match is exact")
	ok, _ = m.ContainsMobile(ctx, "222")
	assert.True(t, ok)

	err = m.Append(ctx, accepted(t, "c@x.io", "111"))
	assert.ErrorIs(t, err, intake.ErrDuplicate)

	all := m.All()
	require.Len(t, all, 2)
	assert.Equal(t, "a@x.io", all[0].Email())
	assert.Equal(t, "b@x.io", all[1].Email())

	m.Clear()
	assert.Zero(t, m.Len())
}
