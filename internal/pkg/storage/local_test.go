package storage

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorage_SaveOpenDelete(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	key := ArchiveKey("Report.CSV", time.Date(2026, 2, 19, 10, 0, 0, 0, time.UTC))
	assert.True(t, strings.HasPrefix(key, "imports/2026/02/"))
	assert.True(t, strings.HasSuffix(key, ".csv"))

	stored, err := s.Save(ctx, key, strings.NewReader("Project,User\n"))
	require.NoError(t, err)
	assert.Equal(t, key, stored)

	rc, err := s.Open(ctx, key)
	require.NoError(t, err)
	content, err := io.ReadAll(rc)
	require.NoError(t, rc.Close())
	require.NoError(t, err)
	assert.Equal(t, "Project,User\n", string(content))

	require.NoError(t, s.Delete(ctx, key))
	require.NoError(t, s.Delete(ctx, key))

	_, err = s.Open(ctx, key)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLocalStorage_RejectsTraversal(t *testing.T) {
	ctx := context.Background()
	s, err := NewLocalStorage(t.TempDir())
	require.NoError(t, err)

	for _, key := range []string{"../escape.csv", "imports/../../escape.csv", ".", ""} {
		_, err := s.Save(ctx, key, strings.NewReader("x"))
		assert.Error(t, err, key)
	}
}

func TestArchiveKey_Unique(t *testing.T) {
	now := time.Now()
	assert.NotEqual(t, ArchiveKey("a.csv", now), ArchiveKey("a.csv", now))
	assert.True(t, strings.HasSuffix(ArchiveKey("noext", now), ".csv"))
}
