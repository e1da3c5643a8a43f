package credstore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/Abdurahmanit/GroupProject/board-client/internal/platform/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFileStore_Lifecycle(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "profile", "credential.json")
	s := NewFileStore(path, logger.NewNop())

	tok, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok, "missing file means logged out")

	require.NoError(t, s.Save(ctx, "abc"))
	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), fi.Mode().Perm())

	// a fresh store over the same path sees the token: survives restart
	tok, err = NewFileStore(path, logger.NewNop()).Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "abc", tok)

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx), "clearing twice is fine")
	tok, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestFileStore_CorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "credential.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	tok, err := NewFileStore(path, logger.NewNop()).Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, tok)
}

func TestMemoryStore(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore("seed")
	tok, _ := s.Load(ctx)
	assert.Equal(t, "seed", tok)
	require.NoError(t, s.Save(ctx, "next"))
	tok, _ = s.Load(ctx)
	assert.Equal(t, "next", tok)
	require.NoError(t, s.Clear(ctx))
	tok, _ = s.Load(ctx)
	assert.Empty(t, tok)
}
