package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/S1riyS/tfs/internal/models"
	"github.com/S1riyS/tfs/pkg/logging"
)

func newInternal(t *testing.T) *fileSystemService {
	t.Helper()
	svc, err := New(models.DefaultParams())
	require.NoError(t, err)
	return svc.(*fileSystemService)
}

// plantSymlink adds a symlink entry without the existence check SymLink does.
func plantSymlink(t *testing.T, s *fileSystemService, name, target string) {
	t.Helper()
	ino, err := s.fs.Inodes.Allocate(models.NodeTypeSymLink)
	require.NoError(t, err)
	s.fs.Inodes.Get(ino).Target = target
	require.NoError(t, s.fs.Dirs.Add(models.RootIno, name[1:], ino))
}

func TestOpenSelfReferentialSymlink(t *testing.T) {
	ctx := logging.MakeContextWithLogger(context.Background(), logging.Discard())
	s := newInternal(t)

	plantSymlink(t, s, "/loop", "/loop")

	_, err := s.Open(ctx, "/loop", 0)
	assert.ErrorIs(t, err, ErrSymlinkLoop)
	_, err = s.Open(ctx, "/loop", models.OCreate)
	assert.ErrorIs(t, err, ErrSymlinkLoop)
	assert.Zero(t, s.fs.OpenFiles.InUse())
}

func TestLookupPanicsOnDanglingEntry(t *testing.T) {
	ctx := logging.MakeContextWithLogger(context.Background(), logging.Discard())
	s := newInternal(t)

	require.NoError(t, s.fs.Dirs.Add(models.RootIno, "ghost", 7))

	assert.Panics(t, func() {
		_, _ = s.Lookup(ctx, "/ghost")
	})
}

func TestValidPathname(t *testing.T) {
	assert.True(t, validPathname("/a"))
	assert.True(t, validPathname("/a/b"))
	assert.False(t, validPathname("/"))
	assert.False(t, validPathname(""))
	assert.False(t, validPathname("a"))
}
