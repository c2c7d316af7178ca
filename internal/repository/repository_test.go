package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/S1riyS/tfs/internal/models"
)

func TestSlotAllocatorReturnsLowestFree(t *testing.T) {
	a := newSlotAllocator(3)

	for want := 0; want < 3; want++ {
		got, ok := a.allocate()
		require.True(t, ok)
		assert.Equal(t, want, got)
	}

	_, ok := a.allocate()
	assert.False(t, ok)
	assert.Equal(t, 3, a.inUse())

	a.release(2)
	a.release(0)
	got, ok := a.allocate()
	require.True(t, ok)
	assert.Equal(t, 0, got)

	// out of range releases are ignored
	a.release(-1)
	a.release(7)
	assert.Equal(t, 2, a.inUse())
}

func TestContentRepository(t *testing.T) {
	r := NewContentRepository(2, 8)
	assert.Equal(t, 8, r.BlockSize())

	id, err := r.Allocate()
	require.NoError(t, err)
	block := r.Get(id)
	require.Len(t, block, 8)
	copy(block, "abcdefgh")

	_, err = r.Allocate()
	require.NoError(t, err)
	_, err = r.Allocate()
	assert.ErrorIs(t, err, ErrNoBlocks)

	r.Free(id)
	assert.Nil(t, r.Get(id))

	// a recycled block comes back zeroed
	again, err := r.Allocate()
	require.NoError(t, err)
	assert.Equal(t, id, again)
	assert.Equal(t, make([]byte, 8), r.Get(again))
}

func TestContentRepositoryBlocksDoNotOverlap(t *testing.T) {
	r := NewContentRepository(2, 4)

	a, _ := r.Allocate()
	b, _ := r.Allocate()
	copy(r.Get(a), "aaaaaa")
	copy(r.Get(b), "bbbb")

	assert.Equal(t, []byte("aaaa"), r.Get(a))
	assert.Equal(t, []byte("bbbb"), r.Get(b))
}

func TestInodeRepositoryDeleteFreesBlock(t *testing.T) {
	blocks := NewContentRepository(1, 16)
	inodes := NewInodeRepository(2, blocks)

	ino, err := inodes.Allocate(models.NodeTypeFile)
	require.NoError(t, err)
	inode := inodes.Get(ino)
	require.NotNil(t, inode)
	assert.Equal(t, 1, inode.Links)
	assert.Equal(t, models.NoBlock, inode.Block)

	inode.Block, err = blocks.Allocate()
	require.NoError(t, err)
	inode.Size = 4

	inodes.Delete(ino)
	assert.Nil(t, inodes.Get(ino))
	assert.Equal(t, 0, blocks.InUse())
	assert.Equal(t, 0, inodes.InUse())
}

func TestInodeRepositoryGenerationChangesOnReuse(t *testing.T) {
	inodes := NewInodeRepository(1, NewContentRepository(0, 16))

	ino, err := inodes.Allocate(models.NodeTypeFile)
	require.NoError(t, err)
	first := inodes.Get(ino).Gen

	_, err = inodes.Allocate(models.NodeTypeFile)
	assert.ErrorIs(t, err, ErrNoInodes)

	inodes.Delete(ino)
	again, err := inodes.Allocate(models.NodeTypeSymLink)
	require.NoError(t, err)
	assert.Equal(t, ino, again)
	assert.NotEqual(t, first, inodes.Get(again).Gen)
	assert.Equal(t, models.NodeTypeSymLink, inodes.Get(again).Type)
}

func TestDirectoryRepository(t *testing.T) {
	dirs := NewDirectoryRepository(2)

	assert.ErrorIs(t, dirs.Add(5, "a", 1), ErrNotADirectory)

	dirs.Register(0)
	require.NoError(t, dirs.Add(0, "b", 2))
	assert.ErrorIs(t, dirs.Add(0, "b", 3), ErrEntryExists)
	require.NoError(t, dirs.Add(0, "a", 1))
	assert.ErrorIs(t, dirs.Add(0, "c", 4), ErrDirFull)

	ino, ok := dirs.Find(0, "a")
	assert.True(t, ok)
	assert.EqualValues(t, 1, ino)

	name, ino, ok := dirs.EntryAt(0, 0)
	assert.True(t, ok)
	assert.Equal(t, "a", name)
	assert.EqualValues(t, 1, ino)

	name, _, ok = dirs.EntryAt(0, 1)
	assert.True(t, ok)
	assert.Equal(t, "b", name)

	_, _, ok = dirs.EntryAt(0, 2)
	assert.False(t, ok)

	dirs.Clear(0, "a")
	dirs.Clear(0, "missing")
	_, ok = dirs.Find(0, "a")
	assert.False(t, ok)
	assert.Equal(t, 1, dirs.Len(0))
}

func TestDirectoryRepositoryNameLength(t *testing.T) {
	dirs := NewDirectoryRepository(4)
	dirs.Register(0)

	long := make([]byte, models.MaxNameLen+1)
	for i := range long {
		long[i] = 'x'
	}

	assert.ErrorIs(t, dirs.Add(0, string(long), 1), ErrNameTooLong)
	assert.NoError(t, dirs.Add(0, string(long[:models.MaxNameLen]), 1))
}

func TestOpenFileRepository(t *testing.T) {
	files := NewOpenFileRepository(1)

	fd, err := files.Allocate(3, 7, 10)
	require.NoError(t, err)
	f := files.Get(fd)
	require.NotNil(t, f)
	assert.EqualValues(t, 3, f.Ino)
	assert.EqualValues(t, 7, f.Gen)
	assert.EqualValues(t, 10, f.Offset)

	_, err = files.Allocate(4, 1, 0)
	assert.ErrorIs(t, err, ErrNoSessions)

	files.Release(fd)
	assert.Nil(t, files.Get(fd))
	assert.Nil(t, files.Get(-1))
	assert.Nil(t, files.Get(100))
	assert.Equal(t, 0, files.InUse())
}

func TestNewFilesystem(t *testing.T) {
	fs, err := NewFilesystem(models.DefaultParams())
	require.NoError(t, err)

	root := fs.Inodes.Get(models.RootIno)
	require.NotNil(t, root)
	assert.Equal(t, models.NodeTypeDir, root.Type)
	assert.Equal(t, 1, fs.Inodes.InUse())
	assert.Equal(t, 1024, fs.Blocks.BlockSize())

	fs.Destroy()
	assert.Nil(t, fs.Inodes)
}

func TestNewFilesystemDerivesDirEntries(t *testing.T) {
	params := models.DefaultParams()
	params.MaxDirEntries = 0
	params.BlockSize = 2 * models.DirentSize

	fs, err := NewFilesystem(params)
	require.NoError(t, err)
	assert.Equal(t, 2, fs.Params.MaxDirEntries)
}

func TestNewFilesystemRejectsBadParams(t *testing.T) {
	params := models.DefaultParams()
	params.MaxInodes = 0

	_, err := NewFilesystem(params)
	assert.ErrorIs(t, err, ErrInvalidParams)
}
