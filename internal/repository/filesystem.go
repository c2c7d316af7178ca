package repository

import (
	"errors"
	"fmt"

	"github.com/S1riyS/tfs/internal/models"
)

var ErrInvalidParams = errors.New("invalid filesystem params")

// Filesystem bundles the fixed pools of one instance.
type Filesystem struct {
	Params    models.Params
	Inodes    InodeRepository
	Blocks    ContentRepository
	Dirs      DirectoryRepository
	OpenFiles OpenFileRepository
}

// NewFilesystem allocates every pool and creates the root directory, which
// always lands on models.RootIno.
func NewFilesystem(params models.Params) (*Filesystem, error) {
	const op = "repository.NewFilesystem"

	if params.MaxInodes < 1 || params.MaxBlocks < 0 || params.MaxOpenFiles < 0 || params.BlockSize < 1 {
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidParams)
	}
	if params.MaxDirEntries <= 0 {
		params.MaxDirEntries = params.BlockSize / models.DirentSize
	}

	blocks := NewContentRepository(params.MaxBlocks, params.BlockSize)
	fs := &Filesystem{
		Params:    params,
		Inodes:    NewInodeRepository(params.MaxInodes, blocks),
		Blocks:    blocks,
		Dirs:      NewDirectoryRepository(params.MaxDirEntries),
		OpenFiles: NewOpenFileRepository(params.MaxOpenFiles),
	}

	root, err := fs.Inodes.Allocate(models.NodeTypeDir)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if root != models.RootIno {
		return nil, fmt.Errorf("%s: root landed on inode %d", op, root)
	}
	fs.Dirs.Register(root)

	return fs, nil
}

// Destroy drops every pool. The Filesystem must not be used afterwards.
func (fs *Filesystem) Destroy() {
	fs.Dirs.Drop(models.RootIno)
	fs.Inodes = nil
	fs.Blocks = nil
	fs.Dirs = nil
	fs.OpenFiles = nil
}
