package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/S1riyS/tfs/internal/models"
	"github.com/S1riyS/tfs/internal/repository"
	"github.com/S1riyS/tfs/pkg/logging"
)

// MaxSymlinkHops bounds how many symbolic links Open follows for one call.
const MaxSymlinkHops = 40

// FileSystemService is the API of one filesystem instance. Implementations
// do no locking; callers serialize access (see Registry).
type FileSystemService interface {
	Open(ctx context.Context, name string, mode models.OpenMode) (int64, error)
	Close(ctx context.Context, fd int64) error
	Read(ctx context.Context, fd int64, buf []byte) (int, error)
	Write(ctx context.Context, fd int64, data []byte) (int, error)
	Seek(ctx context.Context, fd int64, offset int64) (int64, error)
	Link(ctx context.Context, target string, linkName string) error
	SymLink(ctx context.Context, target string, linkName string) error
	Unlink(ctx context.Context, target string) error
	Lookup(ctx context.Context, name string) (*models.NodeMeta, error)
	CountLinks(ctx context.Context, name string) (int, error)
	IterateDir(ctx context.Context, offset *uint64) (*models.Dirent, error)
	Stats() models.Stats
	Destroy(ctx context.Context) error
}

type fileSystemService struct {
	fs *repository.Filesystem
}

func NewFileSystemService(fs *repository.Filesystem) FileSystemService {
	return &fileSystemService{fs: fs}
}

// New creates the pools for params and returns a service over them.
func New(params models.Params) (FileSystemService, error) {
	const op = "service.New"

	fs, err := repository.NewFilesystem(params)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return NewFileSystemService(fs), nil
}

func (s *fileSystemService) live() error {
	if s.fs == nil {
		return ErrDestroyed
	}
	return nil
}

func (s *fileSystemService) rootInode() *models.Inode {
	root := s.fs.Inodes.Get(models.RootIno)
	if root == nil {
		panic("service: root dir inode must exist")
	}
	return root
}

// mustInode fetches an inode that a directory entry or session refers to.
// A miss means the pools are corrupt.
func (s *fileSystemService) mustInode(ino int64, op string) *models.Inode {
	inode := s.fs.Inodes.Get(ino)
	if inode == nil {
		panic(fmt.Sprintf("%s: directory entry points at dead inode %d", op, ino))
	}
	return inode
}

func (s *fileSystemService) Lookup(ctx context.Context, name string) (*models.NodeMeta, error) {
	const op = "service.fileSystemService.Lookup"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)
	logger.Debug("Lookup", slog.String("name", name))

	if err := s.live(); err != nil {
		return nil, err
	}
	if !validPathname(name) {
		logger.Debug("Invalid path", slog.String("name", name))
		return nil, ErrInvalidPath
	}

	ino, found := s.lookup(name, s.rootInode())
	if !found {
		logger.Debug("Entry not found", slog.String("name", name))
		return nil, ErrNotFound
	}

	inode := s.mustInode(ino, op)
	meta := &models.NodeMeta{
		Ino:   inode.Ino,
		Type:  inode.Type,
		Size:  inode.Size,
		Links: inode.Links,
	}

	logger.Debug("Lookup successful",
		slog.String("name", name),
		slog.Int64("ino", meta.Ino),
		slog.String("type", meta.Type.String()),
		slog.Int64("size", meta.Size),
	)

	return meta, nil
}

func (s *fileSystemService) CountLinks(ctx context.Context, name string) (int, error) {
	meta, err := s.Lookup(ctx, name)
	if err != nil {
		return 0, err
	}
	return meta.Links, nil
}

// IterateDir returns the root entry at *offset in name order and advances
// *offset. ErrNoMoreEntries marks the end.
func (s *fileSystemService) IterateDir(ctx context.Context, offset *uint64) (*models.Dirent, error) {
	const op = "service.fileSystemService.IterateDir"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)
	logger.Debug("IterateDir", slog.Uint64("offset", *offset))

	if err := s.live(); err != nil {
		return nil, err
	}

	root := s.rootInode()
	name, ino, ok := s.fs.Dirs.EntryAt(root.Ino, *offset)
	if !ok {
		logger.Debug("No more entries", slog.Uint64("offset", *offset))
		return nil, ErrNoMoreEntries
	}

	inode := s.mustInode(ino, op)
	*offset++

	return &models.Dirent{Name: name, Ino: ino, Type: inode.Type}, nil
}

func (s *fileSystemService) Stats() models.Stats {
	if s.fs == nil {
		return models.Stats{}
	}
	return models.Stats{
		Inodes:    s.fs.Inodes.InUse(),
		Blocks:    s.fs.Blocks.InUse(),
		OpenFiles: s.fs.OpenFiles.InUse(),
		Entries:   s.fs.Dirs.Len(models.RootIno),
	}
}

// Destroy releases every pool. Any later call fails with ErrDestroyed.
func (s *fileSystemService) Destroy(ctx context.Context) error {
	const op = "service.fileSystemService.Destroy"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)

	if err := s.live(); err != nil {
		return err
	}

	stats := s.Stats()
	s.fs.Destroy()
	s.fs = nil

	logger.Debug("Filesystem destroyed",
		slog.Int("inodes", stats.Inodes),
		slog.Int("blocks", stats.Blocks),
		slog.Int("open_files", stats.OpenFiles),
	)
	return nil
}
