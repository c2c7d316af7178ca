package service

import (
	"context"
	"log/slog"

	"github.com/S1riyS/tfs/internal/models"
	"github.com/S1riyS/tfs/pkg/logging"
)

func (s *fileSystemService) Open(ctx context.Context, name string, mode models.OpenMode) (int64, error) {
	const op = "service.fileSystemService.Open"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)
	logger.Debug("Open", slog.String("name", name), slog.Uint64("mode", uint64(mode)))

	if err := s.live(); err != nil {
		return -1, err
	}
	if !validPathname(name) {
		logger.Debug("Invalid path", slog.String("name", name))
		return -1, ErrInvalidPath
	}

	root := s.rootInode()

	ino, offset, err := s.resolveForOpen(logger, name, mode, root)
	if err != nil {
		return -1, err
	}

	inode := s.mustInode(ino, op)
	fd, err := s.fs.OpenFiles.Allocate(ino, inode.Gen, offset)
	if err != nil {
		// A file created above stays created.
		logger.Debug("Open file table is full", slog.String("name", name), slog.Int64("ino", ino))
		return -1, fromRepository(err)
	}

	logger.Debug("File opened",
		slog.String("name", name),
		slog.Int64("ino", ino),
		slog.Int64("fd", fd),
		slog.Int64("offset", offset),
	)
	return fd, nil
}

// resolveForOpen follows symbolic links starting at name, then applies
// truncate/append to an existing file or creates a new one. It returns the
// inumber to open and the initial cursor.
func (s *fileSystemService) resolveForOpen(logger *slog.Logger, name string, mode models.OpenMode, root *models.Inode) (int64, int64, error) {
	const op = "service.fileSystemService.resolveForOpen"

	path := name
	visited := make(map[string]struct{})

	for hops := 0; ; hops++ {
		ino, found := s.lookup(path, root)
		if !found {
			break
		}

		inode := s.mustInode(ino, op)
		if inode.Type == models.NodeTypeSymLink {
			if inode.Target == path {
				logger.Debug("Symlink points at itself", slog.String("path", path))
				return -1, 0, ErrSymlinkLoop
			}

			visited[path] = struct{}{}
			if _, seen := visited[inode.Target]; seen || hops >= MaxSymlinkHops {
				logger.Debug("Symlink cycle detected",
					slog.String("path", path),
					slog.String("target", inode.Target),
					slog.Int("hops", hops),
				)
				return -1, 0, ErrSymlinkLoop
			}

			logger.Debug("Following symlink", slog.String("path", path), slog.String("target", inode.Target))
			path = inode.Target
			continue
		}

		if mode.Has(models.OTrunc) {
			s.truncate(inode)
		}

		var offset int64
		if mode.Has(models.OAppend) {
			offset = inode.Size
		}
		return ino, offset, nil
	}

	if !mode.Has(models.OCreate) {
		logger.Debug("File not found", slog.String("path", path))
		return -1, 0, ErrNotFound
	}

	ino, err := s.fs.Inodes.Allocate(models.NodeTypeFile)
	if err != nil {
		logger.Debug("Inode table is full", slog.String("path", path))
		return -1, 0, fromRepository(err)
	}

	if err := s.fs.Dirs.Add(root.Ino, path[1:], ino); err != nil {
		s.fs.Inodes.Delete(ino)
		logger.Debug("Failed to add directory entry, inode released",
			slog.String("path", path),
			slog.Int64("ino", ino),
			slog.String("reason", err.Error()),
		)
		return -1, 0, fromRepository(err)
	}

	logger.Debug("File created", slog.String("path", path), slog.Int64("ino", ino))
	return ino, 0, nil
}

func (s *fileSystemService) truncate(inode *models.Inode) {
	if inode.Size > 0 {
		s.fs.Blocks.Free(inode.Block)
		inode.Block = models.NoBlock
		inode.Size = 0
	}
}

func (s *fileSystemService) Close(ctx context.Context, fd int64) error {
	const op = "service.fileSystemService.Close"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)
	logger.Debug("Close", slog.Int64("fd", fd))

	if err := s.live(); err != nil {
		return err
	}

	if s.fs.OpenFiles.Get(fd) == nil {
		logger.Debug("Invalid file handle", slog.Int64("fd", fd))
		return ErrBadHandle
	}

	s.fs.OpenFiles.Release(fd)
	return nil
}

// session returns the open file behind fd and its inode. Sessions whose
// inode was unlinked, or whose slot now holds a different inode, are stale.
func (s *fileSystemService) session(fd int64) (*models.OpenFile, *models.Inode, error) {
	file := s.fs.OpenFiles.Get(fd)
	if file == nil {
		return nil, nil, ErrBadHandle
	}

	inode := s.fs.Inodes.Get(file.Ino)
	if inode == nil || inode.Gen != file.Gen {
		return nil, nil, ErrStaleHandle
	}

	return file, inode, nil
}

func (s *fileSystemService) Seek(ctx context.Context, fd int64, offset int64) (int64, error) {
	const op = "service.fileSystemService.Seek"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)
	logger.Debug("Seek", slog.Int64("fd", fd), slog.Int64("offset", offset))

	if err := s.live(); err != nil {
		return -1, err
	}

	file, inode, err := s.session(fd)
	if err != nil {
		logger.Debug("Invalid session", slog.Int64("fd", fd), slog.String("reason", err.Error()))
		return -1, err
	}

	if offset < 0 || offset > inode.Size {
		logger.Debug("Offset out of range", slog.Int64("offset", offset), slog.Int64("size", inode.Size))
		return -1, ErrInvalidOffset
	}

	file.Offset = offset
	return offset, nil
}
