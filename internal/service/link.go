package service

import (
	"context"
	"log/slog"

	"github.com/S1riyS/tfs/internal/models"
	"github.com/S1riyS/tfs/pkg/logging"
)

// SymLink creates linkName pointing at the literal path target. The target
// must exist now but is only resolved again when the link is opened.
func (s *fileSystemService) SymLink(ctx context.Context, target string, linkName string) error {
	const op = "service.fileSystemService.SymLink"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)
	logger.Debug("SymLink", slog.String("target", target), slog.String("link_name", linkName))

	if err := s.live(); err != nil {
		return err
	}
	if !validPathname(target) || !validPathname(linkName) {
		logger.Debug("Invalid path", slog.String("target", target), slog.String("link_name", linkName))
		return ErrInvalidPath
	}

	root := s.rootInode()
	if _, found := s.lookup(target, root); !found {
		logger.Debug("Target not found", slog.String("target", target))
		return ErrNotFound
	}

	ino, err := s.fs.Inodes.Allocate(models.NodeTypeSymLink)
	if err != nil {
		logger.Debug("Inode table is full")
		return fromRepository(err)
	}
	s.mustInode(ino, op).Target = target

	if err := s.fs.Dirs.Add(root.Ino, linkName[1:], ino); err != nil {
		s.fs.Inodes.Delete(ino)
		logger.Debug("Failed to add directory entry, inode released",
			slog.String("link_name", linkName),
			slog.String("reason", err.Error()),
		)
		return fromRepository(err)
	}

	logger.Debug("Symlink created", slog.String("link_name", linkName), slog.Int64("ino", ino))
	return nil
}

func (s *fileSystemService) Link(ctx context.Context, target string, linkName string) error {
	const op = "service.fileSystemService.Link"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)
	logger.Debug("Link", slog.String("target", target), slog.String("link_name", linkName))

	if err := s.live(); err != nil {
		return err
	}
	if !validPathname(target) || !validPathname(linkName) {
		logger.Debug("Invalid path", slog.String("target", target), slog.String("link_name", linkName))
		return ErrInvalidPath
	}

	root := s.rootInode()
	targetIno, found := s.lookup(target, root)
	if !found {
		logger.Debug("Target not found", slog.String("target", target))
		return ErrNotFound
	}

	itarget := s.mustInode(targetIno, op)
	if itarget.Type == models.NodeTypeSymLink {
		logger.Debug("Cannot link symlink", slog.Int64("target_ino", targetIno))
		return ErrLinkToSymlink
	}

	if err := s.fs.Dirs.Add(root.Ino, linkName[1:], targetIno); err != nil {
		logger.Debug("Failed to add directory entry", slog.String("link_name", linkName), slog.String("reason", err.Error()))
		return fromRepository(err)
	}

	itarget.Links++

	logger.Debug("Hard link created",
		slog.String("link_name", linkName),
		slog.Int64("target_ino", targetIno),
		slog.Int("links", itarget.Links),
	)
	return nil
}

// Unlink removes the directory entry and drops one link. The inode and its
// block are reclaimed when no links remain; open sessions on it go stale.
func (s *fileSystemService) Unlink(ctx context.Context, target string) error {
	const op = "service.fileSystemService.Unlink"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)
	logger.Debug("Unlink", slog.String("target", target))

	if err := s.live(); err != nil {
		return err
	}
	if !validPathname(target) {
		logger.Debug("Invalid path", slog.String("target", target))
		return ErrInvalidPath
	}

	root := s.rootInode()
	ino, found := s.lookup(target, root)
	if !found {
		logger.Debug("File not found", slog.String("target", target))
		return ErrNotFound
	}

	inode := s.mustInode(ino, op)
	if inode.Links-1 <= 0 {
		s.fs.Inodes.Delete(ino)
		logger.Debug("Link count reached zero, inode deleted", slog.Int64("ino", ino))
	} else {
		inode.Links--
		logger.Debug("Inode still has links, keeping it", slog.Int64("ino", ino), slog.Int("links", inode.Links))
	}

	s.fs.Dirs.Clear(root.Ino, target[1:])
	return nil
}
