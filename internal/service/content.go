package service

import (
	"context"
	"log/slog"

	"github.com/S1riyS/tfs/internal/models"
	"github.com/S1riyS/tfs/pkg/logging"
)

// Write copies data at the session cursor. A file never grows past one
// block, so only min(len(data), blockSize-cursor) bytes are written and the
// rest is dropped.
func (s *fileSystemService) Write(ctx context.Context, fd int64, data []byte) (int, error) {
	const op = "service.fileSystemService.Write"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)
	logger.Debug("Write", slog.Int64("fd", fd), slog.Int("len", len(data)))

	if err := s.live(); err != nil {
		return -1, err
	}

	file, inode, err := s.session(fd)
	if err != nil {
		logger.Debug("Invalid session", slog.Int64("fd", fd), slog.String("reason", err.Error()))
		return -1, err
	}

	blockSize := int64(s.fs.Blocks.BlockSize())
	toWrite := int64(len(data))
	if file.Offset+toWrite > blockSize {
		toWrite = blockSize - file.Offset
	}
	if toWrite <= 0 {
		logger.Debug("Block is full", slog.Int64("ino", inode.Ino), slog.Int64("offset", file.Offset))
		return 0, nil
	}

	if inode.Size == 0 {
		bnum, err := s.fs.Blocks.Allocate()
		if err != nil {
			logger.Debug("No free data blocks", slog.Int64("ino", inode.Ino))
			return -1, fromRepository(err)
		}
		inode.Block = bnum
	}

	block := s.fs.Blocks.Get(inode.Block)
	if block == nil {
		panic("service.Write: data block deleted mid-write")
	}

	copy(block[file.Offset:], data[:toWrite])

	file.Offset += toWrite
	if file.Offset > inode.Size {
		inode.Size = file.Offset
	}

	logger.Debug("Write successful",
		slog.Int64("ino", inode.Ino),
		slog.Int64("bytes_written", toWrite),
		slog.Int("dropped", len(data)-int(toWrite)),
		slog.Int64("size", inode.Size),
	)
	return int(toWrite), nil
}

func (s *fileSystemService) Read(ctx context.Context, fd int64, buf []byte) (int, error) {
	const op = "service.fileSystemService.Read"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)
	logger.Debug("Read", slog.Int64("fd", fd), slog.Int("buffer_len", len(buf)))

	if err := s.live(); err != nil {
		return -1, err
	}

	file, inode, err := s.session(fd)
	if err != nil {
		logger.Debug("Invalid session", slog.Int64("fd", fd), slog.String("reason", err.Error()))
		return -1, err
	}

	toRead := inode.Size - file.Offset
	if toRead > int64(len(buf)) {
		toRead = int64(len(buf))
	}
	if toRead <= 0 {
		return 0, nil // EOF
	}

	block := s.readBlock(inode)
	copy(buf, block[file.Offset:file.Offset+toRead])
	file.Offset += toRead

	logger.Debug("Read successful", slog.Int64("ino", inode.Ino), slog.Int64("bytes_read", toRead))
	return int(toRead), nil
}

func (s *fileSystemService) readBlock(inode *models.Inode) []byte {
	block := s.fs.Blocks.Get(inode.Block)
	if block == nil {
		panic("service.Read: data block deleted mid-read")
	}
	return block
}
