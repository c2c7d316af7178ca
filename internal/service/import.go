package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/hashicorp/go-multierror"

	"github.com/S1riyS/tfs/internal/models"
	"github.com/S1riyS/tfs/internal/repository"
	"github.com/S1riyS/tfs/pkg/database/postgresql"
	"github.com/S1riyS/tfs/pkg/logging"
	"github.com/S1riyS/tfs/pkg/logging/slogext"
)

const DefaultImportChunkSize = 128

// Importer copies external bytes into a filesystem using only the public
// Open/Write/Close calls, chunkSize bytes at a time.
type Importer struct {
	chunkSize int
}

func NewImporter(chunkSize int) *Importer {
	if chunkSize <= 0 {
		chunkSize = DefaultImportChunkSize
	}
	return &Importer{chunkSize: chunkSize}
}

// Import opens dest with OCreate|OTrunc and writes src into it. Since a
// file holds a single block, copying stops at the first short write. It
// returns the number of bytes stored.
func (im *Importer) Import(ctx context.Context, svc FileSystemService, src io.Reader, dest string) (written int64, err error) {
	const op = "service.Importer.Import"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)
	logger.Debug("Import", slog.String("dest", dest), slog.Int("chunk_size", im.chunkSize))

	fd, err := svc.Open(ctx, dest, models.OCreate|models.OTrunc)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := svc.Close(ctx, fd); cerr != nil {
			err = multierror.Append(err, cerr)
		}
	}()

	buf := make([]byte, im.chunkSize)
	for {
		n, rerr := src.Read(buf)
		if n > 0 {
			w, werr := svc.Write(ctx, fd, buf[:n])
			if werr != nil {
				logger.Debug("Write failed", slogext.Err(werr), slog.Int64("written", written))
				return written, werr
			}
			written += int64(w)
			if w < n {
				logger.Debug("Destination is full, dropping the rest", slog.Int64("written", written))
				return written, nil
			}
		}
		if errors.Is(rerr, io.EOF) {
			break
		}
		if rerr != nil {
			logger.Error("Failed to read source", slogext.Err(rerr))
			return written, fmt.Errorf("%s: %w", op, rerr)
		}
	}

	logger.Debug("Import finished", slog.String("dest", dest), slog.Int64("written", written))
	return written, nil
}

// CopyFromExternalFS imports a file of the host filesystem. The host file is
// closed on every path, including when dest cannot be opened.
func (im *Importer) CopyFromExternalFS(ctx context.Context, svc FileSystemService, sourcePath string, dest string) (written int64, err error) {
	const op = "service.Importer.CopyFromExternalFS"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)
	logger.Debug("CopyFromExternalFS", slog.String("source", sourcePath), slog.String("dest", dest))

	source, err := os.Open(sourcePath)
	if err != nil {
		logger.Debug("Failed to open source", slogext.Err(err))
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		if cerr := source.Close(); cerr != nil {
			err = multierror.Append(err, cerr)
		}
	}()

	return im.Import(ctx, svc, source, dest)
}

// ImportFromSource imports the external file name stored in PostgreSQL. All
// chunks are read inside one read-only transaction.
func (im *Importer) ImportFromSource(
	ctx context.Context,
	svc FileSystemService,
	db postgresql.Pool,
	src repository.SourceRepository,
	name string,
	dest string,
) (int64, error) {
	const op = "service.Importer.ImportFromSource"

	logger := logging.GetLoggerFromContextWithOp(ctx, op)
	logger.Debug("ImportFromSource", slog.String("source", name), slog.String("dest", dest))

	var written int64
	err := postgresql.WithReadOnlyTransaction(ctx, db, func(ctx context.Context) error {
		size, err := src.Size(ctx, name)
		if err != nil {
			return fromRepository(err)
		}
		logger.Debug("Source found", slog.String("source", name), slog.Int64("size", size))

		written, err = im.Import(ctx, svc, src.NewReader(ctx, name), dest)
		return err
	})
	if err != nil {
		var se *ServiceError
		if errors.As(err, &se) {
			return written, err
		}
		logger.Error("Failed to import from source", slogext.Err(err), slog.String("source", name))
		return written, fmt.Errorf("%s: %w", op, err)
	}

	return written, nil
}
