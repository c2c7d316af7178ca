package repository

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/jackc/pgx/v5"
	"github.com/lib/pq"

	"github.com/S1riyS/tfs/pkg/database/postgresql"
)

// SourceRepository reads external files stored in PostgreSQL. The table is
// expected to look like:
//
//	CREATE TABLE external_files (name TEXT PRIMARY KEY, data BYTEA NOT NULL);
type SourceRepository interface {
	Size(ctx context.Context, name string) (int64, error)
	ReadChunk(ctx context.Context, name string, offset int64, length int) ([]byte, error)
	NewReader(ctx context.Context, name string) io.Reader
}

type sourceRepository struct {
	db    postgresql.Client
	table string
}

func NewSourceRepository(db postgresql.Client, table string) SourceRepository {
	return &sourceRepository{
		db:    db,
		table: pq.QuoteIdentifier(table),
	}
}

func (r *sourceRepository) Size(ctx context.Context, name string) (int64, error) {
	const op = "repository.sourceRepository.Size"

	query := fmt.Sprintf(`
		SELECT octet_length(data)
		FROM %s
		WHERE name = $1
	`, r.table)

	var size int64
	db := postgresql.GetDBClient(ctx, r.db)
	err := db.QueryRow(ctx, query, name).Scan(&size)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, fmt.Errorf("%s: %w", op, ErrSourceNotFound)
		}
		return 0, fmt.Errorf("%s: %w", op, err)
	}

	return size, nil
}

// ReadChunk returns up to length bytes starting at offset. An empty slice
// means the end of the data.
func (r *sourceRepository) ReadChunk(ctx context.Context, name string, offset int64, length int) ([]byte, error) {
	const op = "repository.sourceRepository.ReadChunk"

	// substring() is 1-based
	query := fmt.Sprintf(`
		SELECT substring(data FROM $2 FOR $3)
		FROM %s
		WHERE name = $1
	`, r.table)

	var data []byte
	db := postgresql.GetDBClient(ctx, r.db)
	err := db.QueryRow(ctx, query, name, offset+1, length).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, ErrSourceNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return data, nil
}

func (r *sourceRepository) NewReader(ctx context.Context, name string) io.Reader {
	return &chunkReader{ctx: ctx, repo: r, name: name}
}

type chunkReader struct {
	ctx    context.Context
	repo   SourceRepository
	name   string
	offset int64
	eof    bool
}

func (cr *chunkReader) Read(p []byte) (int, error) {
	if cr.eof {
		return 0, io.EOF
	}
	if len(p) == 0 {
		return 0, nil
	}

	data, err := cr.repo.ReadChunk(cr.ctx, cr.name, cr.offset, len(p))
	if err != nil {
		return 0, err
	}
	if len(data) == 0 {
		cr.eof = true
		return 0, io.EOF
	}

	n := copy(p, data)
	cr.offset += int64(n)
	return n, nil
}
