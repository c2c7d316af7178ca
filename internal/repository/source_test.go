package repository

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memSource struct {
	files map[string][]byte
	calls int
}

func (m *memSource) Size(_ context.Context, name string) (int64, error) {
	data, ok := m.files[name]
	if !ok {
		return 0, ErrSourceNotFound
	}
	return int64(len(data)), nil
}

func (m *memSource) ReadChunk(_ context.Context, name string, offset int64, length int) ([]byte, error) {
	m.calls++
	data, ok := m.files[name]
	if !ok {
		return nil, ErrSourceNotFound
	}
	if offset >= int64(len(data)) {
		return []byte{}, nil
	}
	end := offset + int64(length)
	if end > int64(len(data)) {
		end = int64(len(data))
	}
	return data[offset:end], nil
}

func (m *memSource) NewReader(ctx context.Context, name string) io.Reader {
	return &chunkReader{ctx: ctx, repo: m, name: name}
}

func TestChunkReaderStreamsInChunks(t *testing.T) {
	src := &memSource{files: map[string][]byte{"notes": []byte("hello, world")}}

	r := src.NewReader(context.Background(), "notes")
	buf := make([]byte, 5)

	var got []byte
	for {
		n, err := r.Read(buf)
		got = append(got, buf[:n]...)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
	}

	assert.Equal(t, "hello, world", string(got))
	// three data chunks plus the empty one that signals the end
	assert.Equal(t, 4, src.calls)

	n, err := r.Read(buf)
	assert.Zero(t, n)
	assert.Equal(t, io.EOF, err)
}

func TestChunkReaderMissingSource(t *testing.T) {
	src := &memSource{files: map[string][]byte{}}

	_, err := src.NewReader(context.Background(), "nope").Read(make([]byte, 4))
	assert.ErrorIs(t, err, ErrSourceNotFound)
}

func TestNewSourceRepositoryQuotesTable(t *testing.T) {
	r := NewSourceRepository(nil, `weird"name`).(*sourceRepository)
	assert.Equal(t, `"weird""name"`, r.table)
}
