package config

import (
	"fmt"

	"github.com/alecthomas/units"

	"github.com/S1riyS/tfs/internal/models"
)

// FilesystemConfig sizes every instance created by the server. Byte sizes
// accept unit suffixes such as "1KiB".
type FilesystemConfig struct {
	MaxInodes       int    `yaml:"max_inodes" env-default:"64"`
	MaxBlocks       int    `yaml:"max_blocks" env-default:"1024"`
	MaxOpenFiles    int    `yaml:"max_open_files" env-default:"16"`
	BlockSize       string `yaml:"block_size" env-default:"1KiB"`
	MaxDirEntries   int    `yaml:"max_dir_entries" env-default:"0"`
	ImportChunkSize string `yaml:"import_chunk_size" env-default:"128B"`
}

func (c FilesystemConfig) Params() (models.Params, error) {
	blockSize, err := parseSize(c.BlockSize)
	if err != nil {
		return models.Params{}, fmt.Errorf("block_size: %w", err)
	}

	return models.Params{
		MaxInodes:     c.MaxInodes,
		MaxBlocks:     c.MaxBlocks,
		MaxOpenFiles:  c.MaxOpenFiles,
		BlockSize:     blockSize,
		MaxDirEntries: c.MaxDirEntries,
	}, nil
}

func (c FilesystemConfig) ChunkSize() (int, error) {
	n, err := parseSize(c.ImportChunkSize)
	if err != nil {
		return 0, fmt.Errorf("import_chunk_size: %w", err)
	}
	return n, nil
}

func parseSize(s string) (int, error) {
	n, err := units.ParseBase2Bytes(s)
	if err != nil {
		return 0, err
	}
	if n <= 0 {
		return 0, fmt.Errorf("size must be positive, got %q", s)
	}
	return int(n), nil
}
