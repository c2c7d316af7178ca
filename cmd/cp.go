package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/S1riyS/tfs/internal/service"
	"github.com/S1riyS/tfs/pkg/logging/slogext"
)

type CpCmd struct {
	Source string `arg:"" type:"existingfile" help:"Host file to import."`
	Dest   string `arg:"" help:"Absolute path inside the filesystem, e.g. /notes."`
}

func (c *CpCmd) Run(g *Globals) error {
	cfg, ctx, logger := g.setup()

	params, err := cfg.Filesystem.Params()
	if err != nil {
		return err
	}
	chunkSize, err := cfg.Filesystem.ChunkSize()
	if err != nil {
		return err
	}

	svc, err := service.New(params)
	if err != nil {
		return err
	}
	defer func() {
		if err := svc.Destroy(ctx); err != nil {
			logger.Warn("Failed to destroy filesystem", slogext.Err(err))
		}
	}()

	written, err := service.NewImporter(chunkSize).CopyFromExternalFS(ctx, svc, c.Source, c.Dest)
	if err != nil {
		return fmt.Errorf("import %s: %w", c.Source, err)
	}
	logger.Info("Imported", slog.String("dest", c.Dest), slog.Int64("bytes", written))

	fd, err := svc.Open(ctx, c.Dest, 0)
	if err != nil {
		return err
	}
	defer svc.Close(ctx, fd)

	buf := make([]byte, params.BlockSize)
	n, err := svc.Read(ctx, fd, buf)
	if err != nil {
		return err
	}

	if _, err := os.Stdout.Write(buf[:n]); err != nil {
		return err
	}
	if n < params.BlockSize {
		return nil
	}

	info, err := os.Stat(c.Source)
	if err == nil && info.Size() > int64(n) {
		fmt.Fprintf(os.Stderr, "\n%s truncated to %d bytes (one block)\n", c.Dest, n)
	}
	return nil
}
