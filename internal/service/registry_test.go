package service_test

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/S1riyS/tfs/internal/models"
	"github.com/S1riyS/tfs/internal/service"
)

func TestRegistryLifecycle(t *testing.T) {
	ctx := testContext()
	reg := service.NewRegistry(smallParams())

	inst, err := reg.Create(ctx, "one")
	require.NoError(t, err)
	assert.Equal(t, "one", inst.Token)

	_, err = reg.Create(ctx, "one")
	assert.ErrorIs(t, err, service.ErrExists)

	generated, err := reg.Create(ctx, "")
	require.NoError(t, err)
	assert.NotEmpty(t, generated.Token)
	assert.Equal(t, 2, reg.Len())

	got, err := reg.Get("one")
	require.NoError(t, err)
	assert.Same(t, inst, got)

	_, err = reg.Get("missing")
	assert.ErrorIs(t, err, service.ErrUnknownFS)

	require.NoError(t, reg.Destroy(ctx, "one"))
	assert.ErrorIs(t, reg.Destroy(ctx, "one"), service.ErrUnknownFS)
	assert.Equal(t, 1, reg.Len())

	require.NoError(t, reg.CloseAll(ctx))
	assert.Zero(t, reg.Len())
}

func TestRegistryInstancesAreIndependent(t *testing.T) {
	ctx := testContext()
	reg := service.NewRegistry(smallParams())

	a, err := reg.Create(ctx, "a")
	require.NoError(t, err)
	b, err := reg.Create(ctx, "b")
	require.NoError(t, err)

	require.NoError(t, a.Do(func(svc service.FileSystemService) error {
		fd, err := svc.Open(ctx, "/f", models.OCreate)
		if err != nil {
			return err
		}
		return svc.Close(ctx, fd)
	}))

	err = b.Do(func(svc service.FileSystemService) error {
		_, err := svc.Lookup(ctx, "/f")
		return err
	})
	assert.ErrorIs(t, err, service.ErrNotFound)

	stats := reg.Stats()
	assert.Equal(t, 3, stats.Inodes)
	assert.Equal(t, 1, stats.Entries)
}

func TestInstanceSerializesCalls(t *testing.T) {
	ctx := testContext()
	params := smallParams()
	params.MaxInodes = 64
	params.MaxDirEntries = 64
	reg := service.NewRegistry(params)

	inst, err := reg.Create(ctx, "shared")
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_ = inst.Do(func(svc service.FileSystemService) error {
				fd, err := svc.Open(ctx, "/counter", models.OCreate|models.OAppend)
				if err != nil {
					return err
				}
				defer svc.Close(ctx, fd)
				_, err = svc.Write(ctx, fd, []byte("x"))
				return err
			})
		}()
	}
	wg.Wait()

	require.NoError(t, inst.Do(func(svc service.FileSystemService) error {
		meta, err := svc.Lookup(ctx, "/counter")
		if err != nil {
			return err
		}
		assert.EqualValues(t, 16, meta.Size)
		return nil
	}))
}

func TestRegistryStatsDoNotWaitForBusyInstance(t *testing.T) {
	ctx := testContext()
	reg := service.NewRegistry(smallParams())

	inst, err := reg.Create(ctx, "busy")
	require.NoError(t, err)

	started := make(chan struct{})
	release := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		_ = inst.Do(func(svc service.FileSystemService) error {
			fd, err := svc.Open(ctx, "/slow", models.OCreate)
			if err != nil {
				return err
			}
			close(started)
			<-release
			return svc.Close(ctx, fd)
		})
	}()
	<-started

	done := make(chan models.Stats)
	go func() { done <- reg.Stats() }()

	select {
	case stats := <-done:
		// the snapshot predates the call still in progress
		assert.Equal(t, 1, stats.Inodes)
		assert.Zero(t, stats.OpenFiles)
	case <-time.After(5 * time.Second):
		t.Fatal("Stats blocked on an instance lock")
	}

	close(release)
	<-finished

	stats := reg.Stats()
	assert.Equal(t, 2, stats.Inodes)
	assert.Equal(t, 1, stats.Entries)
	assert.Zero(t, stats.OpenFiles)
}
