package repository

import (
	"github.com/S1riyS/tfs/internal/models"
)

type OpenFileRepository interface {
	Allocate(ino int64, gen uint64, offset int64) (int64, error)
	Get(handle int64) *models.OpenFile
	Release(handle int64)
	InUse() int
}

type openFileRepository struct {
	table []models.OpenFile
	live  []bool
	alloc *slotAllocator
}

func NewOpenFileRepository(maxOpenFiles int) OpenFileRepository {
	return &openFileRepository{
		table: make([]models.OpenFile, maxOpenFiles),
		live:  make([]bool, maxOpenFiles),
		alloc: newSlotAllocator(maxOpenFiles),
	}
}

func (r *openFileRepository) Allocate(ino int64, gen uint64, offset int64) (int64, error) {
	i, ok := r.alloc.allocate()
	if !ok {
		return -1, ErrNoSessions
	}

	r.live[i] = true
	r.table[i] = models.OpenFile{
		Handle: int64(i),
		Ino:    ino,
		Gen:    gen,
		Offset: offset,
	}
	return int64(i), nil
}

func (r *openFileRepository) Get(handle int64) *models.OpenFile {
	if handle < 0 || handle >= int64(len(r.live)) || !r.live[handle] {
		return nil
	}
	return &r.table[handle]
}

func (r *openFileRepository) Release(handle int64) {
	if r.Get(handle) == nil {
		return
	}
	r.table[handle] = models.OpenFile{}
	r.live[handle] = false
	r.alloc.release(int(handle))
}

func (r *openFileRepository) InUse() int {
	return r.alloc.inUse()
}
