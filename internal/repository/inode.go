package repository

import (
	"github.com/S1riyS/tfs/internal/models"
)

type InodeRepository interface {
	Allocate(t models.NodeType) (int64, error)
	Get(ino int64) *models.Inode
	Delete(ino int64)
	InUse() int
}

type inodeRepository struct {
	table   []models.Inode
	live    []bool
	gens    []uint64
	alloc   *slotAllocator
	content ContentRepository
}

// NewInodeRepository builds the inode table. Deleting an inode frees its
// data block through content.
func NewInodeRepository(maxInodes int, content ContentRepository) InodeRepository {
	return &inodeRepository{
		table:   make([]models.Inode, maxInodes),
		live:    make([]bool, maxInodes),
		gens:    make([]uint64, maxInodes),
		alloc:   newSlotAllocator(maxInodes),
		content: content,
	}
}

func (r *inodeRepository) Allocate(t models.NodeType) (int64, error) {
	i, ok := r.alloc.allocate()
	if !ok {
		return -1, ErrNoInodes
	}

	r.gens[i]++
	r.live[i] = true
	r.table[i] = models.Inode{
		Ino:   int64(i),
		Gen:   r.gens[i],
		Type:  t,
		Size:  0,
		Block: models.NoBlock,
		Links: 1,
	}

	return int64(i), nil
}

// Get returns a pointer into the table, or nil if ino is not live.
func (r *inodeRepository) Get(ino int64) *models.Inode {
	if ino < 0 || ino >= int64(len(r.live)) || !r.live[ino] {
		return nil
	}
	return &r.table[ino]
}

func (r *inodeRepository) Delete(ino int64) {
	inode := r.Get(ino)
	if inode == nil {
		return
	}

	if inode.Block != models.NoBlock {
		r.content.Free(inode.Block)
	}

	r.table[ino] = models.Inode{}
	r.live[ino] = false
	r.alloc.release(int(ino))
}

func (r *inodeRepository) InUse() int {
	return r.alloc.inUse()
}
