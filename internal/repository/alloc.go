package repository

import (
	"errors"

	"github.com/google/btree"
)

var (
	ErrNoInodes       = errors.New("inode table is full")
	ErrNoBlocks       = errors.New("data block pool is exhausted")
	ErrNoSessions     = errors.New("open file table is full")
	ErrDirFull        = errors.New("directory is full")
	ErrEntryExists    = errors.New("directory entry already exists")
	ErrNameTooLong    = errors.New("file name too long")
	ErrNotADirectory  = errors.New("not a directory")
	ErrSourceNotFound = errors.New("external file not found")
)

const freeSetDegree = 8

// slotAllocator hands out the lowest free index in [0, capacity).
type slotAllocator struct {
	capacity int
	free     *btree.BTreeG[int]
}

func newSlotAllocator(capacity int) *slotAllocator {
	a := &slotAllocator{
		capacity: capacity,
		free:     btree.NewOrderedG[int](freeSetDegree),
	}
	for i := 0; i < capacity; i++ {
		a.free.ReplaceOrInsert(i)
	}
	return a
}

func (a *slotAllocator) allocate() (int, bool) {
	return a.free.DeleteMin()
}

func (a *slotAllocator) release(i int) {
	if i < 0 || i >= a.capacity {
		return
	}
	a.free.ReplaceOrInsert(i)
}

func (a *slotAllocator) inUse() int {
	return a.capacity - a.free.Len()
}
