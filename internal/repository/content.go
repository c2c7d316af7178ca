package repository

// ContentRepository is the data block pool. Block ids are indexes into one
// preallocated arena.
type ContentRepository interface {
	Allocate() (int64, error)
	Get(id int64) []byte
	Free(id int64)
	BlockSize() int
	InUse() int
}

type contentRepository struct {
	blockSize int
	arena     []byte
	live      []bool
	alloc     *slotAllocator
}

func NewContentRepository(maxBlocks, blockSize int) ContentRepository {
	return &contentRepository{
		blockSize: blockSize,
		arena:     make([]byte, maxBlocks*blockSize),
		live:      make([]bool, maxBlocks),
		alloc:     newSlotAllocator(maxBlocks),
	}
}

func (r *contentRepository) Allocate() (int64, error) {
	i, ok := r.alloc.allocate()
	if !ok {
		return -1, ErrNoBlocks
	}
	r.live[i] = true
	clear(r.block(i))
	return int64(i), nil
}

// Get returns the block buffer, or nil if id is not allocated. The slice
// aliases the arena and must not be kept past the current call.
func (r *contentRepository) Get(id int64) []byte {
	if id < 0 || id >= int64(len(r.live)) || !r.live[id] {
		return nil
	}
	return r.block(int(id))
}

func (r *contentRepository) Free(id int64) {
	if id < 0 || id >= int64(len(r.live)) || !r.live[id] {
		return
	}
	r.live[id] = false
	r.alloc.release(int(id))
}

func (r *contentRepository) BlockSize() int {
	return r.blockSize
}

func (r *contentRepository) InUse() int {
	return r.alloc.inUse()
}

func (r *contentRepository) block(i int) []byte {
	start := i * r.blockSize
	return r.arena[start : start+r.blockSize : start+r.blockSize]
}
