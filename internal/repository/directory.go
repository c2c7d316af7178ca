package repository

import (
	"github.com/emirpasic/gods/maps/treemap"

	"github.com/S1riyS/tfs/internal/models"
)

// DirectoryRepository keeps one name -> inumber table per directory inode.
// Only the root table exists today.
type DirectoryRepository interface {
	Add(dirIno int64, name string, ino int64) error
	Find(dirIno int64, name string) (int64, bool)
	Clear(dirIno int64, name string)
	EntryAt(dirIno int64, offset uint64) (string, int64, bool)
	Len(dirIno int64) int
	Drop(dirIno int64)
	Register(dirIno int64)
}

type directoryRepository struct {
	maxEntries int
	tables     map[int64]*treemap.Map
}

func NewDirectoryRepository(maxEntries int) DirectoryRepository {
	return &directoryRepository{
		maxEntries: maxEntries,
		tables:     make(map[int64]*treemap.Map),
	}
}

func (r *directoryRepository) Register(dirIno int64) {
	if _, ok := r.tables[dirIno]; ok {
		return
	}
	r.tables[dirIno] = treemap.NewWithStringComparator()
}

func (r *directoryRepository) Drop(dirIno int64) {
	delete(r.tables, dirIno)
}

func (r *directoryRepository) Add(dirIno int64, name string, ino int64) error {
	table, ok := r.tables[dirIno]
	if !ok {
		return ErrNotADirectory
	}
	if len(name) > models.MaxNameLen {
		return ErrNameTooLong
	}
	if _, found := table.Get(name); found {
		return ErrEntryExists
	}
	if table.Size() >= r.maxEntries {
		return ErrDirFull
	}

	table.Put(name, ino)
	return nil
}

func (r *directoryRepository) Find(dirIno int64, name string) (int64, bool) {
	table, ok := r.tables[dirIno]
	if !ok {
		return -1, false
	}
	v, found := table.Get(name)
	if !found {
		return -1, false
	}
	return v.(int64), true
}

func (r *directoryRepository) Clear(dirIno int64, name string) {
	if table, ok := r.tables[dirIno]; ok {
		table.Remove(name)
	}
}

// EntryAt returns the entry at position offset in name order.
func (r *directoryRepository) EntryAt(dirIno int64, offset uint64) (string, int64, bool) {
	table, ok := r.tables[dirIno]
	if !ok || offset >= uint64(table.Size()) {
		return "", -1, false
	}

	it := table.Iterator()
	for i := uint64(0); it.Next(); i++ {
		if i == offset {
			return it.Key().(string), it.Value().(int64), true
		}
	}
	return "", -1, false
}

func (r *directoryRepository) Len(dirIno int64) int {
	table, ok := r.tables[dirIno]
	if !ok {
		return 0
	}
	return table.Size()
}
