package service

import (
	"github.com/S1riyS/tfs/internal/models"
)

func validPathname(name string) bool {
	return len(name) > 1 && name[0] == '/'
}

// lookup resolves an absolute path against the root directory. Only one
// level exists, so any further '/' is part of the name.
func (s *fileSystemService) lookup(name string, root *models.Inode) (int64, bool) {
	if root.Type != models.NodeTypeDir {
		panic("service.lookup: root inode is not a directory")
	}
	if !validPathname(name) {
		return -1, false
	}

	return s.fs.Dirs.Find(root.Ino, name[1:])
}
