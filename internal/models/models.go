package models

type NodeType int16

const (
	NodeTypeDir     NodeType = 0
	NodeTypeFile    NodeType = 1
	NodeTypeSymLink NodeType = 2
)

func (t NodeType) String() string {
	switch t {
	case NodeTypeDir:
		return "dir"
	case NodeTypeFile:
		return "file"
	case NodeTypeSymLink:
		return "symlink"
	default:
		return "unknown"
	}
}

const (
	RootIno    int64 = 0
	NoBlock    int64 = -1
	MaxNameLen       = 40

	// DirentSize is the on-block footprint of one directory entry:
	// a MaxNameLen name plus a 4-byte inumber.
	DirentSize = MaxNameLen + 4
)

// OpenMode is a bit set of open flags.
type OpenMode uint32

const (
	OCreate OpenMode = 1 << iota
	OTrunc
	OAppend
)

func (m OpenMode) Has(flag OpenMode) bool {
	return m&flag != 0
}

type Inode struct {
	Ino    int64
	Gen    uint64
	Type   NodeType
	Size   int64
	Block  int64
	Target string
	Links  int
}

type Dirent struct {
	Name string   `json:"name"`
	Ino  int64    `json:"ino"`
	Type NodeType `json:"type"`
}

type NodeMeta struct {
	Ino   int64    `json:"ino"`
	Type  NodeType `json:"type"`
	Size  int64    `json:"size"`
	Links int      `json:"links"`
}

type OpenFile struct {
	Handle int64
	Ino    int64
	Gen    uint64
	Offset int64
}

// Params sizes the fixed pools of one filesystem instance.
type Params struct {
	MaxInodes     int
	MaxBlocks     int
	MaxOpenFiles  int
	BlockSize     int
	MaxDirEntries int
}

func DefaultParams() Params {
	return Params{
		MaxInodes:     64,
		MaxBlocks:     1024,
		MaxOpenFiles:  16,
		BlockSize:     1024,
		MaxDirEntries: 1024 / DirentSize,
	}
}

// Stats reports pool occupancy of one instance.
type Stats struct {
	Inodes    int
	Blocks    int
	OpenFiles int
	Entries   int
}

func (s Stats) Add(o Stats) Stats {
	return Stats{
		Inodes:    s.Inodes + o.Inodes,
		Blocks:    s.Blocks + o.Blocks,
		OpenFiles: s.OpenFiles + o.OpenFiles,
		Entries:   s.Entries + o.Entries,
	}
}
