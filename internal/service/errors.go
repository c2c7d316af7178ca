package service

import (
	"errors"

	"github.com/S1riyS/tfs/internal/pkg/kerrors"
	"github.com/S1riyS/tfs/internal/repository"
)

// ErrorKind is the coarse failure class of a ServiceError.
type ErrorKind int

const (
	KindInvalidArgument ErrorKind = iota + 1
	KindNotFound
	KindExhausted
	KindInvalidState
)

func (k ErrorKind) String() string {
	switch k {
	case KindInvalidArgument:
		return "invalid-argument"
	case KindNotFound:
		return "not-found"
	case KindExhausted:
		return "exhausted-resource"
	case KindInvalidState:
		return "invalid-state"
	default:
		return "unknown"
	}
}

var (
	ErrInvalidPath   = newError(KindInvalidArgument, kerrors.EINVAL, "invalid path")
	ErrInvalidOffset = newError(KindInvalidArgument, kerrors.EINVAL, "offset out of range")
	ErrNameTooLong   = newError(KindInvalidArgument, kerrors.ENAMETOOLONG, "file name too long")

	ErrNotFound      = newError(KindNotFound, kerrors.ENOENT, "file not found")
	ErrNoMoreEntries = newError(KindNotFound, kerrors.ENOENT, "no more entries")
	ErrUnknownFS     = newError(KindNotFound, kerrors.ENODEV, "filesystem not initialized")

	ErrNoInodes   = newError(KindExhausted, kerrors.ENOSPC, "no free inodes")
	ErrNoBlocks   = newError(KindExhausted, kerrors.ENOSPC, "no free data blocks")
	ErrDirFull    = newError(KindExhausted, kerrors.ENOSPC, "directory is full")
	ErrNoSessions = newError(KindExhausted, kerrors.ENFILE, "open file table is full")

	ErrBadHandle     = newError(KindInvalidState, kerrors.EBADF, "bad file handle")
	ErrStaleHandle   = newError(KindInvalidState, kerrors.ESTALE, "file was deleted")
	ErrLinkToSymlink = newError(KindInvalidState, kerrors.EPERM, "cannot hard link a symbolic link")
	ErrSymlinkLoop   = newError(KindInvalidState, kerrors.ELOOP, "too many levels of symbolic links")
	ErrExists        = newError(KindInvalidState, kerrors.EEXIST, "name already exists")
	ErrDestroyed     = newError(KindInvalidState, kerrors.ENODEV, "filesystem destroyed")
)

type ServiceError struct {
	Kind    ErrorKind
	Code    int64
	Message string
}

func newError(kind ErrorKind, code int64, msg string) *ServiceError {
	return &ServiceError{Kind: kind, Code: code, Message: msg}
}

func (e *ServiceError) Error() string {
	return e.Message
}

func (e *ServiceError) GetCode() int64 {
	return e.Code
}

// Is matches on kind, errno and message so that equivalent errors built
// elsewhere compare equal to the package sentinels. ErrNoInodes and
// ErrNoBlocks share kind and errno, so the message is part of the key.
func (e *ServiceError) Is(target error) bool {
	t, ok := target.(*ServiceError)
	if !ok {
		return false
	}
	return e.Kind == t.Kind && e.Code == t.Code && e.Message == t.Message
}

// KindOf returns the kind of err, or 0 if err is not a ServiceError.
func KindOf(err error) ErrorKind {
	var se *ServiceError
	if errors.As(err, &se) {
		return se.Kind
	}
	return 0
}

func fromRepository(err error) error {
	switch {
	case errors.Is(err, repository.ErrNoInodes):
		return ErrNoInodes
	case errors.Is(err, repository.ErrNoBlocks):
		return ErrNoBlocks
	case errors.Is(err, repository.ErrNoSessions):
		return ErrNoSessions
	case errors.Is(err, repository.ErrDirFull):
		return ErrDirFull
	case errors.Is(err, repository.ErrEntryExists):
		return ErrExists
	case errors.Is(err, repository.ErrNameTooLong):
		return ErrNameTooLong
	case errors.Is(err, repository.ErrSourceNotFound):
		return ErrNotFound
	default:
		return err
	}
}
