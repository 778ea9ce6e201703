// Package metadata defines the error taxonomy of the inode table that maps
// the bucket namespace onto a filesystem hierarchy.
//
// The inode table itself lives behind its own repository; the write path
// only depends on the shape of its failures, every one of which classifies
// to exactly one POSIX errno.
package metadata

import (
	"fmt"
	"syscall"

	"golang.org/x/sys/unix"
)

// InodeErrorCode represents the category of a namespace operation failure.
//
// These are domain errors (file not found, write conflict, etc.) as opposed
// to infrastructure errors; the one exception is InodeErrClientError, which
// wraps a backend client failure surfaced during a metadata lookup.
type InodeErrorCode int

const (
	// InodeErrClientError wraps a backend client failure during a metadata
	// operation (e.g. a HeadObject while resolving an entry).
	InodeErrClientError InodeErrorCode = iota

	// InodeErrFileDoesNotExist indicates the named entry doesn't exist
	InodeErrFileDoesNotExist

	// InodeErrInodeDoesNotExist indicates the inode number is unknown
	InodeErrInodeDoesNotExist

	// InodeErrInvalidFileName indicates the name cannot be mapped to an
	// object key (embedded NUL, '/', or reserved name)
	InodeErrInvalidFileName

	// InodeErrNotADirectory indicates a directory operation hit a file
	InodeErrNotADirectory

	// InodeErrIsDirectory indicates a file operation hit a directory
	InodeErrIsDirectory

	// InodeErrFileAlreadyExists indicates an exclusive create found an
	// existing entry
	InodeErrFileAlreadyExists

	// InodeErrInodeNotWritable indicates the inode's content is sealed
	// remotely and cannot be modified through the mount
	InodeErrInodeNotWritable

	// InodeErrInodeInvalidWriteStatus indicates the inode's write state is
	// inconsistent with the requested operation
	InodeErrInodeInvalidWriteStatus

	// InodeErrInodeAlreadyWriting indicates another handle is already
	// writing this inode
	InodeErrInodeAlreadyWriting

	// InodeErrInodeNotReadableWhileWriting indicates a read was attempted
	// while the inode is being written
	InodeErrInodeNotReadableWhileWriting

	// InodeErrInodeNotWritableWhileReading indicates a write was attempted
	// while the inode is being read
	InodeErrInodeNotWritableWhileReading

	// InodeErrCannotRemoveRemoteDirectory indicates the directory exists
	// remotely and cannot be removed through the mount
	InodeErrCannotRemoveRemoteDirectory

	// InodeErrDirectoryNotEmpty indicates rmdir on a non-empty directory
	InodeErrDirectoryNotEmpty

	// InodeErrUnlinkNotPermittedWhileWriting indicates unlink while a write
	// to the same inode is in flight
	InodeErrUnlinkNotPermittedWhileWriting

	// InodeErrCorruptedMetadata indicates the inode table's own records are
	// inconsistent
	InodeErrCorruptedMetadata

	// InodeErrSetAttrNotPermittedOnRemoteInode indicates setattr on an
	// inode whose attributes are owned by the remote store
	InodeErrSetAttrNotPermittedOnRemoteInode

	// InodeErrStaleInode indicates the handle refers to an inode that was
	// replaced remotely
	InodeErrStaleInode
)

// String returns the code's short description for error messages and logs.
func (c InodeErrorCode) String() string {
	switch c {
	case InodeErrClientError:
		return "client error"
	case InodeErrFileDoesNotExist:
		return "file does not exist"
	case InodeErrInodeDoesNotExist:
		return "inode does not exist"
	case InodeErrInvalidFileName:
		return "invalid file name"
	case InodeErrNotADirectory:
		return "not a directory"
	case InodeErrIsDirectory:
		return "is a directory"
	case InodeErrFileAlreadyExists:
		return "file already exists"
	case InodeErrInodeNotWritable:
		return "inode is not writable"
	case InodeErrInodeInvalidWriteStatus:
		return "invalid write status"
	case InodeErrInodeAlreadyWriting:
		return "inode is already being written"
	case InodeErrInodeNotReadableWhileWriting:
		return "inode is not readable while being written"
	case InodeErrInodeNotWritableWhileReading:
		return "inode is not writable while being read"
	case InodeErrCannotRemoveRemoteDirectory:
		return "cannot remove remote directory"
	case InodeErrDirectoryNotEmpty:
		return "directory is not empty"
	case InodeErrUnlinkNotPermittedWhileWriting:
		return "unlink not permitted while writing"
	case InodeErrCorruptedMetadata:
		return "corrupted metadata"
	case InodeErrSetAttrNotPermittedOnRemoteInode:
		return "setattr not permitted on remote inode"
	case InodeErrStaleInode:
		return "stale inode"
	default:
		return "unknown inode error"
	}
}

// InodeError represents a namespace operation failure.
//
// Ino and Name identify the inode involved when known; Bucket and Key carry
// object coordinates for diagnostic metadata when the failure is tied to a
// remote object. Err preserves a wrapped cause for InodeErrClientError.
type InodeError struct {
	Code   InodeErrorCode
	Ino    uint64
	Name   string
	Bucket string
	Key    string
	Err    error
}

// Error implements the error interface.
func (e *InodeError) Error() string {
	switch {
	case e.Err != nil:
		return fmt.Sprintf("%s: inode %d %q: %v", e.Code, e.Ino, e.Name, e.Err)
	case e.Name != "":
		return fmt.Sprintf("%s: inode %d %q", e.Code, e.Ino, e.Name)
	default:
		return fmt.Sprintf("%s: inode %d", e.Code, e.Ino)
	}
}

// Unwrap exposes the wrapped cause for errors.Is/As chains.
func (e *InodeError) Unwrap() error {
	return e.Err
}

// ToErrno maps the error to its POSIX errno.
//
// The mapping is a pure function of the code: every code maps to exactly
// one errno, independent of call order or prior state. The write-conflict
// and remote-immutability codes map to EPERM rather than EINVAL or EROFS;
// the operation is well-formed, it is just not permitted on this inode
// right now.
func (e *InodeError) ToErrno() syscall.Errno {
	switch e.Code {
	case InodeErrClientError:
		return unix.EIO
	case InodeErrFileDoesNotExist, InodeErrInodeDoesNotExist:
		return unix.ENOENT
	case InodeErrInvalidFileName:
		return unix.EINVAL
	case InodeErrNotADirectory:
		return unix.ENOTDIR
	case InodeErrIsDirectory:
		return unix.EISDIR
	case InodeErrFileAlreadyExists:
		return unix.EEXIST
	case InodeErrInodeNotWritable,
		InodeErrInodeInvalidWriteStatus,
		InodeErrInodeAlreadyWriting,
		InodeErrInodeNotReadableWhileWriting,
		InodeErrInodeNotWritableWhileReading,
		InodeErrCannotRemoveRemoteDirectory,
		InodeErrUnlinkNotPermittedWhileWriting,
		InodeErrSetAttrNotPermittedOnRemoteInode:
		return unix.EPERM
	case InodeErrDirectoryNotEmpty:
		return unix.ENOTEMPTY
	case InodeErrCorruptedMetadata:
		return unix.EIO
	case InodeErrStaleInode:
		return unix.ESTALE
	default:
		return unix.EIO
	}
}
