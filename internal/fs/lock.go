package fs

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/sys/unix"
)

// ErrWouldBlock is returned by [TryLock] when another process holds the lock.
var ErrWouldBlock = errors.New("lock would block")

const (
	lockPerms = 0o644
	dirPerms  = 0o755
)

// Lock represents a held file lock. Call [Lock.Close] to release it.
type Lock struct {
	file File
}

// Close releases the lock and closes the underlying file descriptor.
// Close is idempotent.
func (lk *Lock) Close() error {
	if lk == nil || lk.file == nil {
		return nil
	}

	fd := int(lk.file.Fd())

	unlockErr := flockRetryEINTR(fd, unix.LOCK_UN)
	closeErr := lk.file.Close()
	lk.file = nil

	if unlockErr != nil {
		unlockErr = fmt.Errorf("unlocking lock: %w", unlockErr)
	}

	if closeErr != nil {
		closeErr = fmt.Errorf("closing lock fd: %w", closeErr)
	}

	return errors.Join(unlockErr, closeErr)
}

// LockPath returns the lock file guarding dir. Lock files live in a .locks
// directory next to dir so wiping dir never removes its own lock.
func LockPath(dir string) string {
	dir = filepath.Clean(dir)

	return filepath.Join(filepath.Dir(dir), ".locks", filepath.Base(dir)+".lock")
}

// TryLock takes an exclusive flock(2) on the lock file for dir without
// blocking. The lock file and its parent are created lazily.
//
// Returns an error satisfying [errors.Is] with [ErrWouldBlock] when another
// process holds the lock.
func TryLock(fsys FS, dir string) (*Lock, error) {
	path := LockPath(dir)

	if err := fsys.MkdirAll(filepath.Dir(path), dirPerms); err != nil {
		return nil, fmt.Errorf("creating lock dir: %w", err)
	}

	file, err := fsys.OpenFile(path, os.O_CREATE|os.O_RDWR, lockPerms)
	if err != nil {
		return nil, fmt.Errorf("opening lock file: %w", err)
	}

	err = flockRetryEINTR(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err != nil {
		_ = file.Close()

		if errors.Is(err, unix.EWOULDBLOCK) {
			return nil, fmt.Errorf("%w: %s", ErrWouldBlock, path)
		}

		return nil, fmt.Errorf("flock %s: %w", path, err)
	}

	return &Lock{file: file}, nil
}

func flockRetryEINTR(fd int, how int) error {
	for {
		err := unix.Flock(fd, how)
		if !errors.Is(err, unix.EINTR) {
			return err
		}
	}
}
