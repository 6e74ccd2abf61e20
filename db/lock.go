package db

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/eups-go/eups/errs"
)

// LockBusyError is returned when a write operation cannot acquire the
// stack's advisory lock within the retry budget (spec §6, §7's
// LOCK_BUSY). Spec.md scopes concurrent multi-writer access out, but
// a single advisory lock still guards against two instances of this
// same process racing on one stack.
type LockBusyError struct {
	Path string
}

func (e *LockBusyError) Error() string { return fmt.Sprintf("lock busy: %s", e.Path) }
func (e *LockBusyError) ExitCode() int { return errs.ExitResolution }

var _ errs.Coded = (*LockBusyError)(nil)

// lockRetries and lockDelay bound how long a writer waits for a busy
// lock before giving up, per spec §6's "bounded retry, then
// LOCK_BUSY" note.
const (
	lockRetries = 20
	lockDelay   = 50 * time.Millisecond
)

// Lock is a held advisory lock on a stack; call Unlock to release it.
type Lock struct {
	path string
}

// Lock acquires the stack-wide advisory lock used to serialize declare
// and tag writes, under <root>/ups_db/_locks/eups.lock. It creates the
// lock file exclusively, retrying with a short sleep on EEXIST before
// reporting LockBusyError.
func (s Stack) Lock() (*Lock, error) {
	dir := filepath.Join(s.upsDB(), "_locks")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating lock directory: %w", err)
	}
	path := filepath.Join(dir, "eups.lock")

	for attempt := 0; attempt <= lockRetries; attempt++ {
		f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
		if err == nil {
			f.Close()
			return &Lock{path: path}, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("acquiring lock: %w", err)
		}
		if attempt < lockRetries {
			time.Sleep(lockDelay)
		}
	}
	return nil, &LockBusyError{Path: path}
}

// Unlock releases the lock. Reads never take this lock and do not
// block on a writer.
func (l *Lock) Unlock() error {
	return os.Remove(l.path)
}

// retryOnMissing retries fn a few times if it reports the file as
// absent. Nothing in the package calls it: loadVersionFile and
// loadChainFile read once, and a missing file is reported at once.
// Writes replace the whole file with a single rename.
func retryOnMissing(fn func() error) error {
	var err error
	for attempt := 0; attempt <= lockRetries; attempt++ {
		err = fn()
		if err == nil || !os.IsNotExist(err) {
			return err
		}
		time.Sleep(lockDelay)
	}
	return err
}
