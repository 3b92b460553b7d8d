package fetch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

const (
	// StaleLockThreshold is the age after which a cache lock is taken over.
	// A held lock is touched every lockRefreshInterval, so only an abandoned
	// lock gets this old.
	StaleLockThreshold = 10 * time.Minute

	lockFilename = "cache.lock"
)

// ErrCacheLocked is returned when another process holds the cache lock
// for longer than the caller is willing to wait.
var ErrCacheLocked = errors.New("download cache is locked by another process")

// Variables so tests can shorten them.
var (
	lockPollInterval    = 250 * time.Millisecond
	lockRefreshInterval = StaleLockThreshold / 4
)

// CacheLock is an exclusive lock on a download cache directory.
type CacheLock struct {
	path  string
	file  *os.File
	token string
	stop  chan struct{}
	done  chan struct{}
}

// AcquireCacheLock takes the lock in dir, waiting for a live holder until
// ctx is done. Locks older than StaleLockThreshold are removed.
func AcquireCacheLock(ctx context.Context, dir string) (*CacheLock, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create cache directory: %w", err)
	}
	lockPath := filepath.Join(dir, lockFilename)

	for {
		file, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_RDWR, 0o600)
		if err == nil {
			return writeLock(lockPath, file)
		}
		if !os.IsExist(err) {
			return nil, fmt.Errorf("create lock file: %w", err)
		}

		if stale, _ := isLockStale(lockPath); stale {
			_ = os.Remove(lockPath)
			continue
		}

		select {
		case <-ctx.Done():
			return nil, fmt.Errorf("%w: %w", ErrCacheLocked, ctx.Err())
		case <-time.After(lockPollInterval):
		}
	}
}

func writeLock(lockPath string, file *os.File) (*CacheLock, error) {
	token := fmt.Sprintf("pid=%d\ntimestamp=%s\n", os.Getpid(), time.Now().UTC().Format(time.RFC3339Nano))
	if _, err := file.WriteString(token); err != nil {
		file.Close()
		os.Remove(lockPath)
		return nil, fmt.Errorf("write lock data: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		os.Remove(lockPath)
		return nil, fmt.Errorf("sync lock file: %w", err)
	}

	l := &CacheLock{
		path:  lockPath,
		file:  file,
		token: token,
		stop:  make(chan struct{}),
		done:  make(chan struct{}),
	}
	go l.refresh()
	return l, nil
}

// refresh keeps the lock's mtime current until Release.
func (l *CacheLock) refresh() {
	defer close(l.done)
	ticker := time.NewTicker(lockRefreshInterval)
	defer ticker.Stop()
	for {
		select {
		case <-l.stop:
			return
		case <-ticker.C:
			now := time.Now()
			_ = os.Chtimes(l.path, now, now)
		}
	}
}

// Release removes the lock if this process still owns it. It is safe to
// call more than once.
func (l *CacheLock) Release() error {
	if l.stop != nil {
		close(l.stop)
		<-l.done
		l.stop = nil
	}
	if l.file != nil {
		l.file.Close()
		l.file = nil
	}
	if l.path == "" {
		return nil
	}
	path := l.path
	l.path = ""

	// Another process took the lock over; leave its file alone.
	if data, err := os.ReadFile(path); err != nil || string(data) != l.token {
		if err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("read lock file: %w", err)
		}
		return nil
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove lock file: %w", err)
	}
	return nil
}

func isLockStale(lockPath string) (bool, error) {
	info, err := os.Stat(lockPath)
	if err != nil {
		return false, err
	}
	return time.Since(info.ModTime()) > StaleLockThreshold, nil
}
