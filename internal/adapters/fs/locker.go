package fs

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"go.trai.ch/pixi/internal/core/domain"
	"go.trai.ch/pixi/internal/core/ports"
	"go.trai.ch/zerr"
)

var _ ports.PrefixLocker = (*PrefixLocker)(nil)

// lockPollInterval is how often a contended file lock is retried.
const lockPollInterval = 50 * time.Millisecond

// PrefixLocker holds an exclusive lock per prefix. Goroutines of this process queue on a
// channel, other processes on a lock file inside the prefix.
type PrefixLocker struct {
	mu    sync.Mutex
	slots map[string]chan struct{}
}

// NewPrefixLocker creates a new PrefixLocker.
func NewPrefixLocker() *PrefixLocker {
	return &PrefixLocker{slots: make(map[string]chan struct{})}
}

// Lock blocks until the prefix is held by the caller or ctx ends.
func (l *PrefixLocker) Lock(ctx context.Context, prefix string) (func(), error) {
	slot := l.slot(prefix)
	select {
	case slot <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	f, err := l.lockFile(ctx, prefix)
	if err != nil {
		<-slot
		return nil, err
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			_ = unlockFile(f)
			_ = f.Close()
			<-slot
		})
	}, nil
}

func (l *PrefixLocker) slot(prefix string) chan struct{} {
	key := filepath.Clean(prefix)
	l.mu.Lock()
	defer l.mu.Unlock()
	slot, ok := l.slots[key]
	if !ok {
		slot = make(chan struct{}, 1)
		l.slots[key] = slot
	}
	return slot
}

func (l *PrefixLocker) lockFile(ctx context.Context, prefix string) (*os.File, error) {
	if err := os.MkdirAll(prefix, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to create prefix"), "prefix", prefix)
	}
	path := filepath.Join(prefix, domain.PrefixLockFileName)
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, domain.PrivateFilePerm) //nolint:gosec // Path is derived from the prefix
	if err != nil {
		return nil, zerr.With(zerr.Wrap(err, "failed to open lock file"), "path", path)
	}

	ticker := time.NewTicker(lockPollInterval)
	defer ticker.Stop()
	for {
		locked, err := tryLockFile(f)
		if err != nil {
			_ = f.Close()
			return nil, zerr.With(zerr.Wrap(err, "failed to lock file"), "path", path)
		}
		if locked {
			return f, nil
		}
		select {
		case <-ticker.C:
		case <-ctx.Done():
			_ = f.Close()
			return nil, ctx.Err()
		}
	}
}
