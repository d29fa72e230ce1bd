// Package limits bounds the concurrency of compute and IO work shared by all targets.
package limits

import (
	"context"
	"runtime"

	"golang.org/x/sync/semaphore"
)

const (
	minIOPermits = 4
	maxIOPermits = 64
)

// Pool is a weighted semaphore that runs work once a slot is free.
// It implements both ports.ComputePool and ports.IOLimiter.
type Pool struct {
	sem  *semaphore.Weighted
	size int64
}

// NewPool creates a pool with size slots. A non-positive size is treated as one.
func NewPool(size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{sem: semaphore.NewWeighted(int64(size)), size: int64(size)}
}

// NewComputePool sizes a pool by the number of CPUs.
func NewComputePool() *Pool {
	return NewPool(runtime.NumCPU())
}

// NewIOLimiter sizes a pool for network and disk work.
func NewIOLimiter() *Pool {
	return NewPool(IOPermitCount(runtime.GOMAXPROCS(0)))
}

// IOPermitCount returns twice procs, clamped to [4, 64].
func IOPermitCount(procs int) int {
	return min(max(2*procs, minIOPermits), maxIOPermits)
}

// Size returns the number of slots.
func (p *Pool) Size() int {
	return int(p.size)
}

// Do runs fn once a slot is available. It returns ctx.Err() if ctx ends first.
func (p *Pool) Do(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := p.sem.Acquire(ctx, 1); err != nil {
		return err
	}
	defer p.sem.Release(1)
	return fn(ctx)
}
