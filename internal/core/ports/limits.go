package ports

import "context"

//go:generate mockgen -source=limits.go -destination=mocks/mock_limits.go -package=mocks

// ComputePool bounds CPU-bound work such as solver invocations.
type ComputePool interface {
	// Do runs fn once a slot is available. It returns ctx.Err() if ctx ends first.
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}

// IOLimiter bounds the network and disk work shared by every target, such as downloads,
// extraction and wheel installation.
type IOLimiter interface {
	// Do runs fn once a permit is available. It returns ctx.Err() if ctx ends first.
	Do(ctx context.Context, fn func(ctx context.Context) error) error
}
