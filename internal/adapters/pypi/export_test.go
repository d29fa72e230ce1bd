package pypi

import (
	"time"

	"github.com/cenkalti/backoff/v5"
)

// WithFastRetry makes retries immediate. This is exported for testing purposes only.
func (p *Preparer) WithFastRetry(maxTries uint) *Preparer {
	p.maxTries = maxTries
	p.backoff = func() backoff.BackOff {
		return backoff.NewConstantBackOff(time.Millisecond)
	}
	return p
}

// ParseEntryPoints is exported for testing purposes only.
func ParseEntryPoints(data []byte) []EntryPoint {
	var out []EntryPoint
	for _, ep := range parseEntryPoints(data) {
		out = append(out, EntryPoint{Name: ep.name, Module: ep.module, Attr: ep.attr})
	}
	return out
}

// EntryPoint mirrors entryPoint for tests.
type EntryPoint struct {
	Name   string
	Module string
	Attr   string
}

// PipSource is exported for testing purposes only.
var PipSource = pipSource
