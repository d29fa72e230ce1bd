package conda

import (
	"time"

	"github.com/cenkalti/backoff/v5"
)

// WithFastRetry makes retries immediate. This is exported for testing purposes only.
func (f *Fetcher) WithFastRetry(maxTries uint) *Fetcher {
	f.maxTries = maxTries
	f.backoff = func() backoff.BackOff {
		return backoff.NewConstantBackOff(time.Millisecond)
	}
	return f
}

// ReplacePrefix is exported for testing purposes only.
var ReplacePrefix = replacePrefix
