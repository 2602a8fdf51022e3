package service

import (
	"math/rand"
	"time"
)

// retrySchedule maps an attempt number to the delay before the next try.
// Rate-limited attempts back off exponentially with sub-second jitter; other
// failures wait a fixed short delay. Kept as a standalone value so it can be
// exercised with a deterministic jitter source in tests.
type retrySchedule struct {
	base   time.Duration
	jitter func() time.Duration
}

func defaultRetrySchedule() retrySchedule {
	return retrySchedule{
		base: time.Second,
		jitter: func() time.Duration {
			return time.Duration(rand.Int63n(int64(time.Second)))
		},
	}
}

func (r retrySchedule) delay(attempt int, rateLimited bool) time.Duration {
	if rateLimited {
		return r.base*(1<<attempt) + r.jitter()
	}
	return r.base / 2
}
