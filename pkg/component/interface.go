// Package component holds the external clients the API server connects to.
package component

import (
	"context"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/kart-io/logger"
)

// Client is the lifecycle every component client exposes.
type Client interface {
	Name() string
	Ping(ctx context.Context) error
	Close() error
}

// ConnectDelay is the pause before the second connect attempt. It doubles
// after every failure.
var ConnectDelay = 500 * time.Millisecond

// Connect calls dial until it succeeds, attempts run out or ctx is done, and
// returns the last error.
func Connect(ctx context.Context, name string, attempts uint, dial func(context.Context) error) error {
	return retry.Do(
		func() error { return dial(ctx) },
		retry.Context(ctx),
		retry.Attempts(max(attempts, 1)),
		retry.Delay(ConnectDelay),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			logger.Warnw("Component connect failed, retrying", "component", name, "attempt", n+1, "error", err.Error())
		}),
	)
}
