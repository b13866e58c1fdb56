// Package precheck verifies that the host can reach the network and the
// asset database before any collector runs.
package precheck

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"time"
)

// ErrUnreachable is returned when the network probe address cannot be dialed.
var ErrUnreachable = errors.New("network unreachable")

// Pinger is implemented by the persistence sink.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Checker dials Address over TCP and then pings the sink.
type Checker struct {
	Address string
	Timeout time.Duration
}

// Run performs both checks and returns the first failure.
func (c Checker) Run(ctx context.Context, sink Pinger) error {
	log := slog.Default().With("component", "precheck")

	start := time.Now()
	if err := c.dial(ctx); err != nil {
		return err
	}
	log.Debug("network reachable", "address", c.Address, "duration", time.Since(start))

	if sink == nil {
		return nil
	}
	pctx, cancel := context.WithTimeout(ctx, c.timeout())
	defer cancel()
	if err := sink.Ping(pctx); err != nil {
		return fmt.Errorf("database unreachable: %w", err)
	}
	log.Debug("database reachable")
	return nil
}

func (c Checker) dial(ctx context.Context) error {
	d := net.Dialer{Timeout: c.timeout()}
	conn, err := d.DialContext(ctx, "tcp", c.Address)
	if err != nil {
		return fmt.Errorf("%w: dial %s: %w", ErrUnreachable, c.Address, err)
	}
	conn.Close()
	return nil
}

func (c Checker) timeout() time.Duration {
	if c.Timeout <= 0 {
		return 3 * time.Second
	}
	return c.Timeout
}
