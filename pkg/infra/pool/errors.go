// Package pool wraps ants worker pools with task accounting.
package pool

import "errors"

var (
	// ErrPoolClosed is returned when submitting to a released pool.
	ErrPoolClosed = errors.New("pool is closed")

	// ErrPoolOverload is returned by a non-blocking pool that is full.
	ErrPoolOverload = errors.New("pool is overloaded")

	// ErrInvalidPoolConfig is returned for a nil or non-positive capacity config.
	ErrInvalidPoolConfig = errors.New("invalid pool config")
)
