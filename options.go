// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package greenrt

import "errors"

var errStackSizeNotPositive = errors.New("stack size must be positive")

// runtimeOptions holds configuration accumulated by New's variadic
// RuntimeOption arguments.
type runtimeOptions struct {
	metricsEnabled bool
	stackSize      int
}

// RuntimeOption configures a Runtime at construction time.
type RuntimeOption interface {
	applyRuntime(*runtimeOptions) error
}

type runtimeOptionFunc func(*runtimeOptions) error

func (f runtimeOptionFunc) applyRuntime(opts *runtimeOptions) error { return f(opts) }

// WithMetrics enables scheduling-latency, queue-depth, and context-switch
// throughput collection on the Runtime. Once enabled, Runtime.Metrics
// returns a non-nil snapshot; left disabled (the default), Park incurs no
// extra bookkeeping at all.
func WithMetrics(enabled bool) RuntimeOption {
	return runtimeOptionFunc(func(opts *runtimeOptions) error {
		opts.metricsEnabled = enabled
		return nil
	})
}

// WithDefaultStackSize overrides the usable stack size (in bytes) given
// to a green thread spawned without an explicit Builder.StackSize call.
func WithDefaultStackSize(n int) RuntimeOption {
	return runtimeOptionFunc(func(opts *runtimeOptions) error {
		if n <= 0 {
			return &AllocationError{Cause: errStackSizeNotPositive}
		}
		opts.stackSize = n
		return nil
	})
}

func resolveRuntimeOptions(opts []RuntimeOption) (*runtimeOptions, error) {
	cfg := &runtimeOptions{stackSize: defaultStackSize}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		if err := opt.applyRuntime(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
