// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package asyncsync

// queueOptions holds configuration for NewWaiterQueue.
type queueOptions struct {
	metricsEnabled bool
}

// QueueOption configures a WaiterQueue.
type QueueOption interface {
	applyQueue(*queueOptions) error
}

type queueOptionImpl struct {
	applyQueueFunc func(*queueOptions) error
}

func (o *queueOptionImpl) applyQueue(opts *queueOptions) error {
	return o.applyQueueFunc(opts)
}

// WithMetrics enables latency/depth/rate metrics collection on a
// WaiterQueue (spec.md §4.1's waiter_count diagnostics, extended to
// latency and wake-rate). Off by default: it adds a mutex-protected record
// on every park and wake.
func WithMetrics(enabled bool) QueueOption {
	return &queueOptionImpl{func(opts *queueOptions) error {
		opts.metricsEnabled = enabled
		return nil
	}}
}

func resolveQueueOptions(opts []QueueOption) *queueOptions {
	cfg := &queueOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		_ = opt.applyQueue(cfg)
	}
	return cfg
}

// semaphoreOptions holds configuration for NewSemaphore.
type semaphoreOptions struct {
	metricsEnabled bool
}

// SemaphoreOption configures a Semaphore.
type SemaphoreOption interface {
	applySemaphore(*semaphoreOptions) error
}

type semaphoreOptionImpl struct {
	applySemaphoreFunc func(*semaphoreOptions) error
}

func (o *semaphoreOptionImpl) applySemaphore(opts *semaphoreOptions) error {
	return o.applySemaphoreFunc(opts)
}

// WithSemaphoreMetrics enables metrics on the semaphore's underlying
// WaiterQueue. See WithMetrics.
func WithSemaphoreMetrics(enabled bool) SemaphoreOption {
	return &semaphoreOptionImpl{func(opts *semaphoreOptions) error {
		opts.metricsEnabled = enabled
		return nil
	}}
}

func resolveSemaphoreOptions(opts []SemaphoreOption) *semaphoreOptions {
	cfg := &semaphoreOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		_ = opt.applySemaphore(cfg)
	}
	return cfg
}

// condvarOptions holds configuration for NewCondvar.
type condvarOptions struct {
	metricsEnabled bool
}

// CondvarOption configures a Condvar.
type CondvarOption interface {
	applyCondvar(*condvarOptions) error
}

type condvarOptionImpl struct {
	applyCondvarFunc func(*condvarOptions) error
}

func (o *condvarOptionImpl) applyCondvar(opts *condvarOptions) error {
	return o.applyCondvarFunc(opts)
}

// WithCondvarMetrics enables metrics on the condvar's underlying
// WaiterQueue. See WithMetrics.
func WithCondvarMetrics(enabled bool) CondvarOption {
	return &condvarOptionImpl{func(opts *condvarOptions) error {
		opts.metricsEnabled = enabled
		return nil
	}}
}

func resolveCondvarOptions(opts []CondvarOption) *condvarOptions {
	cfg := &condvarOptions{}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		_ = opt.applyCondvar(cfg)
	}
	return cfg
}
