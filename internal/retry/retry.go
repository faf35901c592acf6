//
// Tencent is pleased to support the open source community by making trpc-rageval-go available.
//
// Copyright (C) 2025 Tencent.  All rights reserved.
//
// trpc-rageval-go is licensed under the Apache License Version 2.0.
//
//

// Package retry provides a shared backoff policy for rate-limited external calls.
package retry

import (
	"context"
	"fmt"
	"strings"
	"time"

	"trpc.group/trpc-go/trpc-rageval-go/log"
)

// Default policy values.
const (
	DefaultMaxAttempts       = 3
	DefaultInitialBackoff    = 500 * time.Millisecond
	DefaultMaxBackoff        = 30 * time.Second
	DefaultBackoffMultiplier = 2.0
)

// Policy describes a bounded exponential backoff schedule. The zero value is
// not usable; construct it with NewPolicy.
type Policy struct {
	// MaxAttempts is the total number of attempts, including the first one.
	MaxAttempts int
	// InitialBackoff is the delay before the second attempt.
	InitialBackoff time.Duration
	// MaxBackoff caps the delay between attempts.
	MaxBackoff time.Duration
	// Multiplier grows the delay after each failed attempt.
	Multiplier float64
}

// NewPolicy returns a Policy with defaults applied to unset fields.
func NewPolicy(maxAttempts int, initialBackoff time.Duration) *Policy {
	p := &Policy{
		MaxAttempts:    maxAttempts,
		InitialBackoff: initialBackoff,
		MaxBackoff:     DefaultMaxBackoff,
		Multiplier:     DefaultBackoffMultiplier,
	}
	if p.MaxAttempts <= 0 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.InitialBackoff <= 0 {
		p.InitialBackoff = DefaultInitialBackoff
	}
	return p
}

// Do executes operation under the policy. Non-retryable errors return
// immediately; retryable errors are retried until the attempt budget or the
// context is exhausted.
func (p *Policy) Do(ctx context.Context, operationName string, operation func(ctx context.Context) error) error {
	return p.do(ctx, operationName, operation, IsRetryable)
}

// DoAll executes operation under the policy, treating every failure as
// retryable. Used where the caller cannot classify errors, such as model
// output that failed to parse.
func (p *Policy) DoAll(ctx context.Context, operationName string, operation func(ctx context.Context) error) error {
	return p.do(ctx, operationName, operation, func(error) bool { return true })
}

func (p *Policy) do(ctx context.Context, operationName string,
	operation func(ctx context.Context) error, retryable func(error) bool) error {
	var lastErr error
	backoff := p.InitialBackoff
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := operation(ctx)
		if err == nil {
			if attempt > 1 {
				log.Debugf("operation %s succeeded after %d attempts", operationName, attempt)
			}
			return nil
		}
		if !retryable(err) {
			log.Debugf("operation %s failed with non-retryable error: %v", operationName, err)
			return err
		}
		lastErr = err
		if attempt == p.MaxAttempts {
			break
		}
		log.Debugf("operation %s attempt %d failed, backing off %s: %v", operationName, attempt, backoff, err)
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(backoff):
		}
		backoff = time.Duration(float64(backoff) * p.Multiplier)
		if backoff > p.MaxBackoff {
			backoff = p.MaxBackoff
		}
	}
	return fmt.Errorf("operation %s failed after %d attempts: %w", operationName, p.MaxAttempts, lastErr)
}

// IsRetryable determines if an error is retryable based on its characteristics.
// It uses precise pattern matching to avoid false positives.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	errStr := strings.ToLower(err.Error())
	// Network connection errors.
	if strings.Contains(errStr, "connection refused") ||
		strings.Contains(errStr, "connection reset") ||
		strings.Contains(errStr, "connection timeout") ||
		strings.Contains(errStr, "connection lost") ||
		strings.Contains(errStr, "connection aborted") ||
		strings.Contains(errStr, "i/o timeout") ||
		strings.Contains(errStr, "read timeout") ||
		strings.Contains(errStr, "write timeout") ||
		strings.Contains(errStr, "dial timeout") ||
		strings.Contains(errStr, "rate limit") ||
		errStr == "eof" ||
		strings.HasSuffix(errStr, ": eof") {
		return true
	}
	if isHTTPStatusRetryable(errStr) {
		return true
	}
	// Default to non-retryable for unknown errors to avoid infinite retry loops.
	return false
}

// isHTTPStatusRetryable checks if an error contains a retryable HTTP status code.
// Uses precise patterns to avoid false positives (e.g., "port 5001" won't match "501").
func isHTTPStatusRetryable(errStr string) bool {
	// Retryable status codes: 408, 409, 429, 5xx.
	retryableCodes := []string{
		"408", "409", "429",
		"500", "501", "502", "503", "504", "505", "506", "507", "508", "509", "510", "511",
	}
	for _, code := range retryableCodes {
		if strings.Contains(errStr, "http "+code) ||
			strings.Contains(errStr, "status "+code) ||
			strings.Contains(errStr, "status: "+code) ||
			strings.Contains(errStr, "code "+code) ||
			strings.Contains(errStr, "code: "+code) ||
			strings.Contains(errStr, code+" ") {
			return true
		}
	}
	return false
}
