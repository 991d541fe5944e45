// Package storage provides the durable key-value surface the store mirrors
// its state to.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/SigNoz/storefront-go-app/internal/metrics"
)

// ErrNotFound is returned by Get when the key holds no value
var ErrNotFound = errors.New("key not found")

// Storage is a string-keyed store of serialized values
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}

// Instrumented records metrics for every call to the wrapped Storage
type Instrumented struct {
	next    Storage
	backend string
	metrics *metrics.AppMetrics
}

// NewInstrumented wraps next, labelling its metrics with backend
func NewInstrumented(next Storage, backend string, m *metrics.AppMetrics) *Instrumented {
	return &Instrumented{next: next, backend: backend, metrics: m}
}

func (s *Instrumented) Get(ctx context.Context, key string) (string, error) {
	start := time.Now()
	value, err := s.next.Get(ctx, key)
	s.metrics.RecordStorageOp(ctx, s.backend, "GET", key, start, err == nil || errors.Is(err, ErrNotFound))
	return value, err
}

func (s *Instrumented) Set(ctx context.Context, key, value string) error {
	start := time.Now()
	err := s.next.Set(ctx, key, value)
	s.metrics.RecordStorageOp(ctx, s.backend, "SET", key, start, err == nil)
	return err
}

func (s *Instrumented) Remove(ctx context.Context, key string) error {
	start := time.Now()
	err := s.next.Remove(ctx, key)
	s.metrics.RecordStorageOp(ctx, s.backend, "REMOVE", key, start, err == nil)
	return err
}
