// ABOUTME: Shared plumbing for domain services
// ABOUTME: Notifier hook into the sync engine and the ValidationError type
package services

import (
	"context"
	"fmt"
)

// Notifier receives the "collection changed" signal after every local
// mutation. The sync engine implements it; domain services own no sync logic
// beyond firing this hook.
type Notifier interface {
	NotifyCollectionChanged(ctx context.Context, name string) error
}

// NopNotifier is used when sync is disabled entirely.
type NopNotifier struct{}

func (NopNotifier) NotifyCollectionChanged(context.Context, string) error { return nil }

// ValidationError reports a domain-invariant violation. These are rejected
// before the mutating write, so they never reach the sync layer.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func validationErrorf(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}
