// Package notify defines the outbound notification port. Delivery itself
// (email, SMS, push) is an external concern; adapters live under infra/notify.
package notify

import (
	"context"

	"github.com/ChrisCryptoBot/meddropdispatch-sub004/core/model"
)

// Notifier informs the other party about a dispatch decision. Calls are
// best-effort: a failure must never roll back the assignment that triggered
// the notification.
type Notifier interface {
	NotifyAssignment(ctx context.Context, load model.Load, driver model.Driver) error
	Close() error
}

// Nop discards all notifications.
type Nop struct{}

func (Nop) NotifyAssignment(context.Context, model.Load, model.Driver) error { return nil }
func (Nop) Close() error                                                     { return nil }
