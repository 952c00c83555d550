package river

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/riverqueue/river"

	"github.com/neomorfeo/leadrecon/internal/domain"
)

// Compile-time check: Notifier implements domain.Notifier.
var _ domain.Notifier = (*Notifier)(nil)

// NotificationJobArgs carries an aggregate notification to the worker.
// River serializes this as JSON into its job queue table.
type NotificationJobArgs struct {
	NotificationKind string `json:"kind"`
	Count            int    `json:"count"`
	Total            int    `json:"total"`
	Message          string `json:"message"`
}

// Kind returns the unique job type identifier used by River's job routing.
func (NotificationJobArgs) Kind() string { return "notification.published" }

// Client is the River client type parameterized for SQLite (*sql.Tx).
type Client = river.Client[*sql.Tx]

// Notifier implements domain.Notifier by enqueuing River jobs, so delivery
// happens off the caller's path.
type Notifier struct {
	client *Client
}

// NewNotifier creates a notifier backed by the given River client.
func NewNotifier(client *Client) *Notifier {
	return &Notifier{client: client}
}

// Notify enqueues the notification.
func (n *Notifier) Notify(ctx context.Context, notification domain.Notification) error {
	_, err := n.client.Insert(ctx, NotificationJobArgs{
		NotificationKind: string(notification.Kind),
		Count:            notification.Count,
		Total:            notification.Total,
		Message:          notification.Message(),
	}, nil)
	if err != nil {
		return fmt.Errorf("enqueuing notification job: %w", err)
	}
	return nil
}
