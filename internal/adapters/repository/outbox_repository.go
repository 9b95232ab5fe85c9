package repository

import (
	"context"

	"github.com/AchilleasB/school-admin/school-service/internal/core/domain"
)

// EnqueueEvent stores the event in the same transaction as the change it
// describes; the insert trigger notifies the relay.
func (t *sqlTx) EnqueueEvent(ctx context.Context, evt domain.OutboxEvent) error {
	_, err := t.tx.ExecContext(ctx,
		"INSERT INTO outbox_events (id, event_type, payload, created_at) VALUES ($1, $2, $3, $4)",
		evt.ID,
		evt.EventType,
		string(evt.Payload),
		evt.CreatedAt,
	)
	return classify(err)
}
