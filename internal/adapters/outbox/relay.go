package outbox

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/AchilleasB/school-admin/school-service/internal/config"
	"github.com/AchilleasB/school-admin/school-service/internal/core/domain"
	"github.com/AchilleasB/school-admin/school-service/internal/core/ports"
	"github.com/lib/pq"
	"github.com/sony/gobreaker"
)

const (
	listenerMinReconnectInterval = 10 * time.Second
	listenerMaxReconnectInterval = time.Minute
	outboxChannelName            = "outbox_channel"

	eventProcessTimeout     = 30 * time.Second
	batchProcessTimeout     = 60 * time.Second
	periodicProcessInterval = 90 * time.Second

	healthCheckStaleThreshold = 5 * time.Minute

	maxEventsPerBatch = 100
)

// Metrics counts relay outcomes per event type.
type Metrics interface {
	Published(eventType string)
	Failed(eventType string)
}

// Relay listens for NOTIFY signals on outbox_channel and publishes pending
// student events. Rows are locked with SKIP LOCKED so several relays can run
// side by side.
type Relay struct {
	db            *sql.DB
	dbURL         string
	publisher     ports.EventPublisher
	metrics       Metrics
	dbCB          *gobreaker.CircuitBreaker
	logger        *slog.Logger
	lastProcessed atomic.Int64
	healthy       atomic.Bool
}

func NewRelay(db *sql.DB, dbURL string, publisher ports.EventPublisher, metrics Metrics, logger *slog.Logger) *Relay {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Relay{
		db:        db,
		dbURL:     dbURL,
		publisher: publisher,
		metrics:   metrics,
		dbCB:      config.NewCircuitBreaker("Relay-PostgreSQL", nil),
		logger:    logger.With("module", "adapters/outbox", "layer", "worker"),
	}
	r.touch()
	return r
}

func (r *Relay) touch() {
	r.lastProcessed.Store(time.Now().UnixNano())
	r.healthy.Store(true)
}

// IsHealthy is the liveness signal: false only while the listener reconnects.
func (r *Relay) IsHealthy() bool {
	return r.healthy.Load()
}

// IsReady also fails while the database breaker is open or nothing has been
// processed for healthCheckStaleThreshold.
func (r *Relay) IsReady() bool {
	if r.dbCB.State() == gobreaker.StateOpen {
		return false
	}
	if time.Since(time.Unix(0, r.lastProcessed.Load())) > healthCheckStaleThreshold {
		return false
	}
	return r.IsHealthy()
}

// Start blocks until ctx is cancelled.
func (r *Relay) Start(ctx context.Context) error {
	reportProblem := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			r.logger.Warn("outbox listener problem", "event", "outbox_listener_error", "error", err)
		}
	}

	listener := pq.NewListener(r.dbURL, listenerMinReconnectInterval, listenerMaxReconnectInterval, reportProblem)
	defer listener.Close()

	if err := listener.Listen(outboxChannelName); err != nil {
		return err
	}
	r.logger.Info("outbox relay listening", "event", "outbox_relay_listening", "channel", outboxChannelName)

	// Catch up on anything written while the relay was down.
	if err := r.processBacklog(ctx); err != nil {
		r.logger.Error("outbox backlog failed", "event", "outbox_backlog_failed", "error", err)
	}

	ticker := time.NewTicker(periodicProcessInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("outbox relay stopping", "event", "outbox_relay_stopping")
			return ctx.Err()

		case notification := <-listener.Notify:
			if notification == nil {
				// pq sends nil after a reconnect; the next sweep covers the gap.
				r.healthy.Store(false)
				continue
			}
			if err := r.processEventByID(ctx, notification.Extra); err != nil {
				r.logger.Error("outbox event failed",
					"event", "outbox_event_failed",
					"outbox_id", notification.Extra,
					"error", err,
				)
				continue
			}
			r.touch()

		case <-ticker.C:
			go listener.Ping()
			if err := r.processBacklog(ctx); err != nil {
				r.logger.Error("outbox sweep failed", "event", "outbox_sweep_failed", "error", err)
				continue
			}
			r.touch()
		}
	}
}

// dispatch publishes evt and then marks it processed. A failed publish
// leaves the row pending for the next sweep.
func (r *Relay) dispatch(ctx context.Context, evt domain.OutboxEvent, markProcessed func(ctx context.Context, id string) error) error {
	if err := r.publisher.Publish(ctx, evt); err != nil {
		r.count(evt.EventType, err)
		return err
	}
	if err := markProcessed(ctx, evt.ID); err != nil {
		return err
	}
	r.count(evt.EventType, nil)
	r.logger.Info("outbox event published",
		"event", "outbox_event_published",
		"outbox_id", evt.ID,
		"event_type", evt.EventType,
	)
	return nil
}

func (r *Relay) count(eventType string, err error) {
	if r.metrics == nil {
		return
	}
	if err != nil {
		r.metrics.Failed(eventType)
		return
	}
	r.metrics.Published(eventType)
}

func (r *Relay) processEventByID(ctx context.Context, eventID string) error {
	ctx, cancel := context.WithTimeout(ctx, eventProcessTimeout)
	defer cancel()

	return r.inTx(ctx, func(tx *sql.Tx) error {
		var evt domain.OutboxEvent
		err := tx.QueryRowContext(ctx, `
			SELECT id, event_type, payload, created_at
			FROM outbox_events
			WHERE id = $1 AND processed_at IS NULL
			FOR UPDATE SKIP LOCKED`, eventID).Scan(&evt.ID, &evt.EventType, &evt.Payload, &evt.CreatedAt)
		if errors.Is(err, sql.ErrNoRows) {
			// Already handled by a sweep or another relay.
			return nil
		}
		if err != nil {
			return err
		}
		return r.dispatch(ctx, evt, markProcessedIn(tx))
	})
}

func (r *Relay) processBacklog(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, batchProcessTimeout)
	defer cancel()

	return r.inTx(ctx, func(tx *sql.Tx) error {
		rows, err := tx.QueryContext(ctx, `
			SELECT id, event_type, payload, created_at
			FROM outbox_events
			WHERE processed_at IS NULL
			ORDER BY created_at
			LIMIT $1
			FOR UPDATE SKIP LOCKED`, maxEventsPerBatch)
		if err != nil {
			return err
		}

		var pending []domain.OutboxEvent
		for rows.Next() {
			var evt domain.OutboxEvent
			if err := rows.Scan(&evt.ID, &evt.EventType, &evt.Payload, &evt.CreatedAt); err != nil {
				rows.Close()
				return err
			}
			pending = append(pending, evt)
		}
		rows.Close()
		if err := rows.Err(); err != nil {
			return err
		}

		for _, evt := range pending {
			if err := r.dispatch(ctx, evt, markProcessedIn(tx)); err != nil {
				r.logger.Warn("outbox event left pending",
					"event", "outbox_event_pending",
					"outbox_id", evt.ID,
					"error", err,
				)
			}
		}
		return nil
	})
}

// inTx runs fn in a transaction guarded by the relay's database breaker.
func (r *Relay) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	_, err := r.dbCB.Execute(func() (interface{}, error) {
		tx, err := r.db.BeginTx(ctx, nil)
		if err != nil {
			return nil, err
		}
		defer tx.Rollback()

		if err := fn(tx); err != nil {
			return nil, err
		}
		return nil, tx.Commit()
	})
	return err
}

func markProcessedIn(tx *sql.Tx) func(ctx context.Context, id string) error {
	return func(ctx context.Context, id string) error {
		_, err := tx.ExecContext(ctx, `UPDATE outbox_events SET processed_at = NOW() WHERE id = $1`, id)
		return err
	}
}
