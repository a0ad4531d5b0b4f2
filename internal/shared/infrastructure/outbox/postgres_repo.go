package outbox

import (
	"context"
	"time"

	"github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/persistence"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a new PostgreSQL outbox repository.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

const postgresOutboxColumns = `id, event_id, aggregate_type, aggregate_key, event_type, routing_key,
	payload, metadata, created_at, published_at, retry_count, next_retry_at,
	last_error, dead_lettered_at, dead_letter_reason`

// Save stores a new outbox message, joining the context transaction when present.
func (r *PostgresRepository) Save(ctx context.Context, msg *Message) error {
	exec := persistence.Executor(ctx, r.pool)
	return exec.QueryRow(ctx,
		`INSERT INTO outbox_events (event_id, aggregate_type, aggregate_key, event_type, routing_key, payload, metadata, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 RETURNING id`,
		msg.EventID,
		msg.AggregateType,
		msg.AggregateKey,
		msg.EventType,
		msg.RoutingKey,
		[]byte(msg.Payload),
		[]byte(msg.Metadata),
		msg.CreatedAt.UTC(),
	).Scan(&msg.ID)
}

// SaveBatch stores multiple outbox messages atomically.
func (r *PostgresRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}

	if _, ok := persistence.TxInfoFromContext(ctx); ok {
		for _, msg := range msgs {
			if err := r.Save(ctx, msg); err != nil {
				return err
			}
		}
		return nil
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	txCtx := persistence.WithTx(ctx, tx, true)
	for _, msg := range msgs {
		if err := r.Save(txCtx, msg); err != nil {
			return err
		}
	}

	return tx.Commit(ctx)
}

// GetUnpublished retrieves unpublished messages due for delivery.
func (r *PostgresRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	exec := persistence.Executor(ctx, r.pool)
	rows, err := exec.Query(ctx,
		`SELECT `+postgresOutboxColumns+`
		 FROM outbox_events
		 WHERE published_at IS NULL
		   AND dead_lettered_at IS NULL
		   AND (next_retry_at IS NULL OR next_retry_at <= now())
		 ORDER BY created_at ASC, id ASC
		 LIMIT $1`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		msg, err := scanPostgresMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// MarkPublished marks a message as successfully published.
func (r *PostgresRepository) MarkPublished(ctx context.Context, id int64) error {
	exec := persistence.Executor(ctx, r.pool)
	_, err := exec.Exec(ctx,
		`UPDATE outbox_events SET published_at = now() WHERE id = $1`, id)
	return err
}

// MarkFailed records a publish failure with error message.
func (r *PostgresRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	exec := persistence.Executor(ctx, r.pool)
	_, err := exec.Exec(ctx,
		`UPDATE outbox_events
		 SET retry_count = retry_count + 1, last_error = $2, next_retry_at = $3
		 WHERE id = $1`,
		id, errMsg, nextRetryAt.UTC(),
	)
	return err
}

// MarkDead marks a message as dead-lettered.
func (r *PostgresRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	exec := persistence.Executor(ctx, r.pool)
	_, err := exec.Exec(ctx,
		`UPDATE outbox_events
		 SET dead_lettered_at = now(), dead_letter_reason = $2
		 WHERE id = $1`,
		id, reason,
	)
	return err
}

// DeleteOld removes successfully published messages older than the retention period.
func (r *PostgresRepository) DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error) {
	exec := persistence.Executor(ctx, r.pool)
	tag, err := exec.Exec(ctx,
		`DELETE FROM outbox_events
		 WHERE published_at IS NOT NULL AND published_at < now() - $1::interval`,
		olderThan.String(),
	)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func scanPostgresMessage(rows pgx.Rows) (*Message, error) {
	var (
		msg              Message
		payload          []byte
		metadata         []byte
		publishedAt      *time.Time
		nextRetryAt      *time.Time
		lastError        *string
		deadLetteredAt   *time.Time
		deadLetterReason *string
	)

	err := rows.Scan(
		&msg.ID, &msg.EventID, &msg.AggregateType, &msg.AggregateKey, &msg.EventType,
		&msg.RoutingKey, &payload, &metadata, &msg.CreatedAt, &publishedAt,
		&msg.RetryCount, &nextRetryAt, &lastError, &deadLetteredAt, &deadLetterReason,
	)
	if err != nil {
		return nil, err
	}

	msg.Payload = payload
	msg.Metadata = metadata
	msg.PublishedAt = publishedAt
	msg.NextRetryAt = nextRetryAt
	msg.LastError = lastError
	msg.DeadLetteredAt = deadLetteredAt
	msg.DeadLetterReason = deadLetterReason

	return &msg, nil
}
