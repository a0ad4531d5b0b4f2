package outbox

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	"github.com/felixgeelhaar/vaxsched/internal/shared/infrastructure/persistence"
	"github.com/google/uuid"
)

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite outbox repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const sqliteOutboxColumns = `id, event_id, aggregate_type, aggregate_key, event_type, routing_key,
	payload, metadata, created_at, published_at, retry_count, next_retry_at,
	last_error, dead_lettered_at, dead_letter_reason`

// Save stores a new outbox message, joining the context transaction when present.
func (r *SQLiteRepository) Save(ctx context.Context, msg *Message) error {
	q := persistence.SQLiteExecutor(ctx, r.db)
	result, err := q.ExecContext(ctx,
		`INSERT INTO outbox_events (event_id, aggregate_type, aggregate_key, event_type, routing_key, payload, metadata, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		msg.EventID.String(),
		msg.AggregateType,
		msg.AggregateKey,
		msg.EventType,
		msg.RoutingKey,
		string(msg.Payload),
		nullString(string(msg.Metadata)),
		msg.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return err
	}
	id, err := result.LastInsertId()
	if err != nil {
		return err
	}
	msg.ID = id
	return nil
}

// SaveBatch stores multiple outbox messages atomically.
func (r *SQLiteRepository) SaveBatch(ctx context.Context, msgs []*Message) error {
	if len(msgs) == 0 {
		return nil
	}

	// Join the caller's transaction when one is active.
	if _, ok := persistence.SQLiteTxInfoFromContext(ctx); ok {
		for _, msg := range msgs {
			if err := r.Save(ctx, msg); err != nil {
				return err
			}
		}
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	txCtx := persistence.WithSQLiteTx(ctx, tx, true)
	for _, msg := range msgs {
		if err := r.Save(txCtx, msg); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetUnpublished retrieves unpublished messages due for delivery.
func (r *SQLiteRepository) GetUnpublished(ctx context.Context, limit int) ([]*Message, error) {
	q := persistence.SQLiteExecutor(ctx, r.db)
	now := time.Now().UTC().Format(time.RFC3339)
	rows, err := q.QueryContext(ctx,
		`SELECT `+sqliteOutboxColumns+`
		 FROM outbox_events
		 WHERE published_at IS NULL
		   AND dead_lettered_at IS NULL
		   AND (next_retry_at IS NULL OR next_retry_at <= ?)
		 ORDER BY created_at ASC, id ASC
		 LIMIT ?`,
		now, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*Message
	for rows.Next() {
		msg, err := scanSQLiteMessage(rows)
		if err != nil {
			return nil, err
		}
		messages = append(messages, msg)
	}
	return messages, rows.Err()
}

// MarkPublished marks a message as successfully published.
func (r *SQLiteRepository) MarkPublished(ctx context.Context, id int64) error {
	q := persistence.SQLiteExecutor(ctx, r.db)
	_, err := q.ExecContext(ctx,
		`UPDATE outbox_events SET published_at = ? WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), id,
	)
	return err
}

// MarkFailed records a publish failure with error message.
func (r *SQLiteRepository) MarkFailed(ctx context.Context, id int64, errMsg string, nextRetryAt time.Time) error {
	q := persistence.SQLiteExecutor(ctx, r.db)
	_, err := q.ExecContext(ctx,
		`UPDATE outbox_events
		 SET retry_count = retry_count + 1, last_error = ?, next_retry_at = ?
		 WHERE id = ?`,
		errMsg, nextRetryAt.UTC().Format(time.RFC3339), id,
	)
	return err
}

// MarkDead marks a message as dead-lettered.
func (r *SQLiteRepository) MarkDead(ctx context.Context, id int64, reason string) error {
	q := persistence.SQLiteExecutor(ctx, r.db)
	_, err := q.ExecContext(ctx,
		`UPDATE outbox_events
		 SET dead_lettered_at = ?, dead_letter_reason = ?
		 WHERE id = ?`,
		time.Now().UTC().Format(time.RFC3339), reason, id,
	)
	return err
}

// DeleteOld removes successfully published messages older than the retention period.
func (r *SQLiteRepository) DeleteOld(ctx context.Context, olderThan time.Duration) (int64, error) {
	q := persistence.SQLiteExecutor(ctx, r.db)
	cutoff := time.Now().UTC().Add(-olderThan).Format(time.RFC3339)
	result, err := q.ExecContext(ctx,
		`DELETE FROM outbox_events WHERE published_at IS NOT NULL AND published_at < ?`,
		cutoff,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

func scanSQLiteMessage(rows *sql.Rows) (*Message, error) {
	var (
		msg              Message
		eventID          string
		metadata         sql.NullString
		createdAt        string
		publishedAt      sql.NullString
		nextRetryAt      sql.NullString
		lastError        sql.NullString
		deadLetteredAt   sql.NullString
		deadLetterReason sql.NullString
		payload          string
	)

	err := rows.Scan(
		&msg.ID, &eventID, &msg.AggregateType, &msg.AggregateKey, &msg.EventType,
		&msg.RoutingKey, &payload, &metadata, &createdAt, &publishedAt,
		&msg.RetryCount, &nextRetryAt, &lastError, &deadLetteredAt, &deadLetterReason,
	)
	if err != nil {
		return nil, err
	}

	msg.EventID, _ = uuid.Parse(eventID)
	msg.Payload = json.RawMessage(payload)
	msg.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)

	if metadata.Valid {
		msg.Metadata = json.RawMessage(metadata.String)
	}
	if publishedAt.Valid {
		t, _ := time.Parse(time.RFC3339, publishedAt.String)
		msg.PublishedAt = &t
	}
	if nextRetryAt.Valid {
		t, _ := time.Parse(time.RFC3339, nextRetryAt.String)
		msg.NextRetryAt = &t
	}
	if lastError.Valid {
		msg.LastError = &lastError.String
	}
	if deadLetteredAt.Valid {
		t, _ := time.Parse(time.RFC3339, deadLetteredAt.String)
		msg.DeadLetteredAt = &t
	}
	if deadLetterReason.Valid {
		msg.DeadLetterReason = &deadLetterReason.String
	}

	return &msg, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
