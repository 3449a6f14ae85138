// Package audit journals finalized transaction calculations for
// after-the-fact reconciliation. Quotes are enqueued from the API
// process and persisted by the worker, so a slow journal write never
// delays a checkout.
package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/kirakosyanara/gropos/internal/checkout"
	"github.com/kirakosyanara/gropos/internal/obs"
)

// TaskQuoteJournal is the asynq task type for journal entries.
const TaskQuoteJournal = "quote:journal"

// QueueJournal is the asynq queue journal tasks are routed to.
const QueueJournal = "journal"

// Entry is one journal record. The transaction payload is stored
// verbatim, price sources and floor outcomes included.
type Entry struct {
	QuoteID     uuid.UUID                       `json:"quoteId"`
	CreatedAt   time.Time                       `json:"createdAt"`
	Transaction checkout.TransactionCalculation `json:"transaction"`
}

// Enqueuer publishes journal tasks to asynq.
type Enqueuer struct {
	Client *asynq.Client
	Logger zerolog.Logger
}

// Enqueue submits a journal entry for the given aggregate. Errors are
// reported to the caller but are safe to ignore at the request path;
// the journal is an audit aid, not part of the money math.
func (e *Enqueuer) Enqueue(ctx context.Context, tc checkout.TransactionCalculation) error {
	if e == nil || e.Client == nil {
		return nil
	}
	entry := Entry{
		QuoteID:     uuid.New(),
		CreatedAt:   time.Now().UTC(),
		Transaction: tc,
	}
	payload, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}
	task := asynq.NewTask(TaskQuoteJournal, payload)
	if _, err := e.Client.EnqueueContext(ctx, task,
		asynq.Queue(QueueJournal),
		asynq.MaxRetry(5),
		asynq.Timeout(30*time.Second),
	); err != nil {
		if obs.JournalTotal != nil {
			obs.JournalTotal.WithLabelValues("enqueue_error").Inc()
		}
		return fmt.Errorf("enqueue journal entry: %w", err)
	}
	if obs.JournalTotal != nil {
		obs.JournalTotal.WithLabelValues("enqueued").Inc()
	}
	e.Logger.Debug().Str("quote_id", entry.QuoteID.String()).Msg("journal entry enqueued")
	return nil
}

// Writer persists journal entries from the worker process.
type Writer struct {
	Pool   *pgxpool.Pool
	Logger zerolog.Logger
}

// HandleQuoteJournal is the asynq handler for TaskQuoteJournal.
// Inserts are keyed by quote id, so redelivery is harmless.
func (w *Writer) HandleQuoteJournal(ctx context.Context, t *asynq.Task) error {
	if w == nil {
		return fmt.Errorf("journal writer not configured")
	}
	var entry Entry
	if err := json.Unmarshal(t.Payload(), &entry); err != nil {
		// A payload that never parses will never parse; do not retry.
		w.Logger.Error().Err(err).Msg("malformed journal payload")
		return fmt.Errorf("unmarshal journal entry: %v: %w", err, asynq.SkipRetry)
	}
	if w.Pool == nil {
		return fmt.Errorf("journal writer not configured")
	}
	payload, err := json.Marshal(entry.Transaction)
	if err != nil {
		return fmt.Errorf("marshal transaction: %v: %w", err, asynq.SkipRetry)
	}
	const insertSQL = `
INSERT INTO quote_journal (id, created_at, grand_total, payload)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id) DO NOTHING`
	if _, err := w.Pool.Exec(ctx, insertSQL,
		entry.QuoteID, entry.CreatedAt, entry.Transaction.GrandTotal.StringFixed(2), payload,
	); err != nil {
		if obs.JournalTotal != nil {
			obs.JournalTotal.WithLabelValues("write_error").Inc()
		}
		return fmt.Errorf("insert journal entry: %w", err)
	}
	if obs.JournalTotal != nil {
		obs.JournalTotal.WithLabelValues("written").Inc()
	}
	w.Logger.Info().
		Str("quote_id", entry.QuoteID.String()).
		Str("grand_total", entry.Transaction.GrandTotal.StringFixed(2)).
		Msg("journal entry written")
	return nil
}
