package order

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"orderdesk/pkg/metrics"
	"orderdesk/pkg/otel"
)

// Appender records orders in a Store with a read-modify-write cycle guarded
// by the store's version token. A stale token fails the call; nothing is
// retried or merged.
type Appender struct {
	store Store
}

// NewAppender returns an Appender writing through store.
func NewAppender(store Store) *Appender {
	return &Appender{store: store}
}

// Append prepends a normalized order to the stored document.
func (a *Appender) Append(ctx context.Context, o Order) error {
	ctx, span := otel.AddSpan(ctx, "order.Append", attribute.String("order.id", o.Identifier()))
	defer span.End()

	snap, err := a.fetch(ctx)
	if err != nil {
		return err
	}

	doc, err := DecodeDocument(snap.Content)
	if err != nil {
		return &StoreError{Op: OpFetch, Err: err}
	}
	if err := doc.Prepend(o); err != nil {
		return err
	}
	content, err := EncodeDocument(doc)
	if err != nil {
		return err
	}

	return a.write(ctx, content, snap.Version, CommitMessage(o))
}

func (a *Appender) fetch(ctx context.Context) (Snapshot, error) {
	ctx, span := otel.AddSpan(ctx, "store.Fetch")
	defer span.End()

	start := time.Now()
	snap, err := a.store.Fetch(ctx)
	observe(OpFetch, start, err)
	if err != nil {
		span.RecordError(err)
		return Snapshot{}, asStoreError(OpFetch, err)
	}
	return snap, nil
}

func (a *Appender) write(ctx context.Context, content []byte, version, message string) error {
	ctx, span := otel.AddSpan(ctx, "store.Write", attribute.String("store.version", version))
	defer span.End()

	start := time.Now()
	err := a.store.Write(ctx, content, version, message)
	observe(OpWrite, start, err)
	if err != nil {
		span.RecordError(err)
		return asStoreError(OpWrite, err)
	}
	return nil
}

func observe(op string, start time.Time, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	metrics.StoreDuration.WithLabelValues(op, outcome).Observe(time.Since(start).Seconds())
}

