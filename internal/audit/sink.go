// Package audit provides the fire-and-forget audit trail: a Sink
// interface, a RabbitMQ-backed publisher, and a background consumer
// that persists entries. A failed audit write is logged locally and
// never aborts the operation that produced it.
package audit

import (
	"context"

	"github.com/iliyamo/user-management/internal/model"
)

// Sink accepts audit entries. Log has no error return on purpose:
// implementations swallow and locally log their own failures, so a
// caller cannot accidentally couple a mutation to the audit trail.
type Sink interface {
	Log(ctx context.Context, e model.AuditEntry)
}

// NopSink discards every entry. Used in tests and when no broker is
// configured.
type NopSink struct{}

func (NopSink) Log(context.Context, model.AuditEntry) {}
