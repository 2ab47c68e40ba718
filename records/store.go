package records

import (
	"context"

	"github.com/interviewkit/retriever/core"
)

// Store is the read-only boundary to wherever source records live. The
// builder consumes the full record set on every rebuild; incremental
// change feeds are deliberately not part of this interface.
type Store interface {
	// ListSourceRecords returns every source record.
	ListSourceRecords(ctx context.Context) ([]core.SourceRecord, error)
}
