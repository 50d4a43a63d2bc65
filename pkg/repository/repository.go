package repository

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
)

// ErrIndexNotFound is returned when a query targets a collection that has
// never been built. Callers are expected to surface it as an administrative
// instruction, not as a user-facing error.
var ErrIndexNotFound = goerr.New("vector index not found")

// Metadata keys of a stored record. The chunk text is denormalized into the
// metadata so retrieval can return text directly without a second lookup.
// This key set and the "chunk_<position>" id scheme are a versioned schema:
// backends must carry all of them unchanged so a migration never re-embeds.
const (
	MetaStartTimestamp = "start_timestamp"
	MetaEndTimestamp   = "end_timestamp"
	MetaMessageCount   = "message_count"
	MetaSenders        = "senders"
	MetaText           = "text"
)

// Record is one stored vector with its metadata.
type Record struct {
	ID        string         `json:"id"`
	Embedding []float32      `json:"embedding"`
	Metadata  map[string]any `json:"metadata"`
}

// Text returns the denormalized chunk text from the record metadata.
func (r *Record) Text() string {
	if s, ok := r.Metadata[MetaText].(string); ok {
		return s
	}
	return ""
}

// Match is a single result of a similarity query. Score is cosine
// similarity, higher is more similar.
type Match struct {
	Record *Record
	Score  float64
}

// Stats reports the size of a collection.
type Stats struct {
	Count int
}

// VectorStore is the persistence interface for the chat archive. A store is
// bound to one named collection. Implementations must keep query ordering
// stable for an unchanged collection.
type VectorStore interface {
	// Recreate deletes any existing collection with the same name and
	// starts an empty one. Indexing runs replace prior state, never merge.
	Recreate(ctx context.Context) error

	// Upsert writes records into the collection.
	Upsert(ctx context.Context, records []*Record) error

	// Query returns up to topK records ordered by decreasing cosine
	// similarity to the given vector. An empty collection yields an empty
	// result; a collection that was never built yields ErrIndexNotFound.
	Query(ctx context.Context, vector []float32, topK int) ([]*Match, error)

	// DeleteAll removes every record in the collection.
	DeleteAll(ctx context.Context) error

	// Stats returns the number of stored records.
	Stats(ctx context.Context) (*Stats, error)

	// Dump returns every record in the collection, used for migration
	// between backends. The carry is byte-for-byte: id, embedding and
	// metadata are copied unchanged.
	Dump(ctx context.Context) ([]*Record, error)
}
