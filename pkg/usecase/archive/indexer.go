package archive

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pacer/pkg/adapter"
	"github.com/m-mizutani/pacer/pkg/model"
	"github.com/m-mizutani/pacer/pkg/repository"
	"github.com/m-mizutani/pacer/pkg/utils/logging"
)

// embedBatchSize is the number of chunks embedded per provider request.
const embedBatchSize = 100

// Indexer converts chunks into vectors and persists them. A build replaces
// the whole collection; it never merges with prior state.
type Indexer struct {
	gemini adapter.Gemini
	store  repository.VectorStore
}

func NewIndexer(gemini adapter.Gemini, store repository.VectorStore) *Indexer {
	return &Indexer{
		gemini: gemini,
		store:  store,
	}
}

// BuildResult reports how a build went. Skipped counts chunks lost to
// failed embedding batches.
type BuildResult struct {
	Indexed int
	Skipped int
}

// Build recreates the collection and writes one record per chunk. A failed
// embedding batch is logged and skipped rather than retried: committed
// batches stay, and a bad export cannot stall the rebuild forever.
func (x *Indexer) Build(ctx context.Context, chunks []*model.Chunk) (*BuildResult, error) {
	logger := logging.From(ctx)

	if err := x.store.Recreate(ctx); err != nil {
		return nil, goerr.Wrap(err, "failed to recreate collection")
	}

	result := &BuildResult{}

	for start := 0; start < len(chunks); start += embedBatchSize {
		end := start + embedBatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[start:end]

		texts := make([]string, len(batch))
		for i, chunk := range batch {
			texts[i] = chunk.Text
		}

		vectors, err := x.gemini.EmbedBatch(ctx, texts)
		if err != nil {
			logger.Warn("skipping batch, embedding failed",
				"batch_start", start, "batch_size", len(batch), "error", err)
			result.Skipped += len(batch)
			continue
		}

		records := make([]*repository.Record, len(batch))
		for i, chunk := range batch {
			// Absolute position keeps ids stable across batches.
			records[i] = &repository.Record{
				ID:        fmt.Sprintf("chunk_%d", start+i),
				Embedding: vectors[i],
				Metadata: map[string]any{
					repository.MetaStartTimestamp: chunk.Metadata.StartTimestamp,
					repository.MetaEndTimestamp:   chunk.Metadata.EndTimestamp,
					repository.MetaMessageCount:   chunk.Metadata.MessageCount,
					repository.MetaSenders:        chunk.Metadata.Senders,
					repository.MetaText:           chunk.Text,
				},
			}
		}

		if err := x.store.Upsert(ctx, records); err != nil {
			logger.Warn("skipping batch, upsert failed",
				"batch_start", start, "batch_size", len(batch), "error", err)
			result.Skipped += len(batch)
			continue
		}

		result.Indexed += len(batch)
	}

	logger.Info("archive build completed",
		"chunks", len(chunks), "indexed", result.Indexed, "skipped", result.Skipped)

	return result, nil
}
