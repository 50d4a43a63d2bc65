package archive

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pacer/pkg/repository"
	"github.com/m-mizutani/pacer/pkg/utils/logging"
)

// migrateBatchSize is the number of records written per upsert during a
// migration.
const migrateBatchSize = 100

// Migrate carries every record from src to dst unchanged: same id, same
// embedding, same metadata including the denormalized text. Nothing is
// re-embedded, so the destination answers queries identically to the
// source. The destination collection is rebuilt from scratch first.
func Migrate(ctx context.Context, src, dst repository.VectorStore) (int, error) {
	records, err := src.Dump(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to dump source collection")
	}

	if err := dst.Recreate(ctx); err != nil {
		return 0, goerr.Wrap(err, "failed to recreate destination collection")
	}

	for start := 0; start < len(records); start += migrateBatchSize {
		end := start + migrateBatchSize
		if end > len(records) {
			end = len(records)
		}
		if err := dst.Upsert(ctx, records[start:end]); err != nil {
			return 0, goerr.Wrap(err, "failed to write migration batch", goerr.V("batch_start", start))
		}
	}

	logging.From(ctx).Info("migration completed", "vectors", len(records))

	return len(records), nil
}
