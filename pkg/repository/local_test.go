package repository_test

import (
	"context"
	"errors"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/pacer/pkg/repository"
)

func record(id string, embedding []float32, text string) *repository.Record {
	return &repository.Record{
		ID:        id,
		Embedding: embedding,
		Metadata: map[string]any{
			repository.MetaText: text,
		},
	}
}

func TestLocalMissingCollection(t *testing.T) {
	ctx := context.Background()
	store := repository.NewLocal(t.TempDir(), "nothing_here")

	_, err := store.Query(ctx, []float32{1, 0}, 5)
	gt.Error(t, err)
	gt.True(t, errors.Is(err, repository.ErrIndexNotFound))

	// Stats tolerates the missing file and reports zero.
	stats, err := store.Stats(ctx)
	gt.NoError(t, err)
	gt.Equal(t, stats.Count, 0)
}

func TestLocalQueryOrdering(t *testing.T) {
	ctx := context.Background()
	store := repository.NewLocal(t.TempDir(), "test_chat")
	gt.NoError(t, store.Recreate(ctx))
	gt.NoError(t, store.Upsert(ctx, []*repository.Record{
		record("chunk_0", []float32{1, 0}, "exact"),
		record("chunk_1", []float32{0, 1}, "orthogonal"),
		record("chunk_2", []float32{1, 1}, "diagonal"),
	}))

	matches, err := store.Query(ctx, []float32{1, 0}, 3)
	gt.NoError(t, err)
	gt.A(t, matches).Length(3)
	gt.Equal(t, matches[0].Record.ID, "chunk_0")
	gt.Equal(t, matches[1].Record.ID, "chunk_2")
	gt.Equal(t, matches[2].Record.ID, "chunk_1")
	gt.True(t, matches[0].Score > matches[1].Score)
}

func TestLocalQueryTieBreaksByID(t *testing.T) {
	ctx := context.Background()
	store := repository.NewLocal(t.TempDir(), "test_chat")
	gt.NoError(t, store.Recreate(ctx))
	gt.NoError(t, store.Upsert(ctx, []*repository.Record{
		record("chunk_2", []float32{1, 0}, "b"),
		record("chunk_0", []float32{1, 0}, "a"),
		record("chunk_1", []float32{1, 0}, "c"),
	}))

	matches, err := store.Query(ctx, []float32{2, 0}, 3)
	gt.NoError(t, err)
	gt.Equal(t, matches[0].Record.ID, "chunk_0")
	gt.Equal(t, matches[1].Record.ID, "chunk_1")
	gt.Equal(t, matches[2].Record.ID, "chunk_2")
}

func TestLocalUpsertOverwritesByID(t *testing.T) {
	ctx := context.Background()
	store := repository.NewLocal(t.TempDir(), "test_chat")
	gt.NoError(t, store.Recreate(ctx))
	gt.NoError(t, store.Upsert(ctx, []*repository.Record{
		record("chunk_0", []float32{1, 0}, "old"),
	}))
	gt.NoError(t, store.Upsert(ctx, []*repository.Record{
		record("chunk_0", []float32{0, 1}, "new"),
	}))

	records, err := store.Dump(ctx)
	gt.NoError(t, err)
	gt.A(t, records).Length(1)
	gt.Equal(t, records[0].Text(), "new")
}

func TestLocalPersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	first := repository.NewLocal(dir, "test_chat")
	gt.NoError(t, first.Recreate(ctx))
	gt.NoError(t, first.Upsert(ctx, []*repository.Record{
		record("chunk_0", []float32{1, 0}, "persisted"),
	}))

	second := repository.NewLocal(dir, "test_chat")
	records, err := second.Dump(ctx)
	gt.NoError(t, err)
	gt.A(t, records).Length(1)
	gt.Equal(t, records[0].Text(), "persisted")
}

func TestLocalRecreateDropsRecords(t *testing.T) {
	ctx := context.Background()
	store := repository.NewLocal(t.TempDir(), "test_chat")
	gt.NoError(t, store.Recreate(ctx))
	gt.NoError(t, store.Upsert(ctx, []*repository.Record{
		record("chunk_0", []float32{1, 0}, "gone soon"),
	}))

	gt.NoError(t, store.Recreate(ctx))

	stats, err := store.Stats(ctx)
	gt.NoError(t, err)
	gt.Equal(t, stats.Count, 0)

	// The collection file now exists, so queries return empty, not missing.
	matches, err := store.Query(ctx, []float32{1, 0}, 5)
	gt.NoError(t, err)
	gt.A(t, matches).Length(0)
}
