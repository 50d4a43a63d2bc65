package repository

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/m-mizutani/goerr/v2"
)

// Local is a file-backed vector store. Each collection is a single JSON
// file under the data directory and similarity queries are an in-memory
// cosine scan. It serves offline index builds and acts as the source side
// of a migration to Firestore.
type Local struct {
	dir        string
	collection string

	mu      sync.Mutex
	records []*Record
	loaded  bool
}

// NewLocal creates a local vector store rooted at dir for the given
// collection name.
func NewLocal(dir, collection string) *Local {
	return &Local{
		dir:        dir,
		collection: collection,
	}
}

func (r *Local) path() string {
	return filepath.Join(r.dir, r.collection+".json")
}

// load reads the collection file once. Missing file means the index was
// never built.
func (r *Local) load() error {
	if r.loaded {
		return nil
	}

	data, err := os.ReadFile(r.path())
	if err != nil {
		if os.IsNotExist(err) {
			return goerr.Wrap(ErrIndexNotFound, "collection file does not exist", goerr.V("path", r.path()))
		}
		return goerr.Wrap(err, "failed to read collection file", goerr.V("path", r.path()))
	}

	var records []*Record
	if err := json.Unmarshal(data, &records); err != nil {
		return goerr.Wrap(err, "failed to unmarshal collection file", goerr.V("path", r.path()))
	}

	r.records = records
	r.loaded = true
	return nil
}

func (r *Local) save() error {
	if err := os.MkdirAll(r.dir, 0755); err != nil {
		return goerr.Wrap(err, "failed to create data directory", goerr.V("dir", r.dir))
	}

	data, err := json.Marshal(r.records)
	if err != nil {
		return goerr.Wrap(err, "failed to marshal records")
	}

	if err := os.WriteFile(r.path(), data, 0644); err != nil {
		return goerr.Wrap(err, "failed to write collection file", goerr.V("path", r.path()))
	}

	return nil
}

func (r *Local) Recreate(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = nil
	r.loaded = true
	return r.save()
}

func (r *Local) Upsert(ctx context.Context, records []*Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(); err != nil {
		// A missing file is fine here, the upsert creates it.
		if !errors.Is(err, ErrIndexNotFound) {
			return err
		}
		r.records = nil
		r.loaded = true
	}

	byID := make(map[string]int, len(r.records))
	for i, rec := range r.records {
		byID[rec.ID] = i
	}

	for _, rec := range records {
		if i, ok := byID[rec.ID]; ok {
			r.records[i] = rec
		} else {
			byID[rec.ID] = len(r.records)
			r.records = append(r.records, rec)
		}
	}

	return r.save()
}

func (r *Local) Query(ctx context.Context, vector []float32, topK int) ([]*Match, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(); err != nil {
		return nil, err
	}

	matches := make([]*Match, 0, len(r.records))
	for _, rec := range r.records {
		matches = append(matches, &Match{
			Record: rec,
			Score:  cosineSimilarity(vector, rec.Embedding),
		})
	}

	// ID is the tie breaker so repeated queries stay order-stable.
	sort.Slice(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Record.ID < matches[j].Record.ID
	})

	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (r *Local) DeleteAll(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.records = nil
	r.loaded = true
	return r.save()
}

func (r *Local) Stats(ctx context.Context) (*Stats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(); err != nil {
		if errors.Is(err, ErrIndexNotFound) {
			return &Stats{Count: 0}, nil
		}
		return nil, err
	}

	return &Stats{Count: len(r.records)}, nil
}

func (r *Local) Dump(ctx context.Context) ([]*Record, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.load(); err != nil {
		return nil, err
	}

	records := make([]*Record, len(r.records))
	copy(records, r.records)
	return records, nil
}

// cosineSimilarity calculates cosine similarity between two vectors
func cosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}

	var dotProduct, normA, normB float64
	for i := range a {
		dotProduct += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}

	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
