package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

const embeddingField = "embedding"

// Firestore stores one document per vector in a named collection and uses
// Firestore vector search for similarity queries.
type Firestore struct {
	client     *firestore.Client
	collection string
}

// NewFirestore creates a Firestore-backed vector store bound to the given
// collection name.
func NewFirestore(ctx context.Context, projectID, databaseID, collection string) (*Firestore, error) {
	client, err := firestore.NewClientWithDatabase(ctx, projectID, databaseID)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create firestore client")
	}

	return &Firestore{
		client:     client,
		collection: collection,
	}, nil
}

// Close releases the underlying client.
func (r *Firestore) Close() error {
	return r.client.Close()
}

func (r *Firestore) Recreate(ctx context.Context) error {
	// Firestore collections are implicit: deleting all documents is
	// equivalent to delete-and-create.
	return r.DeleteAll(ctx)
}

func (r *Firestore) Upsert(ctx context.Context, records []*Record) error {
	bw := r.client.BulkWriter(ctx)

	// The error returned at enqueue time only covers argument validation.
	// Server-side rejections arrive through the job results, so every job
	// must be checked after End.
	jobs := make([]*firestore.BulkWriterJob, 0, len(records))
	for _, rec := range records {
		doc := r.client.Collection(r.collection).Doc(rec.ID)
		data := map[string]any{
			embeddingField: firestore.Vector32(rec.Embedding),
		}
		for k, v := range rec.Metadata {
			data[k] = v
		}

		job, err := bw.Set(doc, data)
		if err != nil {
			return goerr.Wrap(err, "failed to enqueue vector write", goerr.V("id", rec.ID))
		}
		jobs = append(jobs, job)
	}

	bw.End()

	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			return goerr.Wrap(err, "failed to write vector", goerr.V("id", records[i].ID))
		}
	}
	return nil
}

func (r *Firestore) Query(ctx context.Context, vector []float32, topK int) ([]*Match, error) {
	vq := r.client.Collection(r.collection).FindNearest(
		embeddingField,
		firestore.Vector32(vector),
		topK,
		firestore.DistanceMeasureCosine,
		&firestore.FindNearestOptions{
			DistanceResultField: "vector_distance",
		},
	)

	iter := vq.Documents(ctx)
	defer iter.Stop()

	var matches []*Match
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			if status.Code(err) == codes.NotFound {
				return nil, goerr.Wrap(ErrIndexNotFound, "collection does not exist", goerr.V("collection", r.collection))
			}
			return nil, goerr.Wrap(err, "failed to query vectors")
		}

		rec, distance := recordFromDoc(doc)
		matches = append(matches, &Match{
			Record: rec,
			// Firestore reports cosine distance, lower is closer.
			Score: 1 - distance,
		})
	}

	if len(matches) == 0 {
		// Distinguish an empty collection from one that was never built.
		stats, err := r.Stats(ctx)
		if err != nil {
			return nil, err
		}
		if stats.Count == 0 {
			return nil, goerr.Wrap(ErrIndexNotFound, "collection is empty", goerr.V("collection", r.collection))
		}
	}

	return matches, nil
}

func (r *Firestore) DeleteAll(ctx context.Context) error {
	iter := r.client.Collection(r.collection).Select().Documents(ctx)
	defer iter.Stop()

	bw := r.client.BulkWriter(ctx)
	var jobs []*firestore.BulkWriterJob
	var ids []string
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return goerr.Wrap(err, "failed to list vectors for deletion")
		}
		job, err := bw.Delete(doc.Ref)
		if err != nil {
			return goerr.Wrap(err, "failed to enqueue vector deletion", goerr.V("id", doc.Ref.ID))
		}
		jobs = append(jobs, job)
		ids = append(ids, doc.Ref.ID)
	}

	bw.End()

	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			return goerr.Wrap(err, "failed to delete vector", goerr.V("id", ids[i]))
		}
	}
	return nil
}

func (r *Firestore) Stats(ctx context.Context) (*Stats, error) {
	// An aggregation query keeps the count a single server-side read; it
	// runs on every health check and on each empty query result.
	query := r.client.Collection(r.collection).NewAggregationQuery().WithCount("count")
	results, err := query.Get(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to count vectors")
	}

	value, ok := results["count"].(*firestorepb.Value)
	if !ok {
		return nil, goerr.New("unexpected aggregation result", goerr.V("results", results))
	}

	return &Stats{Count: int(value.GetIntegerValue())}, nil
}

func (r *Firestore) Dump(ctx context.Context) ([]*Record, error) {
	iter := r.client.Collection(r.collection).Documents(ctx)
	defer iter.Stop()

	var records []*Record
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to dump vectors")
		}

		rec, _ := recordFromDoc(doc)
		records = append(records, rec)
	}

	return records, nil
}

func recordFromDoc(doc *firestore.DocumentSnapshot) (rec *Record, distance float64) {
	data := doc.Data()

	rec = &Record{
		ID:       doc.Ref.ID,
		Metadata: map[string]any{},
	}

	for k, v := range data {
		switch k {
		case embeddingField:
			if vec, ok := v.(firestore.Vector32); ok {
				rec.Embedding = []float32(vec)
			}
		case "vector_distance":
			if d, ok := v.(float64); ok {
				distance = d
			}
		default:
			// Firestore round-trips integers as int64; normalize so
			// metadata compares equal across backends.
			if n, ok := v.(int64); ok {
				rec.Metadata[k] = int(n)
			} else {
				rec.Metadata[k] = v
			}
		}
	}

	return rec, distance
}
