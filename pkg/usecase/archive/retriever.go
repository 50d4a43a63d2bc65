package archive

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pacer/pkg/adapter"
	"github.com/m-mizutani/pacer/pkg/repository"
)

// DefaultTopK is the number of chunks returned for a query.
const DefaultTopK = 5

// Retriever answers similarity queries over the archive. The query is
// embedded with the same model used at index time; keeping the two in sync
// is an administrative duty, not something this component detects.
type Retriever struct {
	gemini adapter.Gemini
	store  repository.VectorStore
}

func NewRetriever(gemini adapter.Gemini, store repository.VectorStore) *Retriever {
	return &Retriever{
		gemini: gemini,
		store:  store,
	}
}

// Search returns up to topK chunk texts ordered by decreasing similarity.
// No matches is an empty slice, not an error. Callers that need a relevance
// floor apply it themselves.
func (r *Retriever) Search(ctx context.Context, query string, topK int) ([]string, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	vector, err := r.gemini.EmbedText(ctx, query)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to embed query")
	}

	matches, err := r.store.Query(ctx, vector, topK)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to query archive")
	}

	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		texts = append(texts, m.Record.Text())
	}

	return texts, nil
}
