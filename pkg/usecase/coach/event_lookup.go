package coach

import (
	"context"
	_ "embed"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pacer/pkg/adapter"
	"github.com/m-mizutani/pacer/pkg/model"
)

//go:embed prompt/event.md
var eventPromptRaw string

// eventLookup answers event questions from a live web search. The archive
// is never consulted on this branch.
type eventLookup struct {
	gemini adapter.Gemini
}

func (r *eventLookup) Respond(ctx context.Context, history []*model.Turn, message string) (string, error) {
	reply, err := r.gemini.GenerateWithSearch(ctx, recentContents(history), eventPromptRaw)
	if err != nil {
		return "", goerr.Wrap(err, "failed to look up event")
	}
	if reply == "" {
		return "", goerr.New("empty event lookup answer")
	}
	return reply, nil
}
