package coach

import (
	"context"

	"github.com/m-mizutani/pacer/pkg/model"
	"google.golang.org/genai"
)

// NoInformationReply is the fixed sentence the archive responder uses when
// the retrieved context does not cover the question.
const NoInformationReply = "I'm sorry, the group chat archive has no information about that."

// ApologyReply is the generic user-facing reply for a provider failure at
// request time. The request boundary maps any responder error to it.
const ApologyReply = "I apologize, but I encountered an error processing your request. Please try again."

// historyWindow limits how many trailing turns a responder feeds to the
// completion model. Classification always sees the full history; reply
// generation only needs the recent exchange.
const historyWindow = 10

// responder is one reply strategy. Exactly one responder runs per turn.
type responder interface {
	Respond(ctx context.Context, history []*model.Turn, message string) (string, error)
}

// recentContents renders the trailing turns of a history as genai contents.
func recentContents(history []*model.Turn) []*genai.Content {
	if len(history) > historyWindow {
		history = history[len(history)-historyWindow:]
	}
	return contentsFromHistory(history)
}
