package coach

import (
	"context"

	"github.com/m-mizutani/pacer/pkg/adapter"
	"github.com/m-mizutani/pacer/pkg/model"
	"github.com/m-mizutani/pacer/pkg/usecase/archive"
	"github.com/m-mizutani/pacer/pkg/utils/logging"
)

// Coach runs the classify, route, respond pipeline for one chat turn.
// Requests run to completion before replying; the only suspension points
// are the network calls to the model and the vector store.
type Coach struct {
	classifier *Classifier
	sessions   *Store

	archiveQA   responder
	eventLookup responder
	fallback    responder
}

// NewInput contains the dependencies of a Coach.
type NewInput struct {
	Gemini    adapter.Gemini
	Retriever *archive.Retriever
	Sessions  *Store
}

func New(input NewInput) *Coach {
	return &Coach{
		classifier:  NewClassifier(input.Gemini),
		sessions:    input.Sessions,
		archiveQA:   &archiveQA{gemini: input.Gemini, retriever: input.Retriever},
		eventLookup: &eventLookup{gemini: input.Gemini},
		fallback:    &fallback{gemini: input.Gemini},
	}
}

// Sessions exposes the session store for transport-level introspection.
func (c *Coach) Sessions() *Store {
	return c.sessions
}

// HandleChat answers one user message. Expired sessions are swept first,
// then the turn is appended, intent is classified from the full history,
// and exactly one responder runs. Provider failures surface as a generic
// apology reply; they never escape the request boundary.
func (c *Coach) HandleChat(ctx context.Context, sessionID model.SessionID, message string) (string, model.SessionID, error) {
	logger := logging.From(ctx)

	c.sessions.Sweep()
	sessionID = c.sessions.GetOrCreate(sessionID)

	c.sessions.Append(sessionID, &model.Turn{
		Role:      model.RoleUser,
		Content:   message,
		Timestamp: c.sessions.Now(),
	})

	history := c.sessions.History(sessionID)

	reply := c.respond(ctx, history, message)

	c.sessions.Append(sessionID, &model.Turn{
		Role:      model.RoleAssistant,
		Content:   reply,
		Timestamp: c.sessions.Now(),
	})

	logger.Debug("handled chat turn", "session_id", sessionID, "history_len", len(history)+1)

	return reply, sessionID, nil
}

// respond classifies and dispatches to exactly one responder. Training
// questions outrank event questions when both signals are present.
func (c *Coach) respond(ctx context.Context, history []*model.Turn, message string) string {
	logger := logging.From(ctx)

	signal, err := c.classifier.Classify(ctx, history)
	if err != nil {
		logger.Error("intent classification failed", "error", err)
		return ApologyReply
	}

	var r responder
	switch signal.Route() {
	case model.RouteArchiveQA:
		r = c.archiveQA
	case model.RouteEventLookup:
		r = c.eventLookup
	case model.RouteFallback:
		r = c.fallback
	}

	logger.Info("routed chat turn", "route", signal.Route().String(),
		"training_goal", signal.TrainingGoal, "event_info", signal.EventInfo)

	reply, err := r.Respond(ctx, history, message)
	if err != nil {
		logger.Error("responder failed", "route", signal.Route().String(), "error", err)
		return ApologyReply
	}
	return reply
}

// HandleReset clears a session's history while keeping its id valid.
func (c *Coach) HandleReset(sessionID model.SessionID) {
	c.sessions.Reset(sessionID)
}
