package model

// IntentSignal is the structured result of classifying a conversation.
// An empty string means the signal is absent. It is re-derived from the
// full history on every turn and never accumulated across turns.
type IntentSignal struct {
	TrainingGoal string `json:"training_goal"`
	EventInfo    string `json:"event_info"`
}

// Route identifies the responder that handles a turn.
type Route int

const (
	// RouteArchiveQA answers strictly from the indexed chat archive.
	RouteArchiveQA Route = iota

	// RouteEventLookup answers from a live web search, never the archive.
	RouteEventLookup

	// RouteFallback produces a polite don't-know reply.
	RouteFallback
)

func (r Route) String() string {
	switch r {
	case RouteArchiveQA:
		return "archive_qa"
	case RouteEventLookup:
		return "event_lookup"
	default:
		return "fallback"
	}
}

// Route maps the signal to exactly one responder. Training questions take
// precedence over event questions when both signals are present.
func (s *IntentSignal) Route() Route {
	switch {
	case s.TrainingGoal != "":
		return RouteArchiveQA
	case s.EventInfo != "":
		return RouteEventLookup
	default:
		return RouteFallback
	}
}
