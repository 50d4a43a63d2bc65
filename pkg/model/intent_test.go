package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/pacer/pkg/model"
)

func TestIntentSignalRoute(t *testing.T) {
	testCases := []struct {
		name   string
		signal model.IntentSignal
		route  model.Route
	}{
		{
			name:   "training goal only",
			signal: model.IntentSignal{TrainingGoal: "marathon"},
			route:  model.RouteArchiveQA,
		},
		{
			name:   "event info only",
			signal: model.IntentSignal{EventInfo: "Boston Marathon"},
			route:  model.RouteEventLookup,
		},
		{
			name:   "both signals prefer the archive",
			signal: model.IntentSignal{TrainingGoal: "sub-3 marathon", EventInfo: "Boston Marathon"},
			route:  model.RouteArchiveQA,
		},
		{
			name:   "no signal",
			signal: model.IntentSignal{},
			route:  model.RouteFallback,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			gt.Equal(t, tc.signal.Route(), tc.route)
		})
	}
}

func TestRouteString(t *testing.T) {
	gt.Equal(t, model.RouteArchiveQA.String(), "archive_qa")
	gt.Equal(t, model.RouteEventLookup.String(), "event_lookup")
	gt.Equal(t, model.RouteFallback.String(), "fallback")
}
