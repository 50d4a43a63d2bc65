package coach_test

import (
	"context"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/pacer/pkg/model"
	"github.com/m-mizutani/pacer/pkg/usecase/coach"
)

func TestClassifyEmptyHistory(t *testing.T) {
	classifier := coach.NewClassifier(&mockGemini{})

	signal, err := classifier.Classify(context.Background(), nil)
	gt.NoError(t, err)
	gt.Equal(t, signal.Route(), model.RouteFallback)
}

func TestClassifyParsesSignal(t *testing.T) {
	gemini := &mockGemini{
		signal: &model.IntentSignal{TrainingGoal: "half marathon in October"},
	}
	classifier := coach.NewClassifier(gemini)

	history := []*model.Turn{
		{Role: model.RoleUser, Content: "I signed up for a half marathon in October", Timestamp: time.Now()},
	}
	signal, err := classifier.Classify(context.Background(), history)
	gt.NoError(t, err)
	gt.Equal(t, signal.TrainingGoal, "half marathon in October")
	gt.Equal(t, signal.Route(), model.RouteArchiveQA)
}
