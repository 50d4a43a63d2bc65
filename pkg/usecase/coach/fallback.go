package coach

import (
	"context"
	_ "embed"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pacer/pkg/adapter"
	"github.com/m-mizutani/pacer/pkg/model"
	"google.golang.org/genai"
)

//go:embed prompt/fallback.md
var fallbackPromptRaw string

// fallback produces a polite don't-know reply without consulting any
// knowledge source.
type fallback struct {
	gemini adapter.Gemini
}

func (r *fallback) Respond(ctx context.Context, history []*model.Turn, message string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(fallbackPromptRaw, ""),
		Temperature:       genai.Ptr(float32(1.0)),
		MaxOutputTokens:   800,
	}

	resp, err := r.gemini.GenerateContent(ctx, recentContents(history), config)
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate fallback reply")
	}

	reply := responseText(resp)
	if reply == "" {
		return "", goerr.New("empty fallback reply")
	}
	return reply, nil
}
