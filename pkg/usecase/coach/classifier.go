package coach

import (
	"context"
	_ "embed"
	"encoding/json"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pacer/pkg/adapter"
	"github.com/m-mizutani/pacer/pkg/model"
	"google.golang.org/genai"
)

//go:embed prompt/intent.md
var intentPromptRaw string

// Classifier extracts an IntentSignal from a conversation. The full history
// is sent every turn and the signal is re-derived from scratch; there is no
// incremental intent state to go stale.
type Classifier struct {
	gemini adapter.Gemini
}

func NewClassifier(gemini adapter.Gemini) *Classifier {
	return &Classifier{gemini: gemini}
}

func (c *Classifier) Classify(ctx context.Context, history []*model.Turn) (*model.IntentSignal, error) {
	contents := contentsFromHistory(history)
	if len(contents) == 0 {
		return &model.IntentSignal{}, nil
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(intentPromptRaw, ""),
		ResponseMIMEType:  "application/json",
		ResponseSchema: &genai.Schema{
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"training_goal": {
					Type:        genai.TypeString,
					Description: "User-stated training goal or question, empty when absent",
				},
				"event_info": {
					Type:        genai.TypeString,
					Description: "Name of the running event asked about, empty when absent",
				},
			},
			Required: []string{"training_goal", "event_info"},
		},
	}

	resp, err := c.gemini.GenerateContent(ctx, contents, config)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to classify intent")
	}

	text := responseText(resp)
	if text == "" {
		return nil, goerr.New("empty classifier response")
	}

	var signal model.IntentSignal
	if err := json.Unmarshal([]byte(text), &signal); err != nil {
		return nil, goerr.Wrap(err, "failed to parse intent signal", goerr.V("response", text))
	}

	return &signal, nil
}

// contentsFromHistory converts session turns to genai contents.
func contentsFromHistory(history []*model.Turn) []*genai.Content {
	contents := make([]*genai.Content, 0, len(history))
	for _, turn := range history {
		role := genai.Role(genai.RoleUser)
		if turn.Role == model.RoleAssistant {
			role = genai.RoleModel
		}
		contents = append(contents, genai.NewContentFromText(turn.Content, role))
	}
	return contents
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	text := ""
	for _, part := range resp.Candidates[0].Content.Parts {
		text += part.Text
	}
	return text
}
