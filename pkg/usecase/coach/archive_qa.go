package coach

import (
	"bytes"
	"context"
	_ "embed"
	"errors"
	"strings"
	"text/template"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pacer/pkg/adapter"
	"github.com/m-mizutani/pacer/pkg/model"
	"github.com/m-mizutani/pacer/pkg/repository"
	"github.com/m-mizutani/pacer/pkg/usecase/archive"
	"google.golang.org/genai"
)

//go:embed prompt/archive_qa.md
var archiveQAPromptRaw string

var archiveQAPromptTmpl = template.Must(template.New("archive_qa").Parse(archiveQAPromptRaw))

// MissingIndexReply tells the operator how to build the archive. It is an
// administrative instruction, not a user error.
const MissingIndexReply = "The chat archive has not been indexed yet. " +
	"Ask the administrator to run `pacer index` with the exported chat file."

// archiveQA answers training questions strictly from retrieved archive
// chunks. It never blends outside knowledge into the reply.
type archiveQA struct {
	gemini    adapter.Gemini
	retriever *archive.Retriever
}

func (r *archiveQA) Respond(ctx context.Context, history []*model.Turn, message string) (string, error) {
	texts, err := r.retriever.Search(ctx, message, archive.DefaultTopK)
	if err != nil {
		if errors.Is(err, repository.ErrIndexNotFound) {
			return MissingIndexReply, nil
		}
		return "", goerr.Wrap(err, "failed to retrieve archive context")
	}

	contextStr := "No relevant context found."
	if len(texts) > 0 {
		contextStr = strings.Join(texts, "\n\n---\n\n")
	}

	var buf bytes.Buffer
	if err := archiveQAPromptTmpl.Execute(&buf, map[string]any{
		"Context":       contextStr,
		"NoInformation": NoInformationReply,
	}); err != nil {
		return "", goerr.Wrap(err, "failed to render archive prompt")
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(buf.String(), ""),
		Temperature:       genai.Ptr(float32(0.7)),
		MaxOutputTokens:   800,
	}

	resp, err := r.gemini.GenerateContent(ctx, recentContents(history), config)
	if err != nil {
		return "", goerr.Wrap(err, "failed to generate archive answer")
	}

	reply := responseText(resp)
	if reply == "" {
		return "", goerr.New("empty archive answer")
	}
	return reply, nil
}
