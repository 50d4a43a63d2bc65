package archive

import (
	"fmt"
	"sort"
	"strings"

	"github.com/m-mizutani/pacer/pkg/model"
)

// ChunkMessages partitions messages into contiguous non-overlapping windows
// of chunkSize and renders each window as one retrievable text unit. The
// final window may hold fewer messages. Message order is never changed.
func ChunkMessages(messages []*model.ChatMessage, chunkSize int) []*model.Chunk {
	if chunkSize <= 0 {
		chunkSize = DefaultChunkSize
	}

	var chunks []*model.Chunk
	for i := 0; i < len(messages); i += chunkSize {
		end := i + chunkSize
		if end > len(messages) {
			end = len(messages)
		}
		chunks = append(chunks, buildChunk(messages[i:end]))
	}

	return chunks
}

func buildChunk(window []*model.ChatMessage) *model.Chunk {
	lines := make([]string, len(window))
	seen := map[string]bool{}
	var senders []string

	for i, msg := range window {
		lines[i] = fmt.Sprintf("[%s] %s: %s", msg.Timestamp, msg.Sender, msg.Text)
		if !seen[msg.Sender] {
			seen[msg.Sender] = true
			senders = append(senders, msg.Sender)
		}
	}

	// Sorted so the rendered set is deterministic regardless of who spoke
	// first.
	sort.Strings(senders)

	return &model.Chunk{
		Text: strings.Join(lines, "\n\n"),
		Metadata: model.ChunkMetadata{
			StartTimestamp: window[0].Timestamp,
			EndTimestamp:   window[len(window)-1].Timestamp,
			MessageCount:   len(window),
			Senders:        strings.Join(senders, ", "),
		},
	}
}
