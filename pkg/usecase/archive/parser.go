package archive

import (
	"bufio"
	"context"
	"io"
	"regexp"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pacer/pkg/model"
	"github.com/m-mizutani/pacer/pkg/utils/logging"
)

// Header line of an exported message: [timestamp] sender: text.
// The sender part cannot contain a colon.
var messageHeaderRe = regexp.MustCompile(`^\[([^\]]+)\]\s+([^:]+):\s+(.*)$`)

// Parser turns a raw chat export into ordered messages. Lines that do not
// match the header pattern are continuations of the previous message;
// system notices are filtered out by substring indicators checked against
// the final accumulated text.
type Parser struct {
	indicators []string
}

func NewParser(indicators []string) *Parser {
	return &Parser{indicators: indicators}
}

// Parse reads the whole export and returns the surviving messages in
// original order. A continuation line arriving before any header line has
// no message to attach to and is dropped.
func (p *Parser) Parse(ctx context.Context, r io.Reader) ([]*model.ChatMessage, error) {
	var messages []*model.ChatMessage
	var current *model.ChatMessage
	dropped := 0

	flush := func() {
		if current == nil {
			return
		}
		if !p.isSystemMessage(current.Text) {
			messages = append(messages, current)
		}
		current = nil
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if m := messageHeaderRe.FindStringSubmatch(line); m != nil {
			flush()
			current = &model.ChatMessage{
				Timestamp: strings.TrimSpace(m[1]),
				Sender:    strings.TrimSpace(m[2]),
				Text:      strings.TrimSpace(m[3]),
			}
			continue
		}

		if current == nil {
			// Orphan continuation, nothing to attach it to.
			dropped++
			continue
		}
		current.Text += " " + line
	}

	if err := scanner.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to read chat export")
	}

	flush()

	if dropped > 0 {
		logging.From(ctx).Warn("dropped orphan continuation lines", "count", dropped)
	}

	return messages, nil
}

// isSystemMessage reports whether the text carries any system-notice
// indicator. The check is a case-sensitive substring test against the final
// text, so an indicator arriving via a continuation line still filters the
// whole message.
func (p *Parser) isSystemMessage(text string) bool {
	for _, indicator := range p.indicators {
		if strings.Contains(text, indicator) {
			return true
		}
	}
	return false
}
