package archive_test

import (
	"context"
	"strings"
	"testing"

	"github.com/m-mizutani/gt"
	"github.com/m-mizutani/pacer/pkg/model"
	"github.com/m-mizutani/pacer/pkg/usecase/archive"
)

func parse(t *testing.T, export string) []*model.ChatMessage {
	t.Helper()
	parser := archive.NewParser(archive.DefaultIndicators)
	messages, err := parser.Parse(context.Background(), strings.NewReader(export))
	gt.NoError(t, err)
	return messages
}

func TestParseBasicMessages(t *testing.T) {
	export := strings.Join([]string{
		"[1/1/24, 9:00:00 AM] Alice: Hello",
		"[1/1/24, 9:01:00 AM] Bob: Hi there",
	}, "\n")

	messages := parse(t, export)
	gt.A(t, messages).Length(2)
	gt.Equal(t, messages[0].Timestamp, "1/1/24, 9:00:00 AM")
	gt.Equal(t, messages[0].Sender, "Alice")
	gt.Equal(t, messages[0].Text, "Hello")
	gt.Equal(t, messages[1].Sender, "Bob")
}

func TestParseContinuationLines(t *testing.T) {
	export := strings.Join([]string{
		"[1/1/24, 9:00:00 AM] Alice: My long run plan:",
		"10km on Saturday",
		"15km on Sunday",
		"[1/1/24, 9:05:00 AM] Bob: Sounds good",
	}, "\n")

	messages := parse(t, export)
	gt.A(t, messages).Length(2)
	gt.Equal(t, messages[0].Text, "My long run plan: 10km on Saturday 15km on Sunday")
}

func TestParseSkipsBlankLines(t *testing.T) {
	export := "[1/1/24, 9:00:00 AM] Alice: Hello\n\n\n[1/1/24, 9:01:00 AM] Bob: Hi"

	messages := parse(t, export)
	gt.A(t, messages).Length(2)
	gt.Equal(t, messages[0].Text, "Hello")
}

func TestParseFiltersSystemMessages(t *testing.T) {
	export := strings.Join([]string{
		"[1/1/24, 9:00:00 AM] System: Alice added Bob",
		"[1/1/24, 9:01:00 AM] System: Messages and calls are end-to-end encrypted",
		"[1/1/24, 9:02:00 AM] Alice: Morning run anyone?",
	}, "\n")

	messages := parse(t, export)
	gt.A(t, messages).Length(1)
	gt.Equal(t, messages[0].Text, "Morning run anyone?")
}

func TestParseFiltersZeroWidthMarker(t *testing.T) {
	export := strings.Join([]string{
		"[1/1/24, 9:00:00 AM] System: ‎image omitted",
		"[1/1/24, 9:01:00 AM] Alice: Nice photo",
	}, "\n")

	messages := parse(t, export)
	gt.A(t, messages).Length(1)
	gt.Equal(t, messages[0].Sender, "Alice")
}

func TestParseFiltersMarkerArrivingViaContinuation(t *testing.T) {
	// The indicator shows up only in a continuation line; the filter runs
	// against the final accumulated text, so the whole message must go.
	export := strings.Join([]string{
		"[1/1/24, 9:00:00 AM] System: group update",
		"‎someone changed the group icon",
		"[1/1/24, 9:01:00 AM] Alice: Hello",
	}, "\n")

	messages := parse(t, export)
	gt.A(t, messages).Length(1)
	gt.Equal(t, messages[0].Sender, "Alice")
}

func TestParseDropsOrphanContinuation(t *testing.T) {
	export := strings.Join([]string{
		"just a stray line with no header",
		"[1/1/24, 9:00:00 AM] Alice: Hello",
	}, "\n")

	messages := parse(t, export)
	gt.A(t, messages).Length(1)
	gt.Equal(t, messages[0].Text, "Hello")
}

func TestParseFlushesLastOpenMessage(t *testing.T) {
	export := "[1/1/24, 9:00:00 AM] Alice: the last word"

	messages := parse(t, export)
	gt.A(t, messages).Length(1)
	gt.Equal(t, messages[0].Text, "the last word")
}

func TestParseSenderCannotContainColon(t *testing.T) {
	// "Alice: note" cannot be a sender, so the colon after "Alice" splits
	// the line and the rest is the message text.
	export := "[1/1/24, 9:00:00 AM] Alice: note: remember shoes"

	messages := parse(t, export)
	gt.A(t, messages).Length(1)
	gt.Equal(t, messages[0].Sender, "Alice")
	gt.Equal(t, messages[0].Text, "note: remember shoes")
}

func TestParseEmptyInput(t *testing.T) {
	messages := parse(t, "")
	gt.A(t, messages).Length(0)
}
