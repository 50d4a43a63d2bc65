package model

// ChatMessage is a single message parsed from a chat export. Timestamps are
// kept as the raw strings found in the export and are never reparsed into
// time.Time; the export locale decides their format.
type ChatMessage struct {
	Timestamp string
	Sender    string
	Text      string
}

// Chunk is a contiguous window of chat messages rendered as one retrievable
// text unit.
type Chunk struct {
	Text     string
	Metadata ChunkMetadata
}

// ChunkMetadata describes the window a chunk was built from. Senders is the
// distinct sender set joined with ", ".
type ChunkMetadata struct {
	StartTimestamp string
	EndTimestamp   string
	MessageCount   int
	Senders        string
}
