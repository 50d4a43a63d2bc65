package archive

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultChunkSize is the number of messages per chunk.
	DefaultChunkSize = 5

	// DefaultCollection is the vector collection name of the archive.
	DefaultCollection = "whatsapp_running_chat"
)

// zeroWidthMarker is the invisible character WhatsApp prefixes to system
// notices.
const zeroWidthMarker = "‎"

// DefaultIndicators are the system-notice substrings filtered during
// parsing.
var DefaultIndicators = []string{
	zeroWidthMarker,
	"added", "removed", "left", "joined",
	"created this group", "changed the group",
	"Messages and calls are end-to-end encrypted",
	"changed this group's icon",
}

// Config controls parsing and chunking of a chat export.
type Config struct {
	ChunkSize        int      `yaml:"chunk_size"`
	SystemIndicators []string `yaml:"system_indicators"`
}

// DefaultConfig returns the built-in parser and chunker settings.
func DefaultConfig() *Config {
	return &Config{
		ChunkSize:        DefaultChunkSize,
		SystemIndicators: DefaultIndicators,
	}
}

// LoadConfig reads a YAML override file. Absent fields keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read archive config", goerr.V("path", path))
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, goerr.Wrap(err, "failed to parse archive config", goerr.V("path", path))
	}

	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = DefaultChunkSize
	}
	if len(cfg.SystemIndicators) == 0 {
		cfg.SystemIndicators = DefaultIndicators
	}

	return cfg, nil
}
