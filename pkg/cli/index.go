package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pacer/pkg/usecase/archive"
	"github.com/urfave/cli/v3"
)

func indexCommand() *cli.Command {
	var (
		cfg        config
		exportPath string
		bucket     string
		object     string
		configPath string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "export",
			Aliases:     []string{"e"},
			Usage:       "Path to the exported chat file",
			Sources:     cli.EnvVars("PACER_EXPORT"),
			Destination: &exportPath,
		},
		&cli.StringFlag{
			Name:        "bucket",
			Usage:       "Cloud Storage bucket holding the export",
			Sources:     cli.EnvVars("PACER_EXPORT_BUCKET"),
			Destination: &bucket,
		},
		&cli.StringFlag{
			Name:        "object",
			Usage:       "Cloud Storage object key of the export",
			Sources:     cli.EnvVars("PACER_EXPORT_OBJECT"),
			Destination: &object,
		},
		&cli.StringFlag{
			Name:        "archive-config",
			Usage:       "YAML file overriding chunk size and system-notice indicators",
			Sources:     cli.EnvVars("PACER_ARCHIVE_CONFIG"),
			Destination: &configPath,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "index",
		Usage: "Build the archive index from an exported chat file",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)

			archiveCfg := archive.DefaultConfig()
			if configPath != "" {
				loaded, err := archive.LoadConfig(configPath)
				if err != nil {
					return err
				}
				archiveCfg = loaded
			}

			reader, err := openExport(ctx, &cfg, exportPath, bucket, object)
			if err != nil {
				return err
			}
			defer reader.Close()

			parser := archive.NewParser(archiveCfg.SystemIndicators)
			messages, err := parser.Parse(ctx, reader)
			if err != nil {
				return err
			}
			if len(messages) == 0 {
				return goerr.New("no messages found in chat export")
			}

			chunks := archive.ChunkMessages(messages, archiveCfg.ChunkSize)

			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}
			store, err := cfg.newStore(ctx)
			if err != nil {
				return err
			}

			sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			sp.Suffix = fmt.Sprintf(" indexing %d chunks...", len(chunks))
			sp.Start()

			result, err := archive.NewIndexer(gemini, store).Build(ctx, chunks)
			sp.Stop()
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Parsed messages: %d\n", len(messages))
			fmt.Fprintf(c.Root().Writer, "Chunks: %d\n", len(chunks))
			fmt.Fprintf(c.Root().Writer, "Indexed: %d\n", result.Indexed)
			if result.Skipped > 0 {
				fmt.Fprintf(c.Root().Writer, "Skipped (failed batches): %d\n", result.Skipped)
			}
			fmt.Fprintf(c.Root().Writer, "Collection: %s\n", cfg.collection)
			return nil
		},
	}
}

func openExport(ctx context.Context, cfg *config, exportPath, bucket, object string) (io.ReadCloser, error) {
	switch {
	case exportPath != "":
		f, err := os.Open(exportPath)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to open chat export", goerr.V("path", exportPath))
		}
		return f, nil

	case bucket != "" && object != "":
		storage, err := cfg.newStorage(ctx, bucket)
		if err != nil {
			return nil, err
		}
		return storage.Get(ctx, object)

	default:
		return nil, goerr.New("either --export or --bucket/--object is required")
	}
}
