package cli

import (
	"context"

	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pacer/pkg/server"
	"github.com/m-mizutani/pacer/pkg/usecase/archive"
	"github.com/m-mizutani/pacer/pkg/usecase/coach"
	"github.com/urfave/cli/v3"
)

func serveCommand() *cli.Command {
	var (
		cfg       config
		port      int64
		staticDir string
	)

	flags := []cli.Flag{
		&cli.IntFlag{
			Name:        "port",
			Aliases:     []string{"p"},
			Usage:       "HTTP listen port",
			Value:       8000,
			Sources:     cli.EnvVars("PACER_PORT"),
			Destination: &port,
		},
		&cli.StringFlag{
			Name:        "static-dir",
			Usage:       "Directory of static assets (index.html)",
			Value:       "static",
			Sources:     cli.EnvVars("PACER_STATIC_DIR"),
			Destination: &staticDir,
		},
	}
	flags = append(flags, globalFlags(&cfg)...)
	flags = append(flags, llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "serve",
		Usage: "Run the chat HTTP server",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)

			gemini, err := cfg.newGemini(ctx)
			if err != nil {
				return err
			}

			store, err := cfg.newStore(ctx)
			if err != nil {
				return err
			}

			pipeline := coach.New(coach.NewInput{
				Gemini:    gemini,
				Retriever: archive.NewRetriever(gemini, store),
				Sessions:  coach.NewStore(),
			})

			srv := server.New(pipeline, store, staticDir, int(port))
			if err := srv.Run(ctx); err != nil {
				return goerr.Wrap(err, "http server stopped")
			}
			return nil
		},
	}
}
