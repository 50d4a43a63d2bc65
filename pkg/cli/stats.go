package cli

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v3"
)

func statsCommand() *cli.Command {
	var cfg config

	return &cli.Command{
		Name:  "stats",
		Usage: "Show the size of the vector collection",
		Flags: globalFlags(&cfg),
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)

			store, err := cfg.newStore(ctx)
			if err != nil {
				return err
			}

			stats, err := store.Stats(ctx)
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Collection: %s\n", cfg.collection)
			fmt.Fprintf(c.Root().Writer, "Backend: %s\n", cfg.backend)
			fmt.Fprintf(c.Root().Writer, "Vectors: %d\n", stats.Count)
			return nil
		},
	}
}
