package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pacer/pkg/repository"
	"github.com/m-mizutani/pacer/pkg/usecase/archive"
	"github.com/urfave/cli/v3"
)

func migrateCommand() *cli.Command {
	var cfg config

	flags := globalFlags(&cfg)

	return &cli.Command{
		Name:  "migrate",
		Usage: "Copy the local vector collection to Firestore without re-embedding",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.loggerContext(ctx)

			src := repository.NewLocal(cfg.dataDir, cfg.collection)

			if cfg.firestoreProject == "" {
				return goerr.New("firestore-project is required")
			}
			dst, err := repository.NewFirestore(ctx, cfg.firestoreProject, cfg.firestoreDatabase, cfg.collection)
			if err != nil {
				return goerr.Wrap(err, "failed to create firestore store")
			}
			defer dst.Close()

			sp := spinner.New(spinner.CharSets[14], 100*time.Millisecond)
			sp.Suffix = " migrating vectors to Firestore..."
			sp.Start()

			count, err := archive.Migrate(ctx, src, dst)
			sp.Stop()
			if err != nil {
				return err
			}

			stats, err := dst.Stats(ctx)
			if err != nil {
				return goerr.Wrap(err, "failed to verify migration")
			}

			fmt.Fprintf(c.Root().Writer, "Vectors migrated: %d\n", count)
			fmt.Fprintf(c.Root().Writer, "Destination count: %d\n", stats.Count)
			fmt.Fprintf(c.Root().Writer, "Collection: %s\n", cfg.collection)
			return nil
		},
	}
}
