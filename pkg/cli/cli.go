package cli

import (
	"context"

	"github.com/urfave/cli/v3"
)

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	cmd := &cli.Command{
		Name:  "pacer",
		Usage: "Running-coach chat agent grounded in a group chat archive",
		Commands: []*cli.Command{
			serveCommand(),
			indexCommand(),
			migrateCommand(),
			chatCommand(),
			statsCommand(),
		},
	}

	if err := cmd.Run(ctx, argv); err != nil {
		return &Error{
			Code:    1,
			Message: err.Error(),
		}
	}

	return nil
}
