package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/pacer/pkg/model"
	"github.com/m-mizutani/pacer/pkg/usecase/archive"
	"github.com/m-mizutani/pacer/pkg/usecase/coach"
	"github.com/urfave/cli/v3"
)

func chatCommand() *cli.Command {
	var cfg config

	flags := append(globalFlags(&cfg), llmFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Interactive chat with the coach from the terminal",
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

			rl, err := readline.New("> ")
			if err != nil {
				return goerr.Wrap(err, "failed to open terminal")
			}
			defer rl.Close()

			fmt.Fprintf(c.Root().Writer, "Chat session started. Type 'exit' to quit, 'reset' to clear history.\n")

			var sessionID model.SessionID
			for {
				line, err := rl.Readline()
				if err != nil {
					if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
						break
					}
					return goerr.Wrap(err, "failed to read input")
				}

				message := strings.TrimSpace(line)
				switch message {
				case "":
					continue
				case "exit":
					fmt.Fprintf(c.Root().Writer, "\nChat session completed\n")
					return nil
				case "reset":
					pipeline.HandleReset(sessionID)
					fmt.Fprintf(c.Root().Writer, "Session reset\n")
					continue
				}

				reply, sid, err := pipeline.HandleChat(ctx, sessionID, message)
				if err != nil {
					return goerr.Wrap(err, "failed to handle message")
				}
				sessionID = sid

				fmt.Fprintf(c.Root().Writer, "%s\n", reply)
			}

			fmt.Fprintf(c.Root().Writer, "\nChat session completed\n")
			return nil
		},
	}
}
