package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/chzyer/readline"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

func chatCommand() *cli.Command {
	var (
		cfg         config
		historyFile string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "history-file",
			Usage:       "File to keep input history in",
			Sources:     cli.EnvVars("TANDEM_HISTORY_FILE"),
			Destination: &historyFile,
		},
	}
	flags = append(flags, logFlags(&cfg)...)
	flags = append(flags, agentFlags(&cfg)...)

	return &cli.Command{
		Name:  "chat",
		Usage: "Ask questions interactively",
		Flags: flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.withLogger(ctx)

			a, err := cfg.newAgent(ctx)
			if err != nil {
				return err
			}

			rl, err := readline.NewEx(&readline.Config{
				Prompt:          "tandem> ",
				HistoryFile:     historyFile,
				InterruptPrompt: "^C",
				EOFPrompt:       "exit",
			})
			if err != nil {
				return goerr.Wrap(err, "failed to start line editor")
			}
			defer rl.Close()

			w := c.Root().Writer
			fmt.Fprintf(w, "Ask about COVID-19 risk or customer churn. Type 'exit' to quit.\n")

			for {
				line, err := rl.Readline()
				if errors.Is(err, readline.ErrInterrupt) {
					if line == "" {
						break
					}
					continue
				}
				if errors.Is(err, io.EOF) {
					break
				}
				if err != nil {
					return goerr.Wrap(err, "failed to read input")
				}

				query := strings.TrimSpace(line)
				switch query {
				case "":
					continue
				case "exit", "quit":
					return nil
				}

				s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
				s.Suffix = " thinking..."
				s.Start()
				response := a.ProcessQuery(ctx, query)
				s.Stop()

				fmt.Fprintf(w, "%s\n\n", strings.TrimSpace(response))
			}

			return nil
		},
	}
}
