package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/urfave/cli/v3"
)

var exampleQueries = []string{
	"What's the COVID-19 situation in the United States with 100000 cases and 2000 deaths?",
	"Is customer CUST_001 likely to churn? They've been with us for 24 months and pay $85.50/month.",
}

func askCommand() *cli.Command {
	var cfg config

	flags := logFlags(&cfg)
	flags = append(flags, agentFlags(&cfg)...)

	return &cli.Command{
		Name:      "ask",
		Usage:     "Answer a question through the routing agent, or run the example questions",
		ArgsUsage: "[query words...]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.withLogger(ctx)

			a, err := cfg.newAgent(ctx)
			if err != nil {
				return err
			}

			queries := exampleQueries
			if c.Args().Len() > 0 {
				queries = []string{strings.Join(c.Args().Slice(), " ")}
			}

			w := c.Root().Writer
			separator := strings.Repeat("=", 80)
			for _, q := range queries {
				fmt.Fprintf(w, "\n%s\nQuery: %s\n%s\n", separator, q, separator)
				fmt.Fprintf(w, "Response:\n%s\n", a.ProcessQuery(ctx, q))
			}
			return nil
		},
	}
}
