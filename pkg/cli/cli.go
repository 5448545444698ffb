package cli

import (
	"context"
	"errors"
	"io"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
)

// Version is overwritten at build time
var Version = "dev"

type Error struct {
	Code    int
	Message string
}

func Run(ctx context.Context, argv []string) *Error {
	return run(ctx, argv, nil, nil)
}

func run(ctx context.Context, argv []string, stdin io.Reader, stdout io.Writer) *Error {
	// .env is optional and never overrides the environment
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return &Error{Code: 1, Message: "failed to load .env: " + err.Error()}
	}

	cmd := &cli.Command{
		Name:    "tandem",
		Usage:   "Route COVID-19 and churn questions to prediction services",
		Version: Version,
		Reader:  stdin,
		Writer:  stdout,
		Commands: []*cli.Command{
			askCommand(),
			chatCommand(),
			serveCommand(),
			loadCommand(),
			materializeCommand(),
			uploadCommand(),
			mcpCommand(),
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
