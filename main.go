package main

import (
	"context"
	"os"

	"github.com/tandem-mlops/tandem/pkg/cli"
	"github.com/tandem-mlops/tandem/pkg/utils/logging"
)

func main() {
	ctx := context.Background()
	if err := cli.Run(ctx, os.Args); err != nil {
		logging.Default().Error(err.Message)
		os.Exit(err.Code)
	}
}
