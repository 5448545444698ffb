package cli

import (
	"context"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tandem-mlops/tandem/pkg/usecase/feature"
	"github.com/urfave/cli/v3"
)

func uploadCommand() *cli.Command {
	var cfg config

	flags := logFlags(&cfg)
	flags = append(flags, cloudFlags(&cfg)...)

	return &cli.Command{
		Name:      "upload",
		Usage:     "Upload raw dataset files to Cloud Storage",
		ArgsUsage: "<file>...",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.withLogger(ctx)

			if c.Args().Len() == 0 {
				return goerr.New("no file to upload")
			}

			storage, err := cfg.newStorage(ctx)
			if err != nil {
				return err
			}

			keys, err := feature.New(feature.WithStorage(storage)).Upload(ctx, c.Args().Slice())
			if err != nil {
				return err
			}

			for _, key := range keys {
				fmt.Fprintf(c.Root().Writer, "gs://%s/%s\n", cfg.bucket, key)
			}
			return nil
		},
	}
}
