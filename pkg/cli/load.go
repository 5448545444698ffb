package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tandem-mlops/tandem/pkg/model"
	"github.com/tandem-mlops/tandem/pkg/usecase/feature"
	"github.com/urfave/cli/v3"
)

func loadCommand() *cli.Command {
	var (
		cfg    config
		input  string
		object string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "input",
			Aliases:     []string{"i"},
			Usage:       "Path to the raw dataset CSV",
			Destination: &input,
		},
		&cli.StringFlag{
			Name:        "object",
			Usage:       "Key of a raw dataset uploaded to the bucket (e.g. raw/country_wise_latest.csv)",
			Destination: &object,
		},
	}
	flags = append(flags, logFlags(&cfg)...)
	flags = append(flags, databaseFlags(&cfg)...)
	flags = append(flags, cloudFlags(&cfg)...)

	return &cli.Command{
		Name:      "load",
		Usage:     "Derive features from a raw dataset and load them into the offline store",
		ArgsUsage: "covid|churn",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.withLogger(ctx)

			kind := model.Intent(c.Args().First())
			if err := kind.Validate(); err != nil {
				return goerr.Wrap(err, "load needs covid or churn")
			}
			if (input == "") == (object == "") {
				return goerr.New("exactly one of --input or --object is required")
			}

			db, err := cfg.newDatabase(ctx)
			if err != nil {
				return err
			}
			defer db.Close()

			opts := []feature.Option{feature.WithDatabase(db)}
			if object != "" {
				storage, err := cfg.newStorage(ctx)
				if err != nil {
					return err
				}
				opts = append(opts, feature.WithStorage(storage))
			}
			uc := feature.New(opts...)

			var n int
			if object != "" {
				n, err = uc.LoadObject(ctx, kind, object)
			} else {
				n, err = loadFile(ctx, uc, kind, input)
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(c.Root().Writer, "Loaded %d %s rows\n", n, kind)
			return nil
		},
	}
}

func loadFile(ctx context.Context, uc *feature.UseCase, kind model.Intent, path string) (int, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return 0, goerr.Wrap(err, "failed to open dataset", goerr.V("path", path))
	}
	defer f.Close()

	return uc.Load(ctx, kind, f)
}
