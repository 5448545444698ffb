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

func materializeCommand() *cli.Command {
	var (
		cfg       config
		source    string
		viewsFile string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "source",
			Usage:       "Offline store to read from (mysql, bigquery)",
			Value:       "mysql",
			Sources:     cli.EnvVars("TANDEM_OFFLINE_SOURCE"),
			Destination: &source,
		},
		&cli.StringFlag{
			Name:        "views",
			Usage:       "YAML file with feature view definitions (built-in views if omitted)",
			Sources:     cli.EnvVars("TANDEM_FEATURE_VIEWS"),
			Destination: &viewsFile,
		},
	}
	flags = append(flags, logFlags(&cfg)...)
	flags = append(flags, storeFlags(&cfg)...)
	flags = append(flags, databaseFlags(&cfg)...)
	flags = append(flags, cloudFlags(&cfg)...)

	return &cli.Command{
		Name:      "materialize",
		Usage:     "Copy the latest offline features to the online store",
		ArgsUsage: "[view...]",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.withLogger(ctx)

			if cfg.redisAddr == "" {
				return goerr.New("redis-addr is required")
			}

			var opts []feature.Option
			if viewsFile != "" {
				views, err := readViews(viewsFile)
				if err != nil {
					return err
				}
				opts = append(opts, feature.WithViews(views))
			}

			switch source {
			case "mysql":
				db, err := cfg.newDatabase(ctx)
				if err != nil {
					return err
				}
				defer db.Close()
				opts = append(opts, feature.WithDatabase(db))

			case "bigquery":
				bq, err := cfg.newBigQuery(ctx)
				if err != nil {
					return err
				}
				defer bq.Close()
				opts = append(opts, feature.WithOfflineSource(feature.NewBigQuerySource(bq)))

			default:
				return goerr.New("unsupported offline source", goerr.V("source", source))
			}

			store, err := cfg.newOnlineStore(ctx)
			if err != nil {
				return err
			}
			defer store.Close()
			opts = append(opts, feature.WithOnlineStore(store))

			uc := feature.New(opts...)

			names := c.Args().Slice()
			if len(names) == 0 {
				for _, v := range uc.Views() {
					names = append(names, v.Name)
				}
			}

			for _, name := range names {
				n, err := uc.Materialize(ctx, name)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.Root().Writer, "Materialized %d entities of %s\n", n, name)
			}
			return nil
		},
	}
}

func readViews(path string) ([]model.FeatureView, error) {
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open feature views", goerr.V("path", path))
	}
	defer f.Close()

	return feature.ParseViews(f)
}
