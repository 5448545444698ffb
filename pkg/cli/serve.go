package cli

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tandem-mlops/tandem/pkg/model"
	"github.com/tandem-mlops/tandem/pkg/service/predict"
	"github.com/tandem-mlops/tandem/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

var defaultServiceAddr = map[model.Intent]string{
	model.IntentCovid: ":8000",
	model.IntentChurn: ":8001",
}

func serveCommand() *cli.Command {
	var (
		cfg  config
		addr string
		seed int64
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "Listen address (default :8000 for covid, :8001 for churn)",
			Sources:     cli.EnvVars("TANDEM_SERVICE_ADDR"),
			Destination: &addr,
		},
		&cli.IntFlag{
			Name:        "seed",
			Usage:       "Seed of the prediction noise, 0 for a random seed",
			Sources:     cli.EnvVars("TANDEM_MODEL_SEED"),
			Destination: &seed,
		},
	}
	flags = append(flags, logFlags(&cfg)...)
	flags = append(flags, storeFlags(&cfg)...)

	return &cli.Command{
		Name:      "serve",
		Usage:     "Run a prediction service",
		ArgsUsage: "covid|churn",
		Flags:     flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			ctx = cfg.withLogger(ctx)

			task := model.Intent(c.Args().First())
			if err := task.Validate(); err != nil {
				return goerr.Wrap(err, "serve needs covid or churn")
			}
			if addr == "" {
				addr = defaultServiceAddr[task]
			}

			var opts []predict.Option
			store, err := cfg.newOnlineStore(ctx)
			if err != nil {
				return err
			}
			if store != nil {
				defer store.Close()
				opts = append(opts, predict.WithOnlineStore(store))
			} else {
				logging.From(ctx).Info("online store is not configured, serving request features only")
			}

			var modelOpts []predict.HeuristicOption
			if seed != 0 {
				modelOpts = append(modelOpts, predict.WithSeed(uint64(seed)))
			}
			predictor := predict.NewHeuristic(modelOpts...)

			var srv *predict.Server
			switch task {
			case model.IntentCovid:
				srv = predict.NewCovidServer(predictor, opts...)
			case model.IntentChurn:
				srv = predict.NewChurnServer(predictor, opts...)
			}

			ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
			defer stop()

			return srv.Run(ctx, addr)
		},
	}
}
