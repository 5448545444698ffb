package feature

import (
	"context"
	"strings"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tandem-mlops/tandem/pkg/utils/logging"
)

// Materialize copies every row of the named view from the offline source to
// the online store and returns the number of entities written.
func (uc *UseCase) Materialize(ctx context.Context, name string) (int, error) {
	if uc.source == nil {
		return 0, ErrNoSource
	}
	if uc.store == nil {
		return 0, ErrNoOnlineStore
	}

	view, err := uc.View(name)
	if err != nil {
		return 0, err
	}

	rows, err := uc.source.ReadFeatures(ctx, view)
	if err != nil {
		return 0, err
	}

	written := 0
	for _, row := range rows {
		if strings.TrimSpace(row.Entity) == "" {
			logging.From(ctx).Warn("skip feature row without entity", "view", view.Name)
			continue
		}
		if err := uc.store.PutFeatures(ctx, view.Name, row.Entity, row.Values, view.TTL); err != nil {
			return written, goerr.Wrap(err, "failed to materialize features",
				goerr.V("view", view.Name),
				goerr.V("entity", row.Entity))
		}
		written++
	}

	logging.From(ctx).Info("materialized features", "view", view.Name, "rows", len(rows), "written", written)
	return written, nil
}
