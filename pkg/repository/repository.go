package repository

import (
	"context"
	"time"
)

// OnlineStore serves the latest feature values per entity at prediction time
type OnlineStore interface {
	// PutFeatures replaces the features of entity in view. A zero ttl keeps them forever.
	PutFeatures(ctx context.Context, view, entity string, values map[string]string, ttl time.Duration) error

	// GetFeatures returns the features of entity in view, or model.ErrFeatureNotFound
	GetFeatures(ctx context.Context, view, entity string) (map[string]string, error)
}
