package feature

import (
	"context"
	"io"
	"os"
	"path"
	"path/filepath"

	"github.com/m-mizutani/goerr/v2"
	"github.com/tandem-mlops/tandem/pkg/utils/logging"
)

const rawPrefix = "raw/"

// RawObjectKey is the object key a raw dataset file is uploaded to
func RawObjectKey(filePath string) string {
	return path.Join(rawPrefix, filepath.Base(filePath))
}

// Upload copies raw dataset files to object storage and returns their keys
func (uc *UseCase) Upload(ctx context.Context, paths []string) ([]string, error) {
	if uc.storage == nil {
		return nil, ErrNoStorage
	}

	keys := make([]string, 0, len(paths))
	for _, p := range paths {
		key := RawObjectKey(p)
		if err := uc.uploadFile(ctx, p, key); err != nil {
			return keys, err
		}
		logging.From(ctx).Info("uploaded dataset", "path", p, "key", key)
		keys = append(keys, key)
	}
	return keys, nil
}

func (uc *UseCase) uploadFile(ctx context.Context, filePath, key string) error {
	f, err := os.Open(filepath.Clean(filePath))
	if err != nil {
		return goerr.Wrap(err, "failed to open dataset", goerr.V("path", filePath))
	}
	defer f.Close()

	w, err := uc.storage.Put(ctx, key)
	if err != nil {
		return goerr.Wrap(err, "failed to open object writer", goerr.V("key", key))
	}
	if _, err := io.Copy(w, f); err != nil {
		_ = w.Close()
		return goerr.Wrap(err, "failed to upload dataset", goerr.V("path", filePath), goerr.V("key", key))
	}
	if err := w.Close(); err != nil {
		return goerr.Wrap(err, "failed to commit object", goerr.V("key", key))
	}
	return nil
}

// ListRaw returns the keys of uploaded raw datasets
func (uc *UseCase) ListRaw(ctx context.Context) ([]string, error) {
	if uc.storage == nil {
		return nil, ErrNoStorage
	}
	return uc.storage.List(ctx, rawPrefix)
}
