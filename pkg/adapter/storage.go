package adapter

import (
	"context"
	"io"

	"cloud.google.com/go/storage"
	"github.com/m-mizutani/goerr/v2"
	"google.golang.org/api/iterator"
)

// Storage keeps raw dataset files in a Cloud Storage bucket
type Storage interface {
	// Put returns a writer for the object at key. The object is committed on Close.
	Put(ctx context.Context, key string) (io.WriteCloser, error)
	Get(ctx context.Context, key string) (io.ReadCloser, error)
	// List returns object keys under prefix
	List(ctx context.Context, prefix string) ([]string, error)
}

type storageClient struct {
	bucketName string
	client     *storage.Client
}

func NewStorage(ctx context.Context, bucketName string) (Storage, error) {
	if bucketName == "" {
		return nil, goerr.New("bucket name is required")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to create storage client")
	}

	return &storageClient{
		bucketName: bucketName,
		client:     client,
	}, nil
}

func (s *storageClient) Put(ctx context.Context, key string) (io.WriteCloser, error) {
	writer := s.client.Bucket(s.bucketName).Object(key).NewWriter(ctx)
	writer.ContentType = "text/csv"
	return writer, nil
}

func (s *storageClient) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	reader, err := s.client.Bucket(s.bucketName).Object(key).NewReader(ctx)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read from storage",
			goerr.V("bucket", s.bucketName),
			goerr.V("key", key))
	}
	return reader, nil
}

func (s *storageClient) List(ctx context.Context, prefix string) ([]string, error) {
	it := s.client.Bucket(s.bucketName).Objects(ctx, &storage.Query{Prefix: prefix})

	var keys []string
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, goerr.Wrap(err, "failed to list objects",
				goerr.V("bucket", s.bucketName),
				goerr.V("prefix", prefix))
		}
		keys = append(keys, attrs.Name)
	}
	return keys, nil
}
