package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/gridfs"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// GridFS keeps blobs in a Mongo GridFS bucket, named by their path.
type GridFS struct {
	bucket  *gridfs.Bucket
	baseURL string
}

func NewGridFS(db *mongo.Database, bucketName, baseURL string) (*GridFS, error) {
	bucket, err := gridfs.NewBucket(db, options.GridFSBucket().SetName(bucketName))
	if err != nil {
		return nil, fmt.Errorf("failed to open gridfs bucket: %w", err)
	}
	return &GridFS{bucket: bucket, baseURL: baseURL}, nil
}

func (g *GridFS) Upload(ctx context.Context, path string, data []byte) (string, error) {
	if deadline, ok := ctx.Deadline(); ok {
		if err := g.bucket.SetWriteDeadline(deadline); err != nil {
			return "", fmt.Errorf("failed to set write deadline: %w", err)
		}
	}

	if _, err := g.bucket.UploadFromStream(path, bytes.NewReader(data)); err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", path, err)
	}
	return URLFor(g.baseURL, path), nil
}

func (g *GridFS) Open(ctx context.Context, path string) ([]byte, error) {
	if deadline, ok := ctx.Deadline(); ok {
		if err := g.bucket.SetReadDeadline(deadline); err != nil {
			return nil, fmt.Errorf("failed to set read deadline: %w", err)
		}
	}

	var buf bytes.Buffer
	if _, err := g.bucket.DownloadToStreamByName(path, &buf); err != nil {
		if errors.Is(err, gridfs.ErrFileNotFound) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to download %s: %w", path, err)
	}
	return buf.Bytes(), nil
}
