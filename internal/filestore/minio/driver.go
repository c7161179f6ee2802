// Package minio implements filestore.Store on the MinIO client, which
// speaks to MinIO and any other S3-compatible service.
package minio

import (
	"bytes"
	"context"
	"io"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/koustreak/schemats/internal/errs"
	"github.com/koustreak/schemats/internal/filestore"
)

// Driver is a MinIO implementation of filestore.Store.
// It is safe for concurrent use by multiple goroutines.
type Driver struct {
	client *miniogo.Client
}

// New builds a client for cfg and pings the endpoint before returning.
func New(ctx context.Context, cfg *filestore.Config) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	client, err := miniogo.New(cfg.Endpoint, &miniogo.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, errs.Wrap(errs.ErrKindInvalidInput, "failed to create object store client", err)
	}

	d := &Driver{client: client}
	if err := d.Ping(ctx); err != nil {
		return nil, err
	}
	return d, nil
}

// Ping lists buckets, which needs valid credentials but no bucket.
func (d *Driver) Ping(ctx context.Context) error {
	if _, err := d.client.ListBuckets(ctx); err != nil {
		return mapError(err, "object store ping failed")
	}
	return nil
}

// Close is a no-op; the client holds no persistent connections.
func (d *Driver) Close() error {
	return nil
}

// Put uploads data to loc. A missing bucket is reported as not found
// instead of being created.
func (d *Driver) Put(ctx context.Context, loc filestore.Location, data []byte, contentType string) (*filestore.ObjectInfo, error) {
	ok, err := d.client.BucketExists(ctx, loc.Bucket)
	if err != nil {
		return nil, mapError(err, "failed to check bucket "+loc.Bucket)
	}
	if !ok {
		return nil, errs.Newf(errs.ErrKindNotFound, "bucket %q does not exist", loc.Bucket)
	}

	info, err := d.client.PutObject(ctx, loc.Bucket, loc.Key, bytes.NewReader(data), int64(len(data)), miniogo.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return nil, mapError(err, "failed to upload "+loc.String())
	}

	return &filestore.ObjectInfo{
		Location:     loc,
		Size:         info.Size,
		ContentType:  contentType,
		ETag:         info.ETag,
		LastModified: info.LastModified,
	}, nil
}

// Get downloads the object at loc.
func (d *Driver) Get(ctx context.Context, loc filestore.Location) ([]byte, *filestore.ObjectInfo, error) {
	obj, err := d.client.GetObject(ctx, loc.Bucket, loc.Key, miniogo.GetObjectOptions{})
	if err != nil {
		return nil, nil, mapError(err, "failed to get "+loc.String())
	}
	defer obj.Close()

	// GetObject is lazy; Stat surfaces NoSuchKey before the body is read.
	stat, err := obj.Stat()
	if err != nil {
		return nil, nil, mapError(err, "failed to get "+loc.String())
	}

	data, err := io.ReadAll(obj)
	if err != nil {
		return nil, nil, mapError(err, "failed to read "+loc.String())
	}

	return data, &filestore.ObjectInfo{
		Location:     loc,
		Size:         stat.Size,
		ContentType:  stat.ContentType,
		ETag:         stat.ETag,
		LastModified: stat.LastModified,
	}, nil
}
