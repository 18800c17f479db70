package minioadapter

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/samirrijal/fleetspot/internal/core/domain"
	"github.com/samirrijal/fleetspot/internal/pkg/metrics"
)

// Options configures the S3-compatible endpoint.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// objectAPI is the subset of *minio.Client the store uses.
type objectAPI interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, key string, r io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

type client struct {
	*minio.Client
}

func (c client) GetObject(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	obj, err := c.Client.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// SnapshotStore archives hotspot snapshots as JSON objects.
type SnapshotStore struct {
	api    objectAPI
	bucket string
}

// New connects to the endpoint and creates the bucket when it is missing.
func New(ctx context.Context, opts Options) (*SnapshotStore, error) {
	mc, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.UseSSL,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("create minio client: %w", err)
	}
	s := &SnapshotStore{api: client{mc}, bucket: opts.Bucket}
	if err := s.ensureBucket(ctx, opts.Region); err != nil {
		return nil, err
	}
	slog.Info("snapshot store ready", "endpoint", opts.Endpoint, "bucket", opts.Bucket)
	return s, nil
}

func (s *SnapshotStore) ensureBucket(ctx context.Context, region string) error {
	exists, err := s.api.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.api.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{Region: region}); err != nil {
		return fmt.Errorf("create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Put writes the snapshot under snapshot.Key(), replacing an earlier run.
func (s *SnapshotStore) Put(ctx context.Context, snapshot *domain.HotspotSnapshot) error {
	data, err := json.Marshal(snapshot)
	if err != nil {
		metrics.SnapshotsStored.WithLabelValues("error").Inc()
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	key := snapshot.Key()
	_, err = s.api.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)),
		minio.PutObjectOptions{ContentType: "application/json"})
	if err != nil {
		metrics.SnapshotsStored.WithLabelValues("error").Inc()
		return fmt.Errorf("put %s: %w", key, err)
	}
	metrics.SnapshotsStored.WithLabelValues("ok").Inc()
	return nil
}

// Get reads a snapshot. A missing key returns domain.ErrNotFound.
func (s *SnapshotStore) Get(ctx context.Context, key string) (*domain.HotspotSnapshot, error) {
	obj, err := s.api.GetObject(ctx, s.bucket, key)
	if err != nil {
		return nil, mapError(key, err)
	}
	defer obj.Close()

	var snapshot domain.HotspotSnapshot
	if err := json.NewDecoder(obj).Decode(&snapshot); err != nil {
		return nil, mapError(key, err)
	}
	return &snapshot, nil
}

// Ping checks that the bucket is reachable.
func (s *SnapshotStore) Ping(ctx context.Context) error {
	ok, err := s.api.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("minio: %w", err)
	}
	if !ok {
		return fmt.Errorf("minio: bucket %s does not exist", s.bucket)
	}
	return nil
}

// mapError translates NoSuchKey, which minio reports lazily on the first read.
func mapError(key string, err error) error {
	var resp minio.ErrorResponse
	if errors.As(err, &resp) && resp.Code == "NoSuchKey" {
		return fmt.Errorf("snapshot %s: %w", key, domain.ErrNotFound)
	}
	return fmt.Errorf("get %s: %w", key, err)
}
