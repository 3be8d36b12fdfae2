package snapshot

import (
	"context"
	"encoding/json"
	"fmt"

	"gocloud.dev/blob"
	"gocloud.dev/gcerrors"

	_ "gocloud.dev/blob/azureblob"
	_ "gocloud.dev/blob/fileblob"
	_ "gocloud.dev/blob/gcsblob"
	_ "gocloud.dev/blob/memblob"
	_ "gocloud.dev/blob/s3blob"
)

// BlobStore keeps records in a bucket opened through gocloud.dev/blob,
// supporting S3, GCS, Azure Blob Storage, local files and memory
type BlobStore struct {
	bucket *blob.Bucket
	prefix string
}

const latestKey = "latest"

var _ Store = (*BlobStore)(nil)

func NewBlobStore(
	ctx context.Context, bucketURL, prefix string,
) (*BlobStore, error) {
	bucket, err := blob.OpenBucket(ctx, bucketURL)
	if err != nil {
		return nil, err
	}
	return &BlobStore{bucket: bucket, prefix: prefix}, nil
}

func (s *BlobStore) Put(ctx context.Context, rec *Record) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return err
	}
	if err := s.bucket.WriteAll(ctx, s.keyFor(rec.Version), data, nil); err != nil {
		return err
	}
	return s.bucket.WriteAll(ctx, s.key(latestKey), data, nil)
}

func (s *BlobStore) Get(ctx context.Context, version int64) (*Record, error) {
	return s.read(ctx, s.keyFor(version))
}

func (s *BlobStore) Latest(ctx context.Context) (*Record, error) {
	return s.read(ctx, s.key(latestKey))
}

func (s *BlobStore) Delete(ctx context.Context, version int64) error {
	if err := s.remove(ctx, s.keyFor(version)); err != nil {
		return err
	}
	latest, err := s.Latest(ctx)
	if err != nil || latest.Version != version {
		return nil
	}
	return s.remove(ctx, s.key(latestKey))
}

func (s *BlobStore) Close() error {
	return s.bucket.Close()
}

func (s *BlobStore) read(ctx context.Context, key string) (*Record, error) {
	data, err := s.bucket.ReadAll(ctx, key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, err
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, err
	}
	return &rec, nil
}

func (s *BlobStore) remove(ctx context.Context, key string) error {
	err := s.bucket.Delete(ctx, key)
	if err != nil && gcerrors.Code(err) == gcerrors.NotFound {
		return nil
	}
	return err
}

func (s *BlobStore) keyFor(version int64) string {
	return s.key(fmt.Sprintf("%020d", version))
}

func (s *BlobStore) key(name string) string {
	return s.prefix + "/" + name + ".json"
}
