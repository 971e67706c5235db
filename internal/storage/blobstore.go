package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/klauspost/compress/gzip"
	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	"github.com/ablay/godrain/internal/metrics"
)

// gzipMagic is the two-byte header every gzip stream starts with.
var gzipMagic = []byte{0x1f, 0x8b}

// BlobStore is the durable key/value adapter over MinIO. Objects are
// gzip-compressed on write and transparently decompressed on read, so
// callers only ever see plain bytes.
type BlobStore struct {
	client *minio.Client
	bucket string
	log    *zap.Logger
}

// NewBlobStore constructs the adapter against an existing client and bucket.
func NewBlobStore(client *minio.Client, bucket string, log *zap.Logger) *BlobStore {
	return &BlobStore{client: client, bucket: bucket, log: log}
}

// Get fetches and decompresses the object at key. A missing key is not an
// error; it reads as nil bytes.
func (b *BlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	start := time.Now()
	defer func() { metrics.ObserveBlobOp("get", time.Since(start)) }()

	obj, err := b.client.GetObject(ctx, b.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, fmt.Errorf("blob get %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		resp := minio.ToErrorResponse(err)
		if resp.Code == "NoSuchKey" {
			return nil, nil
		}
		return nil, fmt.Errorf("blob get %s: status %d: %w", key, resp.StatusCode, err)
	}

	b.log.Debug("blob get", zap.String("key", key), zap.Int("stored_bytes", len(data)))
	return decompress(data)
}

// Put compresses and stores data at key.
func (b *BlobStore) Put(ctx context.Context, key string, data []byte) error {
	start := time.Now()
	defer func() { metrics.ObserveBlobOp("put", time.Since(start)) }()

	packed, err := compress(data)
	if err != nil {
		return fmt.Errorf("blob put %s: compress: %w", key, err)
	}

	_, err = b.client.PutObject(ctx, b.bucket, key, bytes.NewReader(packed), int64(len(packed)), minio.PutObjectOptions{
		ContentType:     "application/json",
		ContentEncoding: "gzip",
	})
	if err != nil {
		resp := minio.ToErrorResponse(err)
		return fmt.Errorf("blob put %s: status %d: %w", key, resp.StatusCode, err)
	}

	b.log.Debug("blob put", zap.String("key", key), zap.Int("stored_bytes", len(packed)))
	return nil
}

func compress(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	w := gzip.NewWriter(&buf)
	if _, err := w.Write(data); err != nil {
		return nil, err
	}
	if err := w.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// decompress unpacks gzip-framed bytes. Objects written before compression
// was introduced come back verbatim.
func decompress(data []byte) ([]byte, error) {
	if !bytes.HasPrefix(data, gzipMagic) {
		return data, nil
	}
	r, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open gzip stream: %w", err)
	}
	defer r.Close()

	out, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("decompress blob: %w", err)
	}
	return out, nil
}
