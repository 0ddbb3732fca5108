package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/Serge13790/Site-Marcheurs/internal/config"

	"github.com/minio/minio-go/v7"
)

type fakeMinio struct {
	putBucket   string
	putKey      string
	putType     string
	removeKey   string
	putErr      error
	removeErr   error
	putPayload  []byte
	removeCalls int
}

func (f *fakeMinio) PutObject(_ context.Context, bucket, key string, reader io.Reader, _ int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	f.putBucket = bucket
	f.putKey = key
	f.putType = opts.ContentType
	f.putPayload, _ = io.ReadAll(reader)
	return minio.UploadInfo{Bucket: bucket, Key: key}, f.putErr
}

func (f *fakeMinio) RemoveObject(_ context.Context, _, key string, _ minio.RemoveObjectOptions) error {
	f.removeKey = key
	f.removeCalls++
	return f.removeErr
}

func TestPutDefaultsContentType(t *testing.T) {
	fake := &fakeMinio{}
	store := &MinioStore{client: fake, baseURL: "http://localhost:9000"}

	data := []byte("image-bytes")
	err := store.Put(context.Background(), "photos", "hike-1/a.jpg", bytes.NewReader(data), int64(len(data)), "")
	if err != nil {
		t.Fatalf("put: %v", err)
	}
	if fake.putType != defaultContentType {
		t.Fatalf("expected default content type, got %q", fake.putType)
	}
	if fake.putBucket != "photos" || fake.putKey != "hike-1/a.jpg" {
		t.Fatalf("unexpected destination %s/%s", fake.putBucket, fake.putKey)
	}
	if string(fake.putPayload) != "image-bytes" {
		t.Fatalf("payload not forwarded")
	}
}

func TestRemovePropagatesError(t *testing.T) {
	fake := &fakeMinio{removeErr: errors.New("gone")}
	store := &MinioStore{client: fake, baseURL: "http://localhost:9000"}

	if err := store.Remove(context.Background(), "photos", "hike-1/a.jpg"); err == nil {
		t.Fatalf("expected error")
	}
	if fake.removeKey != "hike-1/a.jpg" {
		t.Fatalf("unexpected key %q", fake.removeKey)
	}
}

func TestPublicURL(t *testing.T) {
	store := &MinioStore{baseURL: "https://files.example.org"}
	url := store.PublicURL("photos", "hike-1/a.jpg")
	if url != "https://files.example.org/photos/hike-1/a.jpg" {
		t.Fatalf("unexpected url %q", url)
	}
}

func TestNewMinioStoreTrimsBaseURL(t *testing.T) {
	store, err := NewMinioStore(config.Config{
		MinioEndpoint:  "localhost:9000",
		MinioAccessKey: "key",
		MinioSecretKey: "secret",
		StorageBaseURL: "http://localhost:9000/",
	})
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if store.baseURL != "http://localhost:9000" {
		t.Fatalf("expected trimmed base url, got %q", store.baseURL)
	}
}
