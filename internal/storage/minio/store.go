package minio

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"github.com/minio/minio-go/v7"

	"github.com/dtroode/loginvault/internal/model"
)

const documentVersion = 1

// document is the single object holding every vault field.
type document struct {
	Version int               `cbor:"version"`
	Items   map[string][]byte `cbor:"items"`
}

var encMode = func() cbor.EncMode {
	em, err := cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("minio: CBOR encoder initialization failed: " + err.Error())
	}
	return em
}()

var _ model.DurableStore = (*Store)(nil)

// Store keeps all vault fields in one CBOR object, so every write replaces
// the whole set with a single PUT. Writes are serialized within the process.
type Store struct {
	api    minioAPI
	bucket string
	object string
	mu     sync.Mutex
}

// NewStore creates a Store using a real *minio.Client instance.
func NewStore(ctx context.Context, client *minio.Client, bucket, object string) (*Store, error) {
	return NewStoreWithAPI(ctx, minioClientWrapper{c: client}, bucket, object)
}

// NewStoreWithAPI allows injecting a mockable API (used in tests).
func NewStoreWithAPI(ctx context.Context, api minioAPI, bucket, object string) (*Store, error) {
	if err := ensureBucketExists(ctx, api, bucket); err != nil {
		return nil, fmt.Errorf("failed to ensure bucket exists: %w", err)
	}

	return &Store{api: api, bucket: bucket, object: object}, nil
}

func (s *Store) Get(ctx context.Context, keys ...string) (map[string][]byte, error) {
	doc, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	items := make(map[string][]byte, len(keys))
	for _, k := range keys {
		if v, ok := doc.Items[k]; ok {
			items[k] = v
		}
	}
	return items, nil
}

func (s *Store) Set(ctx context.Context, items map[string][]byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return err
	}
	for k, v := range items {
		doc.Items[k] = bytes.Clone(v)
	}
	return s.store(ctx, doc)
}

func (s *Store) Remove(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load(ctx)
	if err != nil {
		return err
	}
	for _, k := range keys {
		delete(doc.Items, k)
	}

	if len(doc.Items) == 0 {
		err := s.api.RemoveObject(ctx, s.bucket, s.object, minio.RemoveObjectOptions{})
		if err != nil && !isNotFound(err) {
			return fmt.Errorf("failed to delete object: %w", err)
		}
		return nil
	}
	return s.store(ctx, doc)
}

// Ping checks that the bucket is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if _, err := s.api.BucketExists(ctx, s.bucket); err != nil {
		return fmt.Errorf("failed to reach bucket: %w", err)
	}
	return nil
}

func (s *Store) load(ctx context.Context) (document, error) {
	empty := document{Version: documentVersion, Items: map[string][]byte{}}

	obj, err := s.api.GetObject(ctx, s.bucket, s.object, minio.GetObjectOptions{})
	if err != nil {
		if isNotFound(err) {
			return empty, nil
		}
		return document{}, fmt.Errorf("failed to get object: %w", err)
	}
	defer obj.Close()

	// minio reports a missing object on first read, not on GetObject.
	data, err := io.ReadAll(obj)
	if err != nil {
		if isNotFound(err) {
			return empty, nil
		}
		return document{}, fmt.Errorf("failed to read object: %w", err)
	}

	var doc document
	if err := cbor.Unmarshal(data, &doc); err != nil {
		return document{}, fmt.Errorf("failed to decode object: %w", err)
	}
	if doc.Version != documentVersion {
		return document{}, fmt.Errorf("unsupported document version %d", doc.Version)
	}
	if doc.Items == nil {
		doc.Items = map[string][]byte{}
	}
	return doc, nil
}

func (s *Store) store(ctx context.Context, doc document) error {
	data, err := encMode.Marshal(doc)
	if err != nil {
		return fmt.Errorf("failed to encode object: %w", err)
	}

	_, err = s.api.PutObject(ctx, s.bucket, s.object, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: "application/cbor",
	})
	if err != nil {
		return fmt.Errorf("failed to upload object: %w", err)
	}
	return nil
}
