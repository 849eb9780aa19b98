package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"

	"sensor-dashboard/models"
)

// ArchivePrefix is the object key prefix for archived readings.
const ArchivePrefix = "readings/"

// ObjectStore is the blob store the archive writes to.
type ObjectStore interface {
	Put(ctx context.Context, name string, data []byte, contentType string) error
	Get(ctx context.Context, name string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// MinioObjectStore adapts a minio client bound to one bucket.
type MinioObjectStore struct {
	client     *minio.Client
	bucketName string
}

func NewMinioObjectStore(client *minio.Client, bucketName string) *MinioObjectStore {
	return &MinioObjectStore{
		client:     client,
		bucketName: bucketName,
	}
}

// EnsureBucket creates the bucket when it does not exist yet.
func (s *MinioObjectStore) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucketName)
	if err != nil {
		return fmt.Errorf("archive: bucket exists: %w", err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucketName, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("archive: make bucket: %w", err)
	}
	return nil
}

func (s *MinioObjectStore) Put(ctx context.Context, name string, data []byte, contentType string) error {
	_, err := s.client.PutObject(
		ctx,
		s.bucketName,
		name,
		bytes.NewReader(data),
		int64(len(data)),
		minio.PutObjectOptions{ContentType: contentType},
	)
	return err
}

func (s *MinioObjectStore) Get(ctx context.Context, name string) ([]byte, error) {
	obj, err := s.client.GetObject(ctx, s.bucketName, name, minio.GetObjectOptions{})
	if err != nil {
		return nil, err
	}
	defer obj.Close()
	return io.ReadAll(obj)
}

func (s *MinioObjectStore) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	objCh := s.client.ListObjects(ctx, s.bucketName, minio.ListObjectsOptions{Prefix: prefix, Recursive: true})
	for obj := range objCh {
		if obj.Err != nil {
			return nil, obj.Err
		}
		names = append(names, obj.Key)
	}
	return names, nil
}

// ArchiveService stores one JSON object per reading, grouped by day:
// readings/2026-10-16/09-30-05-<uuid>.json
type ArchiveService struct {
	store ObjectStore
	now   func() time.Time
	newID func() string
}

func NewArchiveService(store ObjectStore) *ArchiveService {
	return &ArchiveService{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}
}

// Name implements ReadingSink.
func (s *ArchiveService) Name() string { return "minio" }

// Save implements ReadingSink.
func (s *ArchiveService) Save(ctx context.Context, r models.Reading) error {
	data, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("archive: marshal: %w", err)
	}
	name := s.objectName(r)
	if err := s.store.Put(ctx, name, data, "application/json"); err != nil {
		return fmt.Errorf("archive: put %s: %w", name, err)
	}
	return nil
}

func (s *ArchiveService) objectName(r models.Reading) string {
	at, err := r.Time()
	if err != nil {
		at = s.now()
	}
	return fmt.Sprintf("%s%s/%s-%s.json", ArchivePrefix, at.Format("2006-01-02"), at.Format("15-04-05"), s.newID())
}

// List returns up to limit archived readings for a day (YYYY-MM-DD), oldest
// first. limit <= 0 means no limit. Unreadable objects are skipped.
func (s *ArchiveService) List(ctx context.Context, day string, limit int) ([]models.Reading, error) {
	if _, err := time.Parse("2006-01-02", day); err != nil {
		return nil, fmt.Errorf("archive: invalid day %q: %w", day, err)
	}
	names, err := s.store.List(ctx, ArchivePrefix+day+"/")
	if err != nil {
		return nil, fmt.Errorf("archive: list: %w", err)
	}
	sort.Strings(names)

	readings := make([]models.Reading, 0, len(names))
	for _, name := range names {
		if limit > 0 && len(readings) >= limit {
			break
		}
		if !strings.HasSuffix(name, ".json") {
			continue
		}
		data, err := s.store.Get(ctx, name)
		if err != nil {
			continue
		}
		var r models.Reading
		if err := json.Unmarshal(data, &r); err != nil {
			continue
		}
		readings = append(readings, r)
	}
	return readings, nil
}
