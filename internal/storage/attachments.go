package storage

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/talentbridge/sales-crm-platform/internal/faults"
	"github.com/talentbridge/sales-crm-platform/pkg/logging"
)

// Attachment is a stored remark file or voice note.
type Attachment struct {
	Key         string    `json:"key"`
	URL         string    `json:"url"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	UploadedAt  time.Time `json:"uploaded_at"`
}

// AttachmentStore is the storage port for uploaded files.
type AttachmentStore interface {
	Put(ctx context.Context, leadID, filename, contentType string, body io.Reader) (*Attachment, error)
	Get(ctx context.Context, key string) (io.ReadCloser, string, error)
	Delete(ctx context.Context, key string) error
}

// S3API is the subset of the S3 client used by S3Store.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store keeps attachments in an S3 bucket under leads/<id>/attachments/.
type S3Store struct {
	bucket    string
	publicURL string
	s3Client  S3API
	logger    *logging.Logger
}

func NewS3Store(s3Client S3API, bucket, publicURL string, logger *logging.Logger) *S3Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &S3Store{bucket: bucket, publicURL: publicURL, s3Client: s3Client, logger: logger}
}

func (s *S3Store) Put(ctx context.Context, leadID, filename, contentType string, body io.Reader) (*Attachment, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, faults.Infra("storage: read upload", err)
	}

	key := fmt.Sprintf("leads/%s/attachments/%s-%s", leadID, uuid.NewString(), filename)
	_, err = s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return nil, faults.Infra("storage: s3 put", err)
	}

	att := &Attachment{
		Key:         key,
		URL:         fmt.Sprintf("%s/%s", s.publicURL, key),
		ContentType: contentType,
		Size:        int64(len(data)),
		UploadedAt:  time.Now().UTC(),
	}
	s.logger.Info("attachment stored", "key", key, "size", att.Size)
	return att, nil
}

func (s *S3Store) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	out, err := s.s3Client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", faults.NotFound("attachment", key)
	}
	return out.Body, aws.ToString(out.ContentType), nil
}

func (s *S3Store) Delete(ctx context.Context, key string) error {
	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return faults.Infra("storage: s3 delete", err)
	}
	return nil
}

// MemoryStore backs the demo deployment and the test suite.
type MemoryStore struct {
	mu      sync.RWMutex
	objects map[string]memoryObject
}

type memoryObject struct {
	data        []byte
	contentType string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{objects: make(map[string]memoryObject)}
}

func (m *MemoryStore) Put(ctx context.Context, leadID, filename, contentType string, body io.Reader) (*Attachment, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return nil, faults.Infra("storage: read upload", err)
	}

	key := fmt.Sprintf("leads/%s/attachments/%s-%s", leadID, uuid.NewString(), filename)
	m.mu.Lock()
	m.objects[key] = memoryObject{data: data, contentType: contentType}
	m.mu.Unlock()

	return &Attachment{
		Key:         key,
		URL:         "memory://" + key,
		ContentType: contentType,
		Size:        int64(len(data)),
		UploadedAt:  time.Now().UTC(),
	}, nil
}

func (m *MemoryStore) Get(ctx context.Context, key string) (io.ReadCloser, string, error) {
	m.mu.RLock()
	obj, ok := m.objects[key]
	m.mu.RUnlock()
	if !ok {
		return nil, "", faults.NotFound("attachment", key)
	}
	return io.NopCloser(bytes.NewReader(obj.data)), obj.contentType, nil
}

func (m *MemoryStore) Delete(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.objects[key]; !ok {
		return faults.NotFound("attachment", key)
	}
	delete(m.objects, key)
	return nil
}
