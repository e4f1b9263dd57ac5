package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"path"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"alfredoptarigan/resume-evaluator/internal/config"
)

// Object key prefixes. An object under PrefixResumes starts an evaluation run;
// objects under PrefixJobs are job descriptions.
const (
	PrefixResumes = "resumes/"
	PrefixJobs    = "jobs/"
)

var (
	ErrUnsupportedFile = errors.New("unsupported file type")
	ErrObjectNotFound  = errors.New("object not found")
)

var contentTypes = map[string]string{
	".pdf": "application/pdf",
	".txt": "text/plain; charset=utf-8",
	".md":  "text/markdown; charset=utf-8",
}

type StorageService interface {
	SaveFile(ctx context.Context, file *multipart.FileHeader, prefix string) (string, error)
	PutObject(ctx context.Context, key string, data io.Reader, size int64) error
	ReadText(ctx context.Context, key string) (string, error)
	LatestKey(ctx context.Context, prefix string) (string, error)
	DeleteFile(ctx context.Context, key string) error
	EnsureBucket(ctx context.Context) error
}

type storageService struct {
	client      *minio.Client
	bucket      string
	maxFileSize int64
	pdf         PDFParserService
}

func NewStorageService(cfg config.StorageConfig, pdfParser PDFParserService) (StorageService, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}

	return &storageService{
		client:      client,
		bucket:      cfg.Bucket,
		maxFileSize: cfg.MaxFileSize,
		pdf:         pdfParser,
	}, nil
}

// EnsureBucket creates the bucket if it doesn't exist.
func (s *storageService) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket: %w", err)
	}

	if !exists {
		if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("failed to create bucket: %w", err)
		}
	}

	return nil
}

// SaveFile uploads a multipart file below prefix and returns its object key.
func (s *storageService) SaveFile(ctx context.Context, file *multipart.FileHeader, prefix string) (string, error) {
	if s.maxFileSize > 0 && file.Size > s.maxFileSize {
		return "", fmt.Errorf("file %s exceeds the %d byte limit", file.Filename, s.maxFileSize)
	}

	key, err := ObjectKey(prefix, uuid.New().String(), file.Filename)
	if err != nil {
		return "", err
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("failed to open uploaded file: %w", err)
	}
	defer src.Close()

	if err := s.PutObject(ctx, key, src, file.Size); err != nil {
		return "", err
	}

	return key, nil
}

func (s *storageService) PutObject(ctx context.Context, key string, data io.Reader, size int64) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, data, size, minio.PutObjectOptions{
		ContentType: contentTypes[strings.ToLower(path.Ext(key))],
	})
	if err != nil {
		return fmt.Errorf("failed to upload %s: %w", key, err)
	}
	return nil
}

// ReadText downloads an object and returns its text content.
func (s *storageService) ReadText(ctx context.Context, key string) (string, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("failed to get %s: %w", key, err)
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return "", fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}

	return DecodeText(key, data, s.pdf)
}

// LatestKey returns the most recently modified object key under prefix, or ""
// when there is none.
func (s *storageService) LatestKey(ctx context.Context, prefix string) (string, error) {
	var (
		latest   string
		modified time.Time
	)

	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{
		Prefix:    prefix,
		Recursive: true,
	}) {
		if obj.Err != nil {
			return "", fmt.Errorf("failed to list %s: %w", prefix, obj.Err)
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		if latest == "" || obj.LastModified.After(modified) {
			latest = obj.Key
			modified = obj.LastModified
		}
	}

	return latest, nil
}

func (s *storageService) DeleteFile(ctx context.Context, key string) error {
	if err := s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("failed to delete file: %w", err)
	}
	return nil
}

// ObjectKey builds "<prefix><id>/<file>" for an uploaded file. Only file types
// that can be turned into text are accepted.
func ObjectKey(prefix, id, filename string) (string, error) {
	name := path.Base(strings.ReplaceAll(strings.TrimSpace(filename), `\`, "/"))
	if name == "." || name == "/" || name == "" {
		return "", fmt.Errorf("%w: empty file name", ErrUnsupportedFile)
	}

	ext := strings.ToLower(path.Ext(name))
	if _, ok := contentTypes[ext]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFile, ext)
	}

	if !strings.HasSuffix(prefix, "/") {
		prefix += "/"
	}

	return prefix + id + "/" + name, nil
}

// DecodeText turns object bytes into text based on the key's extension. PDFs go
// through the parser; everything else must be valid UTF-8.
func DecodeText(key string, data []byte, parser PDFParserService) (string, error) {
	if strings.ToLower(path.Ext(key)) == ".pdf" {
		if parser == nil {
			return "", fmt.Errorf("%w: no PDF parser for %s", ErrUnsupportedFile, key)
		}
		text, err := parser.ExtractTextFromBytes(data)
		if err != nil {
			return "", fmt.Errorf("failed to extract text from %s: %w", key, err)
		}
		return CleanText(text), nil
	}

	if !utf8.Valid(data) {
		return "", fmt.Errorf("%w: %s is not valid UTF-8 text", ErrUnsupportedFile, key)
	}

	return string(data), nil
}
