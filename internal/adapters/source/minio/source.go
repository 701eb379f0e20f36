// Package minio lee fichas .txt desde un bucket S3 compatible.
package minio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"sort"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/WINTERANDREA/vet-sheet-parser/internal/domain/documents"
)

type Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Prefix    string
	UseSSL    bool
}

// objectStore es el subconjunto del cliente que se usa; permite fakes en tests.
type objectStore interface {
	ListObjects(ctx context.Context, bucket string, opts minio.ListObjectsOptions) <-chan minio.ObjectInfo
	GetObject(ctx context.Context, bucket, object string, opts minio.GetObjectOptions) (*minio.Object, error)
}

type Source struct {
	client objectStore
	bucket string
	prefix string
}

var _ documents.Source = (*Source)(nil)

func New(cfg Config) (*Source, error) {
	if strings.TrimSpace(cfg.Bucket) == "" {
		return nil, errors.New("minio: bucket required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: client: %w", err)
	}
	return &Source{client: client, bucket: cfg.Bucket, prefix: normalizePrefix(cfg.Prefix)}, nil
}

func normalizePrefix(p string) string {
	p = strings.Trim(strings.TrimSpace(p), "/")
	if p == "" {
		return ""
	}
	return p + "/"
}

// List sólo considera objetos directamente bajo el prefijo.
func (s *Source) List(ctx context.Context) ([]documents.DocumentInfo, error) {
	out := []documents.DocumentInfo{}
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: s.prefix}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("minio: list: %w", obj.Err)
		}
		name := strings.TrimPrefix(obj.Key, s.prefix)
		if name == "" || strings.Contains(name, "/") || !strings.EqualFold(path.Ext(name), documents.Extension) {
			continue
		}
		out = append(out, documents.DocumentInfo{
			Name:       name,
			Size:       obj.Size,
			ModifiedAt: obj.LastModified.UTC(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *Source) Read(ctx context.Context, name string) ([]byte, error) {
	if err := documents.ValidateName(name); err != nil {
		return nil, err
	}
	obj, err := s.client.GetObject(ctx, s.bucket, s.prefix+name, minio.GetObjectOptions{})
	if err != nil {
		return nil, mapErr(err)
	}
	defer obj.Close()

	// GetObject es perezoso: el 404 aparece en la primera lectura.
	b, err := io.ReadAll(obj)
	if err != nil {
		return nil, mapErr(err)
	}
	return b, nil
}

func mapErr(err error) error {
	if minio.ToErrorResponse(err).Code == "NoSuchKey" {
		return documents.ErrNotFound
	}
	return fmt.Errorf("minio: read: %w", err)
}
