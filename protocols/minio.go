package protocols

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

type MinioConfig struct {
	Endpoint  string // host:port, no scheme
	Bucket    string
	Prefix    string
	Region    string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

// MinioFileSystem lists a bucket through minio-go. Like S3FileSystem,
// directories are virtual prefixes without metadata.
type MinioFileSystem struct {
	client *minio.Client
	bucket string
	prefix string
}

func NewMinioFileSystem(cfg MinioConfig) (*MinioFileSystem, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio: endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("minio: bucket is required")
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("minio: new client: %w", err)
	}
	prefix := CleanPath(cfg.Prefix)
	if prefix != "" {
		prefix += "/"
	}
	return &MinioFileSystem{client: client, bucket: cfg.Bucket, prefix: prefix}, nil
}

func (m *MinioFileSystem) List(ctx context.Context, relPath string) ([]Entry, error) {
	dir := CleanPath(relPath)
	listPrefix := m.prefix
	if dir != "" {
		listPrefix += dir + "/"
	}

	var entries []Entry
	for obj := range m.client.ListObjects(ctx, m.bucket, minio.ListObjectsOptions{
		Prefix:    listPrefix,
		Recursive: false,
	}) {
		if obj.Err != nil {
			return nil, fmt.Errorf("minio: list %q: %w", relPath, obj.Err)
		}
		if e, ok := minioEntry(dir, listPrefix, obj); ok {
			entries = append(entries, e)
		}
	}
	return entries, nil
}

// minioEntry maps a non-recursive listing item. Common prefixes come back as
// keys ending in "/" with no size or mtime.
func minioEntry(dir, listPrefix string, obj minio.ObjectInfo) (Entry, bool) {
	name := strings.TrimPrefix(obj.Key, listPrefix)
	if name == "" {
		return Entry{}, false
	}
	if strings.HasSuffix(name, "/") {
		return Entry{Path: JoinPath(dir, strings.TrimSuffix(name, "/")), Kind: KindDir}, true
	}
	return Entry{
		Path:       JoinPath(dir, name),
		Kind:       KindFile,
		Size:       obj.Size,
		HasSize:    true,
		ModTime:    obj.LastModified,
		HasModTime: !obj.LastModified.IsZero(),
	}, true
}

func (m *MinioFileSystem) stat(ctx context.Context, relPath string) (minio.ObjectInfo, error) {
	info, err := m.client.StatObject(ctx, m.bucket, m.prefix+CleanPath(relPath), minio.StatObjectOptions{})
	if err != nil {
		return minio.ObjectInfo{}, fmt.Errorf("minio: stat %q: %w", relPath, err)
	}
	return info, nil
}

func (m *MinioFileSystem) FileSize(ctx context.Context, relPath string) (int64, error) {
	info, err := m.stat(ctx, relPath)
	if err != nil {
		return 0, err
	}
	return info.Size, nil
}

func (m *MinioFileSystem) LastModified(ctx context.Context, relPath string) (time.Time, error) {
	info, err := m.stat(ctx, relPath)
	if err != nil {
		return time.Time{}, err
	}
	return info.LastModified, nil
}

func (m *MinioFileSystem) Capabilities() Capabilities {
	return Capabilities{DirectoryMetadata: false}
}

func (m *MinioFileSystem) Close() error {
	return nil
}
