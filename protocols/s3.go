package protocols

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
)

// S3API is the subset of the S3 client used by S3FileSystem.
type S3API interface {
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
}

type S3Config struct {
	Bucket    string
	Prefix    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

// S3FileSystem lists a bucket as a directory tree using "/" as delimiter.
// Objects carry size and mtime in the listing; common prefixes carry nothing.
type S3FileSystem struct {
	client S3API
	bucket string
	prefix string // "" or ends with "/"
}

func NewS3FileSystem(ctx context.Context, cfg S3Config) (*S3FileSystem, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3: bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{}
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("s3: load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	})
	return NewS3FileSystemWithClient(client, cfg.Bucket, cfg.Prefix), nil
}

func NewS3FileSystemWithClient(client S3API, bucket, prefix string) *S3FileSystem {
	prefix = CleanPath(prefix)
	if prefix != "" {
		prefix += "/"
	}
	return &S3FileSystem{client: client, bucket: bucket, prefix: prefix}
}

func (s *S3FileSystem) key(relPath string) string {
	return s.prefix + CleanPath(relPath)
}

func (s *S3FileSystem) List(ctx context.Context, relPath string) ([]Entry, error) {
	dir := CleanPath(relPath)
	listPrefix := s.prefix
	if dir != "" {
		listPrefix += dir + "/"
	}

	input := &s3.ListObjectsV2Input{
		Bucket:    aws.String(s.bucket),
		Prefix:    aws.String(listPrefix),
		Delimiter: aws.String("/"),
	}

	var entries []Entry
	for {
		out, err := s.client.ListObjectsV2(ctx, input)
		if err != nil {
			return nil, fmt.Errorf("s3: list %q: %w", relPath, err)
		}

		// CommonPrefixes and Contents are each sorted by key; merge them
		// back into the order S3 listed them in.
		prefixes, objects := out.CommonPrefixes, out.Contents
		for len(prefixes) > 0 || len(objects) > 0 {
			if len(objects) == 0 || (len(prefixes) > 0 && aws.ToString(prefixes[0].Prefix) < aws.ToString(objects[0].Key)) {
				if e, ok := s3PrefixEntry(dir, listPrefix, prefixes[0]); ok {
					entries = append(entries, e)
				}
				prefixes = prefixes[1:]
				continue
			}
			if e, ok := s3ObjectEntry(dir, listPrefix, objects[0]); ok {
				entries = append(entries, e)
			}
			objects = objects[1:]
		}

		if !aws.ToBool(out.IsTruncated) || out.NextContinuationToken == nil {
			break
		}
		input.ContinuationToken = out.NextContinuationToken
	}
	return entries, nil
}

func (s *S3FileSystem) head(ctx context.Context, relPath string) (*s3.HeadObjectOutput, error) {
	out, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(relPath)),
	})
	if err != nil {
		return nil, fmt.Errorf("s3: head %q: %w", relPath, err)
	}
	return out, nil
}

func (s *S3FileSystem) FileSize(ctx context.Context, relPath string) (int64, error) {
	out, err := s.head(ctx, relPath)
	if err != nil {
		return 0, err
	}
	if out.ContentLength == nil {
		return 0, fmt.Errorf("s3: head %q: no content length", relPath)
	}
	return *out.ContentLength, nil
}

func (s *S3FileSystem) LastModified(ctx context.Context, relPath string) (time.Time, error) {
	out, err := s.head(ctx, relPath)
	if err != nil {
		return time.Time{}, err
	}
	if out.LastModified == nil {
		return time.Time{}, fmt.Errorf("s3: head %q: no last modified", relPath)
	}
	return *out.LastModified, nil
}

func (s *S3FileSystem) Capabilities() Capabilities {
	return Capabilities{DirectoryMetadata: false}
}

func (s *S3FileSystem) Close() error {
	return nil
}

func s3PrefixEntry(dir, listPrefix string, cp types.CommonPrefix) (Entry, bool) {
	name := strings.TrimSuffix(strings.TrimPrefix(aws.ToString(cp.Prefix), listPrefix), "/")
	if name == "" {
		return Entry{}, false
	}
	return Entry{Path: JoinPath(dir, name), Kind: KindDir}, true
}

func s3ObjectEntry(dir, listPrefix string, obj types.Object) (Entry, bool) {
	name := strings.TrimPrefix(aws.ToString(obj.Key), listPrefix)
	// directory placeholder objects
	if name == "" || strings.HasSuffix(name, "/") {
		return Entry{}, false
	}
	e := Entry{Path: JoinPath(dir, name), Kind: KindFile}
	if obj.Size != nil {
		e.Size, e.HasSize = *obj.Size, true
	}
	if obj.LastModified != nil {
		e.ModTime, e.HasModTime = *obj.LastModified, true
	}
	return e, true
}
