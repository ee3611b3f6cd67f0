package main

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"path/filepath"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	awss3 "github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/hupe1980/edgequery/blobstore"
	minioblob "github.com/hupe1980/edgequery/blobstore/minio"
	s3blob "github.com/hupe1980/edgequery/blobstore/s3"
	"github.com/hupe1980/edgequery/internal/resource"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// location is a parsed output target.
type location struct {
	scheme string // "", "s3" or "minio"
	bucket string
	key    string
}

func parseLocation(s string) (location, error) {
	scheme, rest, ok := strings.Cut(s, "://")
	if !ok {
		return location{key: s}, nil
	}
	switch scheme {
	case "s3", "minio":
	default:
		return location{}, fmt.Errorf("unsupported output scheme %q", scheme)
	}

	bucket, key, _ := strings.Cut(rest, "/")
	if bucket == "" || key == "" || strings.HasSuffix(key, "/") {
		return location{}, fmt.Errorf("output %q must name a bucket and an object key", s)
	}
	return location{scheme: scheme, bucket: bucket, key: key}, nil
}

func (l location) String() string {
	if l.scheme == "" {
		return l.key
	}
	return l.scheme + "://" + l.bucket + "/" + l.key
}

// sink is where the encoded edge list goes.
type sink struct {
	loc     location
	store   blobstore.Store
	name    string
	stdout  io.Writer
	catalog *s3blob.Catalog
}

func openSink(ctx context.Context, cfg settings, stdout io.Writer) (*sink, error) {
	if cfg.out == "-" {
		return &sink{stdout: stdout}, nil
	}

	loc, err := parseLocation(cfg.out)
	if err != nil {
		return nil, err
	}
	s := &sink{loc: loc, name: loc.key}

	switch loc.scheme {
	case "":
		s.store = blobstore.NewLocalStore(filepath.Dir(loc.key))
		s.name = filepath.Base(loc.key)
	case "s3":
		var optFns []func(*config.LoadOptions) error
		if cfg.awsRegion != "" {
			optFns = append(optFns, config.WithRegion(cfg.awsRegion))
		}
		awsCfg, err := config.LoadDefaultConfig(ctx, optFns...)
		if err != nil {
			return nil, fmt.Errorf("load AWS config: %w", err)
		}
		s.store = s3blob.NewStore(awss3.NewFromConfig(awsCfg), loc.bucket, "")
		if cfg.catalogTable != "" {
			run := "s3://" + loc.bucket
			if dir := path.Dir(loc.key); dir != "." {
				run += "/" + dir
			}
			s.catalog = s3blob.NewCatalog(dynamodb.NewFromConfig(awsCfg), cfg.catalogTable, run)
		}
	case "minio":
		client, err := minio.New(cfg.minioEndpoint, &minio.Options{
			Creds:  credentials.NewStaticV4(cfg.minioAccessKey, cfg.minioSecretKey, ""),
			Secure: cfg.minioSecure,
		})
		if err != nil {
			return nil, fmt.Errorf("create MinIO client: %w", err)
		}
		s.store = minioblob.NewStore(client, loc.bucket, "")
	}

	return s, nil
}

// write streams data to the sink through the IO limiter of rc.
func (s *sink) write(ctx context.Context, data []byte, rc *resource.Controller) error {
	if s.store == nil {
		_, err := io.Copy(resource.NewRateLimitedWriter(ctx, s.stdout, rc), bytes.NewReader(data))
		return err
	}

	blob, err := s.store.Create(ctx, s.name)
	if err != nil {
		return fmt.Errorf("create %s: %w", s.loc, err)
	}
	if _, err := io.Copy(resource.NewRateLimitedWriter(ctx, blob, rc), bytes.NewReader(data)); err != nil {
		_ = blob.Abort()
		return fmt.Errorf("write %s: %w", s.loc, err)
	}
	if err := blob.Close(); err != nil {
		return fmt.Errorf("write %s: %w", s.loc, err)
	}
	return nil
}
