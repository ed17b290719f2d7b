package staging

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"NewsPolarity/internal/config"
	"NewsPolarity/internal/domain"
	"NewsPolarity/internal/ports"
)

const (
	keySuffix    = "_article_data.csv"
	keyTimestamp = "2006-01-02_15-04-05"
)

var slugExpr = regexp.MustCompile(`[^a-z0-9]+`)

// S3API is the subset of the S3 client the store relies on.
type S3API interface {
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
}

// Store keeps scraped batches as CSV objects in one bucket.
type Store struct {
	client S3API
	bucket string
	logger *slog.Logger
	now    func() time.Time
}

var _ ports.StagingStore = (*Store)(nil)

// NewStore wraps an S3 client for the given bucket.
func NewStore(client S3API, bucket string, logger *slog.Logger) *Store {
	return &Store{client: client, bucket: bucket, logger: logger, now: time.Now}
}

// NewS3Client builds an SDK client from config. Static keys and a custom endpoint are optional.
func NewS3Client(ctx context.Context, cfg config.StagingConfig) (*s3.Client, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, awsconfig.WithRegion(cfg.Region))
	}
	if cfg.AccessKeyID != "" && cfg.SecretAccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}

// Key names the object for one source batch written at ts.
func Key(ts time.Time, source string) string {
	return ts.UTC().Format(keyTimestamp) + "_" + Slug(source) + keySuffix
}

// Slug lowercases a source name and collapses punctuation to underscores.
func Slug(source string) string {
	slug := slugExpr.ReplaceAllString(strings.ToLower(source), "_")
	slug = strings.Trim(slug, "_")
	if slug == "" {
		return "unknown"
	}
	return slug
}

// PutBatch writes rows as one object and returns its key.
func (s *Store) PutBatch(ctx context.Context, source string, rows []domain.RawArticle) (string, error) {
	body, err := EncodeCSV(rows)
	if err != nil {
		return "", fmt.Errorf("encode batch: %w", err)
	}

	key := Key(s.now(), source)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String("text/csv"),
	})
	if err != nil {
		return "", fmt.Errorf("put %s: %w", key, err)
	}

	s.debug("batch staged", "key", key, "rows", len(rows))
	return key, nil
}

// ListRecent returns batch keys modified within maxAge, oldest first.
// It returns domain.ErrNothingStaged when none match.
func (s *Store) ListRecent(ctx context.Context, maxAge time.Duration) ([]string, error) {
	cutoff := s.now().Add(-maxAge)
	var keys []string

	pages := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{Bucket: aws.String(s.bucket)})
	for pages.HasMorePages() {
		page, err := pages.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list bucket %s: %w", s.bucket, err)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if !strings.HasSuffix(key, keySuffix) {
				continue
			}
			if maxAge > 0 && obj.LastModified != nil && obj.LastModified.Before(cutoff) {
				continue
			}
			keys = append(keys, key)
		}
	}

	if len(keys) == 0 {
		return nil, domain.ErrNothingStaged
	}
	sort.Strings(keys)
	return keys, nil
}

// Get reads and decodes one batch.
func (s *Store) Get(ctx context.Context, key string) ([]domain.RawArticle, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	defer out.Body.Close()

	rows, err := DecodeCSV(out.Body)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", key, err)
	}
	return rows, nil
}

// Delete removes one batch.
func (s *Store) Delete(ctx context.Context, key string) error {
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

func (s *Store) debug(msg string, args ...any) {
	if s.logger != nil {
		s.logger.Debug(msg, args...)
	}
}
