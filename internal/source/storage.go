package source

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"promofeed/internal/config"
	"promofeed/internal/constants"
	"promofeed/internal/extraction"
	"promofeed/internal/logger"
	"promofeed/pkg/metrics"
	"promofeed/pkg/models"
	"promofeed/pkg/tolerantjson"
)

// GetObjectAPI is the subset of *s3.Client the storage source needs.
type GetObjectAPI interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source reads the JSON snapshot of previously seen messages from object storage.
type S3Source struct {
	client    GetObjectAPI
	bucket    string
	key       string
	extractor *extraction.Extractor
	logger    logger.Logger
}

func NewS3Source(client GetObjectAPI, bucket, key string, extractor *extraction.Extractor, log logger.Logger) *S3Source {
	if key == "" {
		key = constants.DefaultStorageKey
	}
	return &S3Source{
		client:    client,
		bucket:    bucket,
		key:       key,
		extractor: extractor,
		logger:    log,
	}
}

// NewS3Client builds a client from the default AWS credential chain. A base
// endpoint switches to path-style addressing for non-AWS object stores.
func NewS3Client(ctx context.Context, cfg config.StorageConfig) (*s3.Client, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.Region))
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
			o.UsePathStyle = true
		}
	}), nil
}

// Load returns the stored records. A missing object, denied access, an empty
// body or an undecodable document all yield an empty list without error.
func (s *S3Source) Load(ctx context.Context) ([]models.MessageRecord, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		if isMissingOrDenied(err) {
			metrics.IncStorageLoad("missing")
			s.logger.InfowCtx(ctx, "Storage snapshot not available, returning empty list", "bucket", s.bucket, "key", s.key, "error", err)
			return []models.MessageRecord{}, nil
		}
		metrics.IncStorageLoad("error")
		return nil, fmt.Errorf("failed to get s3://%s/%s: %w", s.bucket, s.key, err)
	}
	if out.Body == nil {
		metrics.IncStorageLoad("empty")
		return []models.MessageRecord{}, nil
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		metrics.IncStorageLoad("error")
		return nil, fmt.Errorf("failed to read s3://%s/%s: %w", s.bucket, s.key, err)
	}

	decoded, err := tolerantjson.Unmarshal(string(raw))
	if err != nil {
		metrics.IncStorageLoad("invalid")
		s.logger.WarnwCtx(ctx, "Storage snapshot is not valid JSON, returning empty list", "key", s.key, "error", err)
		return []models.MessageRecord{}, nil
	}

	var items []interface{}
	switch v := decoded.(type) {
	case nil:
	case []interface{}:
		items = v
	default:
		items = []interface{}{v}
	}

	metrics.IncStorageLoad("success")
	return s.extractor.FromStorage(items), nil
}

func isMissingOrDenied(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "NoSuchKey", "NotFound", "AccessDenied":
			return true
		}
	}
	return strings.Contains(err.Error(), "NoSuchKey") || strings.Contains(err.Error(), "AccessDenied")
}
