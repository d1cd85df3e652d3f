package source

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"promofeed/internal/extraction"
	"promofeed/internal/logger"
	"promofeed/pkg/idgen"
)

type fakeS3 struct {
	body   string
	noBody bool
	err    error
	input  *s3.GetObjectInput
}

func (f *fakeS3) GetObject(_ context.Context, in *s3.GetObjectInput, _ ...func(*s3.Options)) (*s3.GetObjectOutput, error) {
	f.input = in
	if f.err != nil {
		return nil, f.err
	}
	if f.noBody {
		return &s3.GetObjectOutput{}, nil
	}
	return &s3.GetObjectOutput{Body: io.NopCloser(strings.NewReader(f.body))}, nil
}

func newTestS3Source(client GetObjectAPI, key string) *S3Source {
	ext := extraction.New(
		extraction.WithClock(func() time.Time { return time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC) }),
		extraction.WithIDGenerator(idgen.Sequence("storage")),
	)
	return NewS3Source(client, "promo-bucket", key, ext, logger.NopLogger())
}

func TestS3Source_Load(t *testing.T) {
	client := &fakeS3{body: `[{"code": "BOBA25", "location": "Phoenix", "price": 15, "extra": 1}, {"location": "Tempe"}]`}

	recs, err := newTestS3Source(client, "").Load(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "promo-bucket", aws.ToString(client.input.Bucket))
	assert.Equal(t, "comment_db.json", aws.ToString(client.input.Key))

	require.Len(t, recs, 2)
	assert.Equal(t, "storage-1", recs[0].ID)
	assert.Equal(t, "BOBA25", recs[0].Code)
	assert.Equal(t, map[string]interface{}{"location": "Phoenix", "price": float64(15)}, recs[0].Metadata)
	assert.Equal(t, "No code provided", recs[1].Message)
}

func TestS3Source_SingleObjectDocument(t *testing.T) {
	recs, err := newTestS3Source(&fakeS3{body: `{"code": "ONLY"}`}, "custom.json").Load(context.Background())
	require.NoError(t, err)
	require.Len(t, recs, 1)
	assert.Equal(t, "ONLY", recs[0].Code)
}

func TestS3Source_EmptyResults(t *testing.T) {
	tests := []struct {
		name   string
		client *fakeS3
	}{
		{"no such key", &fakeS3{err: &types.NoSuchKey{}}},
		{"access denied", &fakeS3{err: &smithy.GenericAPIError{Code: "AccessDenied", Message: "denied"}}},
		{"nil body", &fakeS3{noBody: true}},
		{"invalid json", &fakeS3{body: "{not json"}},
		{"null document", &fakeS3{body: "null"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := newTestS3Source(tt.client, "").Load(context.Background())
			require.NoError(t, err)
			assert.NotNil(t, recs)
			assert.Empty(t, recs)
		})
	}
}

func TestS3Source_OtherErrorsReturned(t *testing.T) {
	_, err := newTestS3Source(&fakeS3{err: errors.New("connection reset")}, "").Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "s3://promo-bucket/comment_db.json")
}
