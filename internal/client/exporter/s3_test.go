package exporter

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePutter struct {
	in   *s3.PutObjectInput
	body []byte
	err  error
}

func (f *fakePutter) PutObject(ctx context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.in = in
	f.body, _ = io.ReadAll(in.Body)
	return &s3.PutObjectOutput{}, f.err
}

func stubAWS(t *testing.T, putter *fakePutter, check func(lo awsconfig.LoadOptions, o s3.Options)) {
	t.Helper()

	origLoad := loadDefaultAWSConfig
	origNew := newS3ClientFromConfig
	t.Cleanup(func() {
		loadDefaultAWSConfig = origLoad
		newS3ClientFromConfig = origNew
	})

	var lo awsconfig.LoadOptions
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		for _, fn := range optFns {
			require.NoError(t, fn(&lo))
		}
		return aws.Config{}, nil
	}
	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectPutter {
		var o s3.Options
		for _, fn := range optFns {
			fn(&o)
		}
		if check != nil {
			check(lo, o)
		}
		return putter
	}
}

func TestNewS3Sink_AppliesConfig(t *testing.T) {
	called := false
	stubAWS(t, &fakePutter{}, func(lo awsconfig.LoadOptions, o s3.Options) {
		called = true
		assert.Equal(t, "eu-central-1", lo.Region)
		require.NotNil(t, lo.Credentials)
		creds, err := lo.Credentials.Retrieve(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "minioadmin", creds.AccessKeyID)
		assert.Equal(t, "minio-secret", creds.SecretAccessKey)

		require.NotNil(t, o.BaseEndpoint)
		assert.Equal(t, "http://127.0.0.1:9000", *o.BaseEndpoint)
		assert.True(t, o.UsePathStyle)
	})

	_, err := NewS3Sink(context.Background(), S3Config{
		Bucket:    "reports",
		Region:    "eu-central-1",
		Endpoint:  "http://127.0.0.1:9000",
		AccessKey: "minioadmin",
		SecretKey: "minio-secret",
	})
	require.NoError(t, err)
	assert.True(t, called)
}

func TestNewS3Sink_Defaults(t *testing.T) {
	stubAWS(t, &fakePutter{}, func(lo awsconfig.LoadOptions, o s3.Options) {
		assert.Equal(t, defaultRegion, lo.Region)
		assert.Nil(t, lo.Credentials)
		assert.Nil(t, o.BaseEndpoint)
		assert.False(t, o.UsePathStyle)
	})

	_, err := NewS3Sink(context.Background(), S3Config{Bucket: "reports"})
	require.NoError(t, err)
}

func TestNewS3Sink_Errors(t *testing.T) {
	_, err := NewS3Sink(context.Background(), S3Config{})
	require.Error(t, err)

	origLoad := loadDefaultAWSConfig
	t.Cleanup(func() { loadDefaultAWSConfig = origLoad })
	loadDefaultAWSConfig = func(ctx context.Context, optFns ...func(*awsconfig.LoadOptions) error) (aws.Config, error) {
		return aws.Config{}, errors.New("load-fail")
	}

	_, err = NewS3Sink(context.Background(), S3Config{Bucket: "reports"})
	require.ErrorContains(t, err, "load-fail")
}

func TestS3Sink_Put(t *testing.T) {
	putter := &fakePutter{}
	stubAWS(t, putter, nil)

	s, err := NewS3Sink(context.Background(), S3Config{Bucket: "reports", Prefix: "audit/2026"})
	require.NoError(t, err)

	where, err := s.Put(context.Background(), "auditoria_2026-10-19.xlsx", "application/vnd.ms-excel", []byte("sheet"))
	require.NoError(t, err)

	assert.Equal(t, "s3://reports/audit/2026/auditoria_2026-10-19.xlsx", where)
	require.NotNil(t, putter.in)
	assert.Equal(t, "reports", aws.ToString(putter.in.Bucket))
	assert.Equal(t, "audit/2026/auditoria_2026-10-19.xlsx", aws.ToString(putter.in.Key))
	assert.Equal(t, "application/vnd.ms-excel", aws.ToString(putter.in.ContentType))
	assert.Equal(t, "sheet", string(putter.body))
}

func TestS3Sink_PutError(t *testing.T) {
	putter := &fakePutter{err: errors.New("access denied")}
	stubAWS(t, putter, nil)

	s, err := NewS3Sink(context.Background(), S3Config{Bucket: "reports"})
	require.NoError(t, err)

	_, err = s.Put(context.Background(), "a.pdf", "", nil)
	require.ErrorContains(t, err, "access denied")
	assert.Nil(t, putter.in.ContentType)
}
