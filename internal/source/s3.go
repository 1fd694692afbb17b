// internal/source/s3.go
package source

import (
	"context"
	"fmt"
	"io"
	"sort"

	"chainlog-metrics/internal/config"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfgLib "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3API 는 replay 에 필요한 S3 client 메서드만 모은 인터페이스.
type S3API interface {
	s3.ListObjectsV2APIClient
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
}

// S3Source
// ------------------------------------------------------------
// Firehose 가 S3 에 적재한 CloudWatch Logs 구독 배치를 다시 읽는다.
// 객체 하나에는 gzip 으로 압축된 JSON 배치가 여러 개 이어져 있다.
//
// cmd/replay 에서 누락 구간을 다시 metric 으로 만들 때 사용한다.
type S3Source struct {
	client S3API
}

// NewS3Source 는 기본 credential chain 으로 S3 client 를 만든다.
func NewS3Source(ctx context.Context, cfg config.Config) (*S3Source, error) {
	opts := []func(*awsCfgLib.LoadOptions) error{}
	if cfg.AWSRegion != "" {
		opts = append(opts, awsCfgLib.WithRegion(cfg.AWSRegion))
	}

	awsCfg, err := awsCfgLib.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	return NewS3SourceWithClient(s3.NewFromConfig(awsCfg)), nil
}

func NewS3SourceWithClient(client S3API) *S3Source {
	return &S3Source{client: client}
}

// List 는 prefix 아래 객체 key 를 사전순으로 반환한다.
// Firehose key 는 시간 기반(YYYY/MM/DD/HH/...)이므로 곧 시간순이다.
func (s *S3Source) List(ctx context.Context, bucket, prefix string) ([]string, error) {
	var keys []string

	p := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(bucket),
		Prefix: aws.String(prefix),
	})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("list s3://%s/%s: %w", bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			keys = append(keys, aws.ToString(obj.Key))
		}
	}

	sort.Strings(keys)
	return keys, nil
}

// Open 은 객체 본문을 반환한다. 호출자가 Close 해야 한다.
func (s *S3Source) Open(ctx context.Context, bucket, key string) (io.ReadCloser, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, fmt.Errorf("get s3://%s/%s: %w", bucket, key, err)
	}
	return out.Body, nil
}
