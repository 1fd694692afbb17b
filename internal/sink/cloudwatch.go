// internal/sink/cloudwatch.go
package sink

import (
	"context"
	"fmt"
	"time"

	"chainlog-metrics/internal/config"
	"chainlog-metrics/internal/model"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsCfgLib "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch/types"
)

// PutMetricData 1회 호출에 넣을 수 있는 최대 datum 수
const maxDatumsPerCall = 1000

// PutMetricDataAPI 는 CloudWatch client 중 사용하는 부분만 뽑은 인터페이스.
// 테스트에서는 fake 로 대체한다.
type PutMetricDataAPI interface {
	PutMetricData(ctx context.Context, in *cloudwatch.PutMetricDataInput, optFns ...func(*cloudwatch.Options)) (*cloudwatch.PutMetricDataOutput, error)
}

// CloudWatch 는 PutMetricData 로 metric 을 제출하는 Sink 구현이다.
// - 호출마다 SinkTimeout 적용
// - 애플리케이션 레벨 retry 없음
type CloudWatch struct {
	client  PutMetricDataAPI
	timeout time.Duration
}

// NewCloudWatch 는 기본 credential chain 과 리전으로 client 를 만든다.
func NewCloudWatch(ctx context.Context, cfg config.Config) (*CloudWatch, error) {
	opts := []func(*awsCfgLib.LoadOptions) error{}
	if cfg.AWSRegion != "" {
		opts = append(opts, awsCfgLib.WithRegion(cfg.AWSRegion))
	}

	awsCfg, err := awsCfgLib.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return NewCloudWatchWithClient(cloudwatch.NewFromConfig(awsCfg), cfg.SinkTimeout), nil
}

func NewCloudWatchWithClient(client PutMetricDataAPI, timeout time.Duration) *CloudWatch {
	return &CloudWatch{client: client, timeout: timeout}
}

// Submit
// ------
// metrics 를 namespace 아래로 제출한다.
// 1000 건을 넘으면 나눠서 보내며, 중간에 실패하면 즉시 반환한다.
func (c *CloudWatch) Submit(ctx context.Context, namespace string, metrics []model.MetricRecord) error {
	for start := 0; start < len(metrics); start += maxDatumsPerCall {
		end := start + maxDatumsPerCall
		if end > len(metrics) {
			end = len(metrics)
		}
		if err := c.put(ctx, namespace, metrics[start:end]); err != nil {
			return err
		}
	}
	return nil
}

func (c *CloudWatch) put(ctx context.Context, namespace string, metrics []model.MetricRecord) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	data := make([]types.MetricDatum, 0, len(metrics))
	for _, m := range metrics {
		data = append(data, toDatum(m))
	}

	_, err := c.client.PutMetricData(ctx, &cloudwatch.PutMetricDataInput{
		Namespace:  aws.String(namespace),
		MetricData: data,
	})
	if err != nil {
		return fmt.Errorf("put metric data (%s, %d metrics): %w", namespace, len(metrics), err)
	}
	return nil
}

// toDatum 은 MetricRecord 를 CloudWatch MetricDatum 으로 변환한다.
// 차원 순서는 그대로 유지한다.
func toDatum(m model.MetricRecord) types.MetricDatum {
	dims := make([]types.Dimension, 0, len(m.Dimensions))
	for _, d := range m.Dimensions {
		dims = append(dims, types.Dimension{
			Name:  aws.String(d.Name),
			Value: aws.String(d.Value),
		})
	}

	return types.MetricDatum{
		MetricName: aws.String(m.Name),
		Dimensions: dims,
		Timestamp:  aws.Time(m.Timestamp),
		Value:      aws.Float64(m.Value),
		Unit:       types.StandardUnit(m.Unit),
	}
}
