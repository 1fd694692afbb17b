// internal/extract/builder.go
package extract

import (
	"time"

	"chainlog-metrics/internal/model"
)

// Builder 는 추출된 값 하나를 MetricRecord 로 조립한다.
//
// ClusterID 는 프로세스 시작 시 설정에서 한 번 읽은 값이며,
// 비어 있어도 그대로 clusterId 차원 값으로 사용한다 (검증 없음).
type Builder struct {
	ClusterID string
}

func NewBuilder(clusterID string) Builder {
	return Builder{ClusterID: clusterID}
}

// Build
//
// - clusterId 차원은 항상 포함
// - instance 가 비어 있지 않을 때만 instanceId 차원 추가
// - timestamp 는 record 의 millisecond 값을 초 단위로 절삭한 UTC 시각
//
// 부수효과가 없는 순수 함수이다.
func (b Builder) Build(rec model.LogRecord, name string, value int64, unit model.Unit, instance string) model.MetricRecord {
	dims := make([]model.Dimension, 0, 2)
	dims = append(dims, model.Dimension{Name: model.DimClusterID, Value: b.ClusterID})
	if instance != "" {
		dims = append(dims, model.Dimension{Name: model.DimInstanceID, Value: instance})
	}

	return model.MetricRecord{
		Name:       name,
		Dimensions: dims,
		Timestamp:  timestampOf(rec),
		Value:      float64(value),
		Unit:       unit,
	}
}

// timestampOf 는 floor(ms/1000) 초의 UTC 시각을 반환한다.
// 음수 timestamp 도 내림 방향으로 절삭한다.
func timestampOf(rec model.LogRecord) time.Time {
	sec := rec.TimestampMillis / 1000
	if rec.TimestampMillis%1000 < 0 {
		sec--
	}
	return time.Unix(sec, 0).UTC()
}
