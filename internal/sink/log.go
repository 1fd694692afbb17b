// internal/sink/log.go
package sink

import (
	"context"

	"chainlog-metrics/internal/model"

	"github.com/rs/zerolog"
)

// Log 는 metric 을 CloudWatch 대신 구조화 로그로 남기는 dry-run Sink.
// SINK=log 일 때 사용한다 (로컬 개발, 규칙 변경 검증).
type Log struct {
	logger zerolog.Logger
}

func NewLog(l zerolog.Logger) *Log {
	return &Log{logger: l}
}

func (s *Log) Submit(_ context.Context, namespace string, metrics []model.MetricRecord) error {
	for _, m := range metrics {
		dims := zerolog.Dict()
		for _, d := range m.Dimensions {
			dims.Str(d.Name, d.Value)
		}
		s.logger.Info().
			Str("namespace", namespace).
			Str("metric", m.Name).
			Float64("value", m.Value).
			Str("unit", string(m.Unit)).
			Time("ts", m.Timestamp).
			Dict("dimensions", dims).
			Msg("metric")
	}
	return nil
}
