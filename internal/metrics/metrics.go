package metrics

import (
	"fmt"
	"strings"
	"sync/atomic"
)

// Metrics 는 변환 프로세스의 운영 카운터 모음이다.
// CloudWatch 로 보내는 metric 이 아니라, 운영자가 처리 상황을
// 확인하기 위한 내부 지표이다 (/metrics, 호출 종료 로그).
type Metrics struct {
	// ======================
	// 배치 레벨 지표
	// ======================

	// BatchesTotal
	// - 디코딩에 성공한 로그 배치 수 (CONTROL_MESSAGE 포함).
	BatchesTotal int64

	// BatchDecodeErrorsTotal
	// - base64 / gzip / JSON 단계에서 실패한 payload 수.
	// - 0 이 아니면 구독 필터 설정 또는 상위 파이프라인을 확인해야 한다.
	BatchDecodeErrorsTotal int64

	// ControlMessagesTotal
	// - CloudWatch Logs 가 구독 대상 확인용으로 보내는 CONTROL_MESSAGE 배치 수.
	ControlMessagesTotal int64

	// ======================
	// 레코드 레벨 지표
	// ======================

	// RecordsTotal
	// - 추출기를 거친 로그 라인 수.
	RecordsTotal int64

	// RecordsWithoutMetricsTotal
	// - 어떤 규칙에도 맞지 않아 sink 호출 없이 넘어간 로그 라인 수.
	// - RecordsTotal 대비 비율이 갑자기 변하면 노드 로그 포맷 변경을 의심.
	RecordsWithoutMetricsTotal int64

	// ======================
	// Sink 지표
	// ======================

	// SinkCallsTotal
	// - 시도한 sink 제출 횟수 (레코드 1건당 최대 1회).
	SinkCallsTotal int64

	// SinkErrorsTotal
	// - 실패한 sink 제출 횟수. 실패 시 해당 호출 전체가 실패한다.
	SinkErrorsTotal int64

	// MetricsSubmittedTotal
	// - 제출에 성공한 MetricRecord 수 (호출 수가 아니라 metric 개수).
	MetricsSubmittedTotal int64
}

func New() *Metrics {
	return &Metrics{}
}

// Fields 는 구조화 로그에 붙이기 위한 스냅샷이다.
func (m *Metrics) Fields() map[string]any {
	return map[string]any{
		"batches_total":                 atomic.LoadInt64(&m.BatchesTotal),
		"batch_decode_errors_total":     atomic.LoadInt64(&m.BatchDecodeErrorsTotal),
		"control_messages_total":        atomic.LoadInt64(&m.ControlMessagesTotal),
		"records_total":                 atomic.LoadInt64(&m.RecordsTotal),
		"records_without_metrics_total": atomic.LoadInt64(&m.RecordsWithoutMetricsTotal),
		"sink_calls_total":              atomic.LoadInt64(&m.SinkCallsTotal),
		"sink_errors_total":             atomic.LoadInt64(&m.SinkErrorsTotal),
		"metrics_submitted_total":       atomic.LoadInt64(&m.MetricsSubmittedTotal),
	}
}

func (m *Metrics) String() string {
	var sb strings.Builder
	sb.Grow(256)

	fmt.Fprintf(&sb, "batches_total=%d\n", atomic.LoadInt64(&m.BatchesTotal))
	fmt.Fprintf(&sb, "batch_decode_errors_total=%d\n", atomic.LoadInt64(&m.BatchDecodeErrorsTotal))
	fmt.Fprintf(&sb, "control_messages_total=%d\n", atomic.LoadInt64(&m.ControlMessagesTotal))

	fmt.Fprintf(&sb, "records_total=%d\n", atomic.LoadInt64(&m.RecordsTotal))
	fmt.Fprintf(&sb, "records_without_metrics_total=%d\n", atomic.LoadInt64(&m.RecordsWithoutMetricsTotal))

	fmt.Fprintf(&sb, "sink_calls_total=%d\n", atomic.LoadInt64(&m.SinkCallsTotal))
	fmt.Fprintf(&sb, "sink_errors_total=%d\n", atomic.LoadInt64(&m.SinkErrorsTotal))
	fmt.Fprintf(&sb, "metrics_submitted_total=%d\n", atomic.LoadInt64(&m.MetricsSubmittedTotal))

	return sb.String()
}
