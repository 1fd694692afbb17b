// internal/processor/processor.go
package processor

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"chainlog-metrics/internal/codec"
	"chainlog-metrics/internal/extract"
	"chainlog-metrics/internal/metrics"
	"chainlog-metrics/internal/model"
	"chainlog-metrics/internal/sink"

	"github.com/rs/zerolog/log"
)

// ErrSink 는 sink 제출 실패를 감싼다. 호출자는 errors.Is 로 구분한다.
var ErrSink = errors.New("metrics sink submission failed")

// Processor
// ------------------------------------------------------------
// 한 번의 호출에서 LogBatch 하나를 처리하는 배치 처리기.
// master / replica 는 Role 로만 구분되며, "순회 → 추출 → 제출"
// 골격은 이 타입 하나에 있다.
//
// 호출 사이에 공유하는 가변 상태가 없다 (운영 카운터 제외).
// 레코드는 배치 안의 순서대로 동기적으로 처리한다.
type Processor struct {
	role      model.Role
	extractor extract.Extractor
	sink      sink.Sink
	metrics   *metrics.Metrics
}

// New 는 role 에 맞는 Extractor 를 골라 Processor 를 만든다.
func New(role model.Role, b extract.Builder, s sink.Sink, m *metrics.Metrics) (*Processor, error) {
	ex, err := extract.ForRole(role, b)
	if err != nil {
		return nil, err
	}
	if m == nil {
		m = metrics.New()
	}
	return &Processor{role: role, extractor: ex, sink: s, metrics: m}, nil
}

func (p *Processor) Role() model.Role { return p.role }

// Result 는 배치 1건의 처리 요약.
type Result struct {
	Records   int // 처리한 로그 라인 수
	SinkCalls int // 성공한 sink 호출 수
	Metrics   int // 제출한 MetricRecord 수
}

// Process
//
//  1. CONTROL_MESSAGE 배치는 건너뛴다 (sink 호출 없음)
//  2. 레코드마다 추출기 실행
//  3. 결과가 있으면 그 레코드의 metric 만으로 sink 1회 호출
//  4. 결과가 없으면 호출하지 않음
//
// sink 실패 시 재시도 없이 즉시 에러를 반환한다.
// 이미 제출된 앞쪽 레코드는 되돌리지 않는다 (checkpoint 없음).
func (p *Processor) Process(ctx context.Context, batch model.LogBatch) (Result, error) {
	var res Result

	atomic.AddInt64(&p.metrics.BatchesTotal, 1)
	if batch.IsControl() {
		atomic.AddInt64(&p.metrics.ControlMessagesTotal, 1)
		log.Debug().
			Str("log_group", batch.LogGroup).
			Str("log_stream", batch.LogStream).
			Msg("control message skipped")
		return res, nil
	}

	namespace := p.role.Namespace()

	for _, rec := range batch.Records {
		// shutdown / invocation deadline 체크
		if err := ctx.Err(); err != nil {
			return res, err
		}

		stream := batch.LogStream
		if stream == "" {
			stream = rec.LogStream
		}

		res.Records++
		atomic.AddInt64(&p.metrics.RecordsTotal, 1)

		out := p.extractor.Extract(rec, stream)
		if len(out) == 0 {
			atomic.AddInt64(&p.metrics.RecordsWithoutMetricsTotal, 1)
			continue
		}

		atomic.AddInt64(&p.metrics.SinkCallsTotal, 1)
		if err := p.sink.Submit(ctx, namespace, out); err != nil {
			atomic.AddInt64(&p.metrics.SinkErrorsTotal, 1)
			return res, fmt.Errorf("%w: record %q: %v", ErrSink, rec.ID, err)
		}

		res.SinkCalls++
		res.Metrics += len(out)
		atomic.AddInt64(&p.metrics.MetricsSubmittedTotal, int64(len(out)))
	}

	log.Info().
		Str("role", p.role.String()).
		Str("log_stream", batch.LogStream).
		Int("records", res.Records).
		Int("sink_calls", res.SinkCalls).
		Int("metrics", res.Metrics).
		Msg("batch processed")

	return res, nil
}

// ProcessEvent 는 Lambda 트리거 이벤트 원문을 디코딩한 뒤 Process 한다.
// 디코딩 실패는 codec.ErrMalformedPayload 로 반환된다.
func (p *Processor) ProcessEvent(ctx context.Context, raw []byte) (Result, error) {
	batch, err := codec.DecodeEvent(raw)
	if err != nil {
		atomic.AddInt64(&p.metrics.BatchDecodeErrorsTotal, 1)
		return Result{}, err
	}
	return p.Process(ctx, batch)
}

// ProcessData 는 base64 data 문자열만 받은 경우에 사용한다.
func (p *Processor) ProcessData(ctx context.Context, data string) (Result, error) {
	batch, err := codec.DecodeData(data)
	if err != nil {
		atomic.AddInt64(&p.metrics.BatchDecodeErrorsTotal, 1)
		return Result{}, err
	}
	return p.Process(ctx, batch)
}
