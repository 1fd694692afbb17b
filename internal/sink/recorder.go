// internal/sink/recorder.go
package sink

import (
	"context"
	"sync"

	"chainlog-metrics/internal/model"
)

// Call 은 Recorder 가 받은 제출 1건.
type Call struct {
	Namespace string
	Metrics   []model.MetricRecord
}

// Recorder 는 제출 내용을 메모리에 기록하는 Sink.
// 외부 서비스 없이 처리 결과를 검증할 때 사용한다.
//
// FailAt(1부터) 번째 호출부터 Err 를 반환한다. 0 이면 실패하지 않는다.
// 실패한 호출도 Calls 에는 기록된다.
type Recorder struct {
	FailAt int
	Err    error

	mu    sync.Mutex
	calls []Call
}

func (r *Recorder) Submit(_ context.Context, namespace string, metrics []model.MetricRecord) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := make([]model.MetricRecord, len(metrics))
	copy(cp, metrics)
	r.calls = append(r.calls, Call{Namespace: namespace, Metrics: cp})

	if r.FailAt > 0 && len(r.calls) >= r.FailAt {
		return r.Err
	}
	return nil
}

// Calls 는 지금까지의 호출 목록 복사본을 반환한다.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Call, len(r.calls))
	copy(out, r.calls)
	return out
}
