// internal/sink/sink.go
package sink

import (
	"context"

	"chainlog-metrics/internal/model"
)

// Sink 는 metric 목록을 모니터링 백엔드로 제출한다.
//
// 호출자는 비어 있지 않은 목록만 넘기며, 로그 레코드 1건당 최대 1회 호출한다.
// 실패 시 재시도하지 않고 에러를 그대로 돌려준다.
type Sink interface {
	Submit(ctx context.Context, namespace string, metrics []model.MetricRecord) error
}
