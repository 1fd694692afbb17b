// internal/extract/extractor.go
package extract

import (
	"fmt"
	"strings"

	"chainlog-metrics/internal/model"
	"chainlog-metrics/internal/pattern"
)

// Extractor 는 로그 한 줄에서 metric 목록을 만든다.
// 규칙이 맞지 않는 metric 은 조용히 생략되며, 하나의 실패가
// 다른 metric 추출을 막지 않는다. 결과는 비어 있을 수 있다.
type Extractor interface {
	Extract(rec model.LogRecord, stream string) []model.MetricRecord
}

// ForRole 은 역할에 맞는 Extractor 를 반환한다.
func ForRole(role model.Role, b Builder) (Extractor, error) {
	switch role {
	case model.RoleMaster:
		return Master{Builder: b}, nil
	case model.RoleReplica:
		return Replica{Builder: b}, nil
	}
	return nil, fmt.Errorf("no extractor for %s", role)
}

// Master
// ------------------------------------------------------------
// master 노드 로그에서 number / age / peerCount 를 뽑는다.
type Master struct {
	Builder Builder
}

// Extract 의 stream 인자는 사용하지 않는다 (master 는 instanceId 차원 없음).
func (m Master) Extract(rec model.LogRecord, _ string) []model.MetricRecord {
	var out []model.MetricRecord

	// 1) number: 새 블록 import 로그면 master 규칙만, 아니면 peer 규칙
	numberRule := pattern.PeerBlockNumber
	if strings.Contains(rec.Message, pattern.SegmentImported) {
		numberRule = pattern.MasterBlockNumber
	}
	if v, ok := numberRule.Find(rec.Message); ok {
		out = append(out, m.Builder.Build(rec, "number", v, model.UnitNone, ""))
	}

	// 2) age
	if v, ok := pattern.BlockAge.Extract(rec.Message); ok {
		out = append(out, m.Builder.Build(rec, "age", v, model.UnitSeconds, ""))
	}

	// 3) peerCount
	if v, ok := pattern.PeerCount.Find(rec.Message); ok {
		out = append(out, m.Builder.Build(rec, "peerCount", v, model.UnitNone, ""))
	}

	return out
}

// replicaRules 는 replica metric 과 규칙의 고정 순서 목록.
var replicaRules = []struct {
	metric string
	rule   pattern.Pattern
}{
	{"num", pattern.ReplicaBlockNum},
	{"age", pattern.ReplicaBlockAge},
	{"offset", pattern.OffsetNum},
	{"offsetAge", pattern.OffsetAge},
}

// Replica
// ------------------------------------------------------------
// replica 노드 로그에서 num / age / offset / offsetAge 를 뽑는다.
// 성공한 metric 마다 두 건을 만든다:
//   - instanceId(=logStream) 차원이 붙은 인스턴스별 값
//   - clusterId 만 있는 집계용 값
type Replica struct {
	Builder Builder
}

func (r Replica) Extract(rec model.LogRecord, stream string) []model.MetricRecord {
	var out []model.MetricRecord
	for _, rr := range replicaRules {
		v, ok := rr.rule.Extract(rec.Message)
		if !ok {
			continue
		}
		out = append(out,
			r.Builder.Build(rec, rr.metric, v, rr.rule.Unit(), stream),
			r.Builder.Build(rec, rr.metric, v, rr.rule.Unit(), ""),
		)
	}
	return out
}
