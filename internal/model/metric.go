// internal/model/metric.go
package model

import "time"

// Unit 은 CloudWatch StandardUnit 문자열과 1:1 로 대응한다.
type Unit string

const (
	UnitNone    Unit = "None"
	UnitSeconds Unit = "Seconds"
)

// 차원(dimension) 이름
const (
	DimClusterID  = "clusterId"
	DimInstanceID = "instanceId"
)

// Dimension 은 metric 에 붙는 name/value 태그.
type Dimension struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// MetricRecord
// ------------------------------------------------------------
// 로그 한 줄에서 추출된 metric 1건.
// extract.Builder 에서만 생성되며 sink 로 넘어간 뒤 수정되지 않는다.
//
// Dimensions 순서는 고정이다: clusterId 가 항상 첫 번째,
// instanceId 는 있는 경우에만 두 번째.
type MetricRecord struct {
	Name       string      `json:"name"`
	Dimensions []Dimension `json:"dimensions"`
	Timestamp  time.Time   `json:"timestamp"` // UTC, 초 단위 절삭
	Value      float64     `json:"value"`
	Unit       Unit        `json:"unit"`
}

// Dimension 은 이름으로 차원 값을 찾는다.
func (m MetricRecord) Dimension(name string) (string, bool) {
	for _, d := range m.Dimensions {
		if d.Name == name {
			return d.Value, true
		}
	}
	return "", false
}
