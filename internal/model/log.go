// internal/model/log.go
package model

// LogRecord
// ------------------------------------------------------------
// CloudWatch Logs 구독(subscription)으로 전달된 로그 한 줄.
// 배치 안에서 순서대로 추출기(extractor)에 전달되며 수정되지 않는다.
type LogRecord struct {
	ID              string `json:"id"`        // CloudWatch 가 부여한 이벤트 ID
	Message         string `json:"message"`   // 노드가 출력한 원문 로그
	TimestampMillis int64  `json:"timestamp"` // 로그 발생 시각 (UTC epoch milliseconds)
	LogStream       string `json:"-"`         // 소속 배치의 logStream (디코딩 시 채움)
}

// LogBatch
// ------------------------------------------------------------
// 한 번의 호출(invocation)에 전달되는 디코딩된 로그 배치.
// 처리 후 보관하지 않는다.
type LogBatch struct {
	MessageType         string      `json:"messageType"` // DATA_MESSAGE / CONTROL_MESSAGE
	Owner               string      `json:"owner"`
	LogGroup            string      `json:"logGroup"`
	LogStream           string      `json:"logStream"` // replica 의 instanceId 로 사용됨
	SubscriptionFilters []string    `json:"subscriptionFilters"`
	Records             []LogRecord `json:"logEvents"`
}

const (
	MessageTypeData    = "DATA_MESSAGE"
	MessageTypeControl = "CONTROL_MESSAGE"
)

// IsControl 은 구독 대상 health check 용 배치인지 여부.
// 이 배치의 logEvents 는 노드 로그가 아니다.
func (b LogBatch) IsControl() bool {
	return b.MessageType == MessageTypeControl
}

// Envelope
// ------------------------------------------------------------
// Lambda 구독 트리거가 전달하는 원본 이벤트 형태.
//
//	{"awslogs": {"data": "<base64(gzip(json))>"}}
type Envelope struct {
	AWSLogs struct {
		Data string `json:"data"`
	} `json:"awslogs"`
}
