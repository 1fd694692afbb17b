// internal/config/config.go
package config

import (
	"crypto/rand"
	"encoding/hex"
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// 기본값
const (
	DefaultClusterID   = "unknown"
	DefaultServiceName = "chainlog-metrics"
	DefaultSinkTimeout = 5 * time.Second

	SinkCloudWatch = "cloudwatch"
	SinkLog        = "log"
)

// Config
//
// 프로세스 시작 시 Load() 로 한 번 읽고 이후에는 변경하지 않는
// 불변(read-only) 설정. 모든 호출이 같은 값을 공유한다.
type Config struct {

	// ---------------------------
	// AWS / 클러스터
	// ---------------------------

	AWSRegion string // AWS 리전 (Lambda 는 AWS_REGION 을 자동 주입)
	ClusterID string // 모든 metric 의 clusterId 차원 값. 없으면 DefaultClusterID
	NodeRole  string // master | replica (또는 masterHandler / replicaHandler)

	// ---------------------------
	// Sink
	// ---------------------------
	// SDK retry 외에 애플리케이션 레벨 재시도는 하지 않는다.
	// 제출 실패는 그대로 호출 실패로 전파된다.

	Sink        string        // cloudwatch | log
	SinkTimeout time.Duration // PutMetricData 1회 호출당 timeout

	// ---------------------------
	// 로깅
	// ---------------------------

	ServiceName string
	InstanceID  string // 호스트명 기반, 실패 시 랜덤 hex
	LogLevel    string
	LogPretty   bool
	LogSampleN  uint32 // debug/info 샘플링 (1 이하 = 전부 기록)

	// ---------------------------
	// HTTP 서버 (cmd/server 전용)
	// ---------------------------

	HTTPAddr    string
	MaxBodySize int64 // 요청 body 최대 크기 (바이트)
}

// ReplayConfig
//
// cmd/replay 에서만 사용하는 S3 입력 위치.
type ReplayConfig struct {
	Bucket string
	Prefix string
}

// Load
//
// 환경 변수 기반으로 Config 를 초기화한다.
// 값이 없으면 기본값을 사용하지만, 형식이 잘못된 값은 즉시 종료(fail-fast).
func Load() Config {
	return Config{
		AWSRegion: env("AWS_REGION", ""),
		ClusterID: env("CLUSTER_ID", DefaultClusterID),
		NodeRole:  env("NODE_ROLE", os.Getenv("_HANDLER")),

		Sink:        strings.ToLower(env("SINK", SinkCloudWatch)),
		SinkTimeout: envDur("SINK_TIMEOUT", DefaultSinkTimeout),

		ServiceName: env("SERVICE_NAME", DefaultServiceName),
		InstanceID:  fallbackInstanceID(),
		LogLevel:    env("LOG_LEVEL", "info"),
		LogPretty:   envBool("LOG_PRETTY", false),
		LogSampleN:  uint32(envInt64("LOG_SAMPLE_N", 1)),

		HTTPAddr:    env("HTTP_ADDR", ":8080"),
		MaxBodySize: envInt64("MAX_BODY_SIZE", 1<<20),
	}
}

// LoadReplay 는 replay 입력 위치를 읽는다. 둘 다 필수.
func LoadReplay() ReplayConfig {
	return ReplayConfig{
		Bucket: must("REPLAY_BUCKET"),
		Prefix: must("REPLAY_PREFIX"),
	}
}

// must
//
// 필수 환경변수가 없으면 즉시 로그 출력 후 종료(fail-fast).
func must(key string) string {
	v := os.Getenv(key)
	if v == "" {
		log.Fatalf("missing required env: %s", key)
	}
	return v
}

// env / envInt64 / envBool / envDur
//
// 선택 환경변수. 비어 있으면 def, 형식이 잘못되면 종료.
func env(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

func envInt64(key string, def int64) int64 {
	v := env(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		log.Fatalf("invalid int64 env %s=%q: %v", key, v, err)
	}
	return n
}

func envBool(key string, def bool) bool {
	v := env(key, "")
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		log.Fatalf("invalid bool env %s=%q: %v", key, v, err)
	}
	return b
}

func envDur(key string, def time.Duration) time.Duration {
	v := env(key, "")
	if v == "" {
		return def
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		log.Fatalf("invalid duration env %s=%q: %v", key, v, err)
	}
	return d
}

// fallbackInstanceID
//
// 로그의 instance 필드 값.
//   - 기본: AWS_LAMBDA_LOG_STREAM_NAME (Lambda 실행 환경)
//   - 다음: hostname
//   - fallback: 12자리 랜덤 hex
func fallbackInstanceID() string {
	if s := os.Getenv("AWS_LAMBDA_LOG_STREAM_NAME"); s != "" {
		return s
	}
	if h, err := os.Hostname(); err == nil && h != "" {
		return h
	}
	var b [6]byte
	if _, err := rand.Read(b[:]); err == nil {
		return hex.EncodeToString(b[:])
	}
	return strconv.FormatInt(time.Now().UnixNano(), 10)
}
