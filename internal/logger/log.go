// internal/logger/log.go
package logger

import (
	"io"
	"os"
	"strings"

	"chainlog-metrics/internal/config"

	stdlog "log"

	"github.com/rs/zerolog"
	zlog "github.com/rs/zerolog/log"
)

// Init
//
// 프로세스 시작 시 한 번 호출한다.
//
//  1. LOG_PRETTY=true 이면 ConsoleWriter(로컬 개발), 아니면 JSON(CloudWatch Logs)
//  2. 모든 로그에 service / instance 필드를 붙인다
//  3. LOG_SAMPLE_N > 1 이면 debug/info 만 N 개 중 1 개 기록 (warn/error 는 전부)
//  4. 표준 log 패키지 출력도 zerolog 로 돌린다
//
// 사용 예:
//
//	logger.Init(cfg)
//	log.Info().Str("role", "replica").Msg("batch processed")
func Init(cfg config.Config) {
	var w io.Writer = os.Stdout
	if cfg.LogPretty {
		w = zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: "15:04:05",
		}
	}

	zerolog.SetGlobalLevel(parseLevel(cfg.LogLevel))
	zlog.Logger = New(cfg, w)

	// zerolog 가 시간을 찍으므로 표준 로그 prefix 제거
	stdlog.SetFlags(0)
	stdlog.SetOutput(zlog.Logger)
}

// New 는 Init 과 같은 규칙으로 w 에 쓰는 Logger 를 만든다.
func New(cfg config.Config, w io.Writer) zerolog.Logger {
	base := zerolog.New(w).
		Level(parseLevel(cfg.LogLevel)).
		With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("instance", cfg.InstanceID).
		Logger()

	if cfg.LogSampleN > 1 {
		return base.Sample(&zerolog.LevelSampler{
			DebugSampler: &zerolog.BasicSampler{N: cfg.LogSampleN},
			InfoSampler:  &zerolog.BasicSampler{N: cfg.LogSampleN},
		})
	}
	return base
}

// parseLevel 은 알 수 없는 값이면 info 를 사용한다.
func parseLevel(s string) zerolog.Level {
	l, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(s)))
	if err != nil || l == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return l
}
