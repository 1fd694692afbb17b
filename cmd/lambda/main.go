package main

import (
	"context"

	"chainlog-metrics/internal/config"
	"chainlog-metrics/internal/extract"
	"chainlog-metrics/internal/logger"
	"chainlog-metrics/internal/metrics"
	"chainlog-metrics/internal/model"
	"chainlog-metrics/internal/processor"
	"chainlog-metrics/internal/sink"

	"github.com/aws/aws-lambda-go/events"
	"github.com/aws/aws-lambda-go/lambda"
	"github.com/rs/zerolog/log"
)

// CloudWatch Logs 구독 필터가 호출하는 Lambda 진입점.
//
// master / replica 는 같은 바이너리를 쓰고 NODE_ROLE (없으면 _HANDLER) 로 구분한다.
// 한 함수는 한 role 만 처리한다.
func main() {
	cfg := config.Load()
	logger.Init(cfg)

	role, err := model.ParseRole(cfg.NodeRole)
	if err != nil {
		log.Fatal().Err(err).Msg("NODE_ROLE must be master or replica")
	}

	// ====================================================================
	// Sink / Processor 는 cold start 시 한 번만 만든다.
	// 이후 warm invocation 은 같은 client 를 재사용한다.
	// ====================================================================
	s, err := sink.FromConfig(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("sink init failed")
	}

	m := metrics.New()
	p, err := processor.New(role, extract.NewBuilder(cfg.ClusterID), s, m)
	if err != nil {
		log.Fatal().Err(err).Msg("processor init failed")
	}

	log.Info().
		Str("role", role.String()).
		Str("namespace", role.Namespace()).
		Str("sink", cfg.Sink).
		Msg("lambda handler ready")

	lambda.Start(newHandler(p, m))
}

// newHandler
//
// 에러를 반환하면 Lambda 가 해당 호출을 실패로 기록한다.
// (MalformedBatchPayload, sink 실패 모두 호출 실패)
func newHandler(p *processor.Processor, m *metrics.Metrics) func(context.Context, events.CloudwatchLogsEvent) error {
	return func(ctx context.Context, ev events.CloudwatchLogsEvent) error {
		res, err := p.ProcessData(ctx, ev.AWSLogs.Data)
		if err != nil {
			log.Error().Err(err).
				Str("role", p.Role().String()).
				Int("records", res.Records).
				Int("sink_calls", res.SinkCalls).
				Fields(m.Fields()).
				Msg("invocation failed")
			return err
		}

		log.Debug().Fields(m.Fields()).Msg("invocation done")
		return nil
	}
}
