package main

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"chainlog-metrics/internal/codec"
	"chainlog-metrics/internal/config"
	"chainlog-metrics/internal/extract"
	"chainlog-metrics/internal/logger"
	"chainlog-metrics/internal/metrics"
	"chainlog-metrics/internal/model"
	"chainlog-metrics/internal/processor"
	"chainlog-metrics/internal/sink"
	"chainlog-metrics/internal/source"

	"github.com/rs/zerolog/log"
)

// Firehose 가 S3 에 적재한 구독 배치를 다시 metric 으로 변환한다.
// Lambda 장애 등으로 빠진 구간을 채울 때 사용한다.
//
//	NODE_ROLE=replica REPLAY_BUCKET=chain-logs REPLAY_PREFIX=replica/2026/10/16/ replay
//
// 배치 하나라도 실패하면 그 자리에서 종료한다 (어디까지 처리했는지는 로그로 남음).
func main() {
	cfg := config.Load()
	rc := config.LoadReplay()
	logger.Init(cfg)

	role, err := model.ParseRole(cfg.NodeRole)
	if err != nil {
		log.Fatal().Err(err).Msg("NODE_ROLE must be master or replica")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := sink.FromConfig(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("sink init failed")
	}
	src, err := source.NewS3Source(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("s3 source init failed")
	}

	m := metrics.New()
	p, err := processor.New(role, extract.NewBuilder(cfg.ClusterID), s, m)
	if err != nil {
		log.Fatal().Err(err).Msg("processor init failed")
	}

	if err := replay(ctx, src, rc, p); err != nil {
		log.Fatal().Err(err).Fields(m.Fields()).Msg("replay aborted")
	}
	log.Info().Fields(m.Fields()).Msg("replay complete")
}

// objectSource 는 replay 가 사용하는 S3Source 메서드.
type objectSource interface {
	List(ctx context.Context, bucket, prefix string) ([]string, error)
	Open(ctx context.Context, bucket, key string) (io.ReadCloser, error)
}

func replay(ctx context.Context, src objectSource, rc config.ReplayConfig, p *processor.Processor) error {
	keys, err := src.List(ctx, rc.Bucket, rc.Prefix)
	if err != nil {
		return err
	}
	log.Info().Str("bucket", rc.Bucket).Str("prefix", rc.Prefix).Int("objects", len(keys)).Msg("replay started")

	for _, key := range keys {
		if err := replayObject(ctx, src, rc.Bucket, key, p); err != nil {
			return err
		}
	}
	return nil
}

func replayObject(ctx context.Context, src objectSource, bucket, key string, p *processor.Processor) error {
	body, err := src.Open(ctx, bucket, key)
	if err != nil {
		return err
	}
	defer body.Close()

	batches := 0
	err = codec.DecodeStream(body, func(b model.LogBatch) error {
		batches++
		_, err := p.Process(ctx, b)
		return err
	})
	if err != nil {
		log.Error().Err(err).Str("key", key).Int("batch", batches).Msg("object failed")
		return err
	}

	log.Info().Str("key", key).Int("batches", batches).Msg("object replayed")
	return nil
}
