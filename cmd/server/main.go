package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"chainlog-metrics/internal/config"
	"chainlog-metrics/internal/extract"
	"chainlog-metrics/internal/logger"
	"chainlog-metrics/internal/metrics"
	"chainlog-metrics/internal/model"
	"chainlog-metrics/internal/processor"
	"chainlog-metrics/internal/server"
	"chainlog-metrics/internal/sink"

	"github.com/rs/zerolog/log"
)

// Lambda 대신 컨테이너(ECS/Fargate)로 띄울 때의 HTTP 진입점.
// master / replica 배치를 각각 /logs/master, /logs/replica 로 받는다.
func main() {

	// ====================================================================
	// CPU 설정
	// ====================================================================
	// Fargate vCPU 제한과 GOMAXPROCS 를 맞춘다. 기본 1.
	if v := os.Getenv("GOMAXPROCS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			runtime.GOMAXPROCS(n)
		}
	} else {
		runtime.GOMAXPROCS(1)
	}

	cfg := config.Load()
	logger.Init(cfg)

	s, err := sink.FromConfig(context.Background(), cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("sink init failed")
	}

	// ====================================================================
	// Processor 생성
	// ====================================================================
	// 두 role 은 같은 sink / 카운터를 공유하지만, 한 요청은 한 role 로만 처리된다.
	m := metrics.New()
	b := extract.NewBuilder(cfg.ClusterID)

	master, err := processor.New(model.RoleMaster, b, s, m)
	if err != nil {
		log.Fatal().Err(err).Msg("master processor init failed")
	}
	replica, err := processor.New(model.RoleReplica, b, s, m)
	if err != nil {
		log.Fatal().Err(err).Msg("replica processor init failed")
	}

	h := server.NewHandler(cfg, m, master, replica)

	srv := &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      h.Routes(),
		ReadTimeout:  8 * time.Second,
		WriteTimeout: cfg.SinkTimeout + 8*time.Second, // sink 호출 시간을 포함
		IdleTimeout:  60 * time.Second,
	}

	// ====================================================================
	// Graceful Shutdown
	// ====================================================================
	// SIGTERM 수신 시 새 요청을 받지 않고 처리 중인 배치만 마무리한다.
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)

		sig := <-sigCh
		log.Info().Str("signal", sig.String()).Msg("shutdown signal received")

		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			log.Error().Err(err).Msg("http shutdown")
		}
	}()

	log.Info().Str("addr", cfg.HTTPAddr).Str("sink", cfg.Sink).Msg("log metrics server listening")

	if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("http server terminated")
	}

	log.Info().Fields(m.Fields()).Msg("shutdown complete")
}
