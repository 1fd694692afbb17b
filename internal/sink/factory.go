package sink

import (
	"context"
	"fmt"

	"chainlog-metrics/internal/config"

	zlog "github.com/rs/zerolog/log"
)

// FromConfig 는 SINK 설정에 맞는 Sink 를 만든다.
func FromConfig(ctx context.Context, cfg config.Config) (Sink, error) {
	switch cfg.Sink {
	case config.SinkCloudWatch:
		return NewCloudWatch(ctx, cfg)
	case config.SinkLog:
		return NewLog(zlog.Logger), nil
	}
	return nil, fmt.Errorf("unknown sink %q", cfg.Sink)
}
