package server

import (
	"bytes"
	"errors"
	"io"
	"net/http"
	"strings"

	"chainlog-metrics/internal/codec"
	"chainlog-metrics/internal/config"
	"chainlog-metrics/internal/metrics"
	"chainlog-metrics/internal/model"
	"chainlog-metrics/internal/pool"
	"chainlog-metrics/internal/processor"

	json "github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
)

// Handler 는 Lambda 대신 HTTP 로 로그 배치를 받는 진입점이다.
// (Firehose HTTP endpoint, 사내 로그 포워더 등)
type Handler struct {
	cfg        config.Config
	metrics    *metrics.Metrics
	processors map[model.Role]*processor.Processor
}

func NewHandler(cfg config.Config, m *metrics.Metrics, procs ...*processor.Processor) *Handler {
	h := &Handler{
		cfg:        cfg,
		metrics:    m,
		processors: make(map[model.Role]*processor.Processor, len(procs)),
	}
	for _, p := range procs {
		h.processors[p.Role()] = p
	}
	return h
}

// Routes 는 엔드포인트를 mux 에 등록한다.
//   - /logs/master, /logs/replica : 로그 배치 수신
//   - /metrics : 운영 카운터
//   - /health  : health check
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/logs/master", h.handleLogs(model.RoleMaster))
	mux.HandleFunc("/logs/replica", h.handleLogs(model.RoleReplica))
	mux.HandleFunc("/metrics", h.HandleMetrics)
	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte("ok"))
	})
	return mux
}

// handleLogs
//
// body 형식:
//   - Lambda 트리거와 같은 {"awslogs":{"data":"..."}} JSON
//   - 또는 base64 data 문자열 그대로
//
// 응답:
//   - 200: 처리 완료 (Result JSON)
//   - 400: payload 디코딩 실패
//   - 404: 해당 role 처리기가 없음
//   - 405: POST 외 메서드
//   - 413: body 크기 초과
//   - 502: sink 제출 실패
func (h *Handler) handleLogs(role model.Role) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}

		p, ok := h.processors[role]
		if !ok {
			http.Error(w, "role not served: "+role.String(), http.StatusNotFound)
			return
		}

		// ----------------------------------------------------------------
		// body 최대 크기 제한 + BufferPool 재사용
		// ----------------------------------------------------------------
		r.Body = http.MaxBytesReader(w, r.Body, h.cfg.MaxBodySize)
		defer r.Body.Close()

		buf := pool.GetBuffer()
		defer pool.PutBody(buf, h.cfg.MaxBodySize*2)

		if _, err := io.Copy(buf, r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}

		var (
			res processor.Result
			err error
		)
		body := bytes.TrimSpace(buf.Bytes())
		if len(body) > 0 && body[0] == '{' {
			res, err = p.ProcessEvent(r.Context(), body)
		} else {
			res, err = p.ProcessData(r.Context(), string(body))
		}

		switch {
		case err == nil:
		case errors.Is(err, codec.ErrMalformedPayload):
			log.Warn().Err(err).Str("role", role.String()).Str("remote", clientIP(r)).Msg("malformed batch rejected")
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		case errors.Is(err, processor.ErrSink):
			log.Error().Err(err).Str("role", role.String()).Msg("sink submission failed")
			http.Error(w, err.Error(), http.StatusBadGateway)
			return
		default:
			log.Error().Err(err).Str("role", role.String()).Msg("batch aborted")
			http.Error(w, err.Error(), http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(res)
	}
}

// HandleMetrics
//
// 운영 카운터를 text 로 출력한다.
func (h *Handler) HandleMetrics(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, h.metrics.String())
}

// clientIP 는 로그용 호출자 주소.
// 포워더가 ALB 뒤에 있으면 X-Forwarded-For 의 첫 값을 사용한다.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}
	return r.RemoteAddr
}
