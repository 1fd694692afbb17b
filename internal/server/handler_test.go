package server

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chainlog-metrics/internal/codec"
	"chainlog-metrics/internal/config"
	"chainlog-metrics/internal/extract"
	"chainlog-metrics/internal/metrics"
	"chainlog-metrics/internal/model"
	"chainlog-metrics/internal/processor"
	"chainlog-metrics/internal/sink"
)

func newHandler(t *testing.T, s sink.Sink) (*Handler, *metrics.Metrics) {
	t.Helper()
	m := metrics.New()
	b := extract.NewBuilder("c1")

	master, err := processor.New(model.RoleMaster, b, s, m)
	require.NoError(t, err)
	replica, err := processor.New(model.RoleReplica, b, s, m)
	require.NoError(t, err)

	return NewHandler(config.Config{MaxBodySize: 64 * 1024}, m, master, replica), m
}

func replicaBatch() model.LogBatch {
	return model.LogBatch{
		MessageType: model.MessageTypeData,
		LogStream:   "replica-1",
		Records:     []model.LogRecord{{ID: "1", TimestampMillis: 5000, Message: "num=50 offset=2"}},
	}
}

func TestHandleLogsEnvelope(t *testing.T) {
	rec := &sink.Recorder{}
	h, _ := newHandler(t, rec)

	raw, err := codec.EncodeEvent(replicaBatch())
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/logs/replica", strings.NewReader(string(raw))))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"SinkCalls":1`)
	calls := rec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "ReplicaData", calls[0].Namespace)
	assert.Len(t, calls[0].Metrics, 4)
}

func TestHandleLogsRawData(t *testing.T) {
	rec := &sink.Recorder{}
	h, _ := newHandler(t, rec)

	data, err := codec.EncodeData(model.LogBatch{
		LogStream: "master-0",
		Records:   []model.LogRecord{{Message: "Imported new chain segment number=9"}},
	})
	require.NoError(t, err)

	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/logs/master", strings.NewReader(data)))

	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, rec.Calls(), 1)
	assert.Equal(t, "BlockData", rec.Calls()[0].Namespace)
}

func TestHandleLogsErrors(t *testing.T) {
	raw, err := codec.EncodeEvent(replicaBatch())
	require.NoError(t, err)

	cases := []struct {
		name   string
		sink   sink.Sink
		method string
		body   string
		want   int
	}{
		{"wrong method", &sink.Recorder{}, http.MethodGet, "", http.StatusMethodNotAllowed},
		{"malformed", &sink.Recorder{}, http.MethodPost, `{"awslogs":{"data":"???"}}`, http.StatusBadRequest},
		{"too large", &sink.Recorder{}, http.MethodPost, strings.Repeat("a", 128*1024), http.StatusRequestEntityTooLarge},
		{"sink failure", &sink.Recorder{FailAt: 1, Err: errors.New("down")}, http.MethodPost, string(raw), http.StatusBadGateway},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, _ := newHandler(t, tc.sink)
			w := httptest.NewRecorder()
			h.Routes().ServeHTTP(w, httptest.NewRequest(tc.method, "/logs/replica", strings.NewReader(tc.body)))
			assert.Equal(t, tc.want, w.Code)
		})
	}
}

func TestHandleLogsRoleNotServed(t *testing.T) {
	m := metrics.New()
	master, err := processor.New(model.RoleMaster, extract.NewBuilder("c"), &sink.Recorder{}, m)
	require.NoError(t, err)
	h := NewHandler(config.Config{MaxBodySize: 1024}, m, master)

	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/logs/replica", strings.NewReader("x")))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleMetricsAndHealth(t *testing.T) {
	h, m := newHandler(t, &sink.Recorder{})
	m.RecordsTotal = 5

	w := httptest.NewRecorder()
	h.Routes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Contains(t, w.Body.String(), "records_total=5")

	w = httptest.NewRecorder()
	h.Routes().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, "ok", w.Body.String())
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodPost, "/logs/master", nil)
	r.Header.Set("X-Forwarded-For", "203.0.113.1, 10.0.0.2")
	assert.Equal(t, "203.0.113.1", clientIP(r))

	r = httptest.NewRequest(http.MethodPost, "/logs/master", nil)
	assert.Equal(t, r.RemoteAddr, clientIP(r))
}
