package processor

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chainlog-metrics/internal/codec"
	"chainlog-metrics/internal/extract"
	"chainlog-metrics/internal/metrics"
	"chainlog-metrics/internal/model"
	"chainlog-metrics/internal/sink"
)

func newProcessor(t *testing.T, role model.Role, s sink.Sink, m *metrics.Metrics) *Processor {
	t.Helper()
	p, err := New(role, extract.NewBuilder("cluster-1"), s, m)
	require.NoError(t, err)
	return p
}

func masterBatch() model.LogBatch {
	return model.LogBatch{
		MessageType: model.MessageTypeData,
		LogGroup:    "/chain/master",
		LogStream:   "master-0",
		Records: []model.LogRecord{
			{ID: "1", TimestampMillis: 1700000000500, Message: "Imported new chain segment number=1024 age=5s"},
			{ID: "2", TimestampMillis: 1700000001500, Message: "Looking for peers"},
			{ID: "3", TimestampMillis: 1700000002500, Message: "status blockNumber: 77 peerCount: 9"},
		},
	}
}

func TestProcessMaster(t *testing.T) {
	rec := &sink.Recorder{}
	m := metrics.New()
	p := newProcessor(t, model.RoleMaster, rec, m)

	res, err := p.Process(context.Background(), masterBatch())
	require.NoError(t, err)
	assert.Equal(t, Result{Records: 3, SinkCalls: 2, Metrics: 4}, res)

	calls := rec.Calls()
	require.Len(t, calls, 2)
	for _, c := range calls {
		assert.Equal(t, "BlockData", c.Namespace)
		assert.NotEmpty(t, c.Metrics)
	}
	assert.Equal(t, "number", calls[0].Metrics[0].Name)
	assert.Equal(t, float64(1024), calls[0].Metrics[0].Value)
	assert.Equal(t, float64(77), calls[1].Metrics[0].Value)

	assert.Equal(t, int64(1), m.RecordsWithoutMetricsTotal)
	assert.Equal(t, int64(4), m.MetricsSubmittedTotal)
}

func TestProcessReplicaUsesBatchStream(t *testing.T) {
	rec := &sink.Recorder{}
	p := newProcessor(t, model.RoleReplica, rec, nil)

	batch := model.LogBatch{
		LogStream: "replica-7",
		Records:   []model.LogRecord{{ID: "1", TimestampMillis: 1000, Message: "num=50"}},
	}
	_, err := p.Process(context.Background(), batch)
	require.NoError(t, err)

	calls := rec.Calls()
	require.Len(t, calls, 1)
	assert.Equal(t, "ReplicaData", calls[0].Namespace)
	require.Len(t, calls[0].Metrics, 2)

	inst, ok := calls[0].Metrics[0].Dimension(model.DimInstanceID)
	require.True(t, ok)
	assert.Equal(t, "replica-7", inst)
	_, ok = calls[0].Metrics[1].Dimension(model.DimInstanceID)
	assert.False(t, ok)
}

func TestProcessNoMetricsNoCalls(t *testing.T) {
	rec := &sink.Recorder{}
	p := newProcessor(t, model.RoleReplica, rec, nil)

	res, err := p.Process(context.Background(), model.LogBatch{
		LogStream: "r",
		Records:   []model.LogRecord{{Message: "hello"}, {Message: "world"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.Records)
	assert.Empty(t, rec.Calls())
}

func TestProcessControlMessage(t *testing.T) {
	rec := &sink.Recorder{}
	m := metrics.New()
	p := newProcessor(t, model.RoleMaster, rec, m)

	_, err := p.Process(context.Background(), model.LogBatch{
		MessageType: model.MessageTypeControl,
		Records:     []model.LogRecord{{Message: "CWL CONTROL MESSAGE: Checking health of destination number=1"}},
	})
	require.NoError(t, err)
	assert.Empty(t, rec.Calls())
	assert.Equal(t, int64(1), m.ControlMessagesTotal)
}

func TestProcessSinkFailureStopsBatch(t *testing.T) {
	boom := errors.New("throttled")
	rec := &sink.Recorder{FailAt: 1, Err: boom}
	m := metrics.New()
	p := newProcessor(t, model.RoleMaster, rec, m)

	res, err := p.Process(context.Background(), masterBatch())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrSink)
	assert.Contains(t, err.Error(), "throttled")

	// 첫 레코드에서 실패 → 이후 레코드는 제출되지 않음
	assert.Len(t, rec.Calls(), 1)
	assert.Equal(t, 0, res.SinkCalls)
	assert.Equal(t, int64(1), m.SinkErrorsTotal)
}

func TestProcessCancelledContext(t *testing.T) {
	rec := &sink.Recorder{}
	p := newProcessor(t, model.RoleMaster, rec, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := p.Process(ctx, masterBatch())
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, rec.Calls())
}

func TestProcessIsDeterministic(t *testing.T) {
	first := &sink.Recorder{}
	second := &sink.Recorder{}

	_, err := newProcessor(t, model.RoleMaster, first, nil).Process(context.Background(), masterBatch())
	require.NoError(t, err)
	_, err = newProcessor(t, model.RoleMaster, second, nil).Process(context.Background(), masterBatch())
	require.NoError(t, err)

	assert.Equal(t, first.Calls(), second.Calls())
}

func TestProcessEvent(t *testing.T) {
	raw, err := codec.EncodeEvent(masterBatch())
	require.NoError(t, err)

	rec := &sink.Recorder{}
	p := newProcessor(t, model.RoleMaster, rec, nil)

	res, err := p.ProcessEvent(context.Background(), raw)
	require.NoError(t, err)
	assert.Equal(t, 2, res.SinkCalls)
}

func TestProcessEventMalformed(t *testing.T) {
	m := metrics.New()
	p := newProcessor(t, model.RoleMaster, &sink.Recorder{}, m)

	_, err := p.ProcessEvent(context.Background(), []byte(`{"awslogs":{"data":"!!"}}`))
	assert.ErrorIs(t, err, codec.ErrMalformedPayload)
	assert.Equal(t, int64(1), m.BatchDecodeErrorsTotal)

	_, err = p.ProcessData(context.Background(), "!!")
	assert.ErrorIs(t, err, codec.ErrMalformedPayload)
}

func TestNewUnknownRole(t *testing.T) {
	_, err := New(model.Role(0), extract.NewBuilder(""), &sink.Recorder{}, nil)
	assert.Error(t, err)
}
