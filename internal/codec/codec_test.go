package codec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chainlog-metrics/internal/model"
)

// CloudWatch Logs 구독이 실제로 보내는 JSON 형태
const sampleBatch = `{
  "messageType": "DATA_MESSAGE",
  "owner": "123456789012",
  "logGroup": "/chain/replica",
  "logStream": "i-0replica1",
  "subscriptionFilters": ["replica-metrics"],
  "logEvents": [
    {"id": "1", "timestamp": 1700000000123, "message": "num=50 offset=3"},
    {"id": "2", "timestamp": 1700000001999, "message": "idle"}
  ]
}`

func gzipped(t *testing.T, docs ...string) []byte {
	t.Helper()
	var buf bytes.Buffer
	for _, d := range docs {
		// 문서마다 별도의 gzip member
		gz := gzip.NewWriter(&buf)
		_, err := gz.Write([]byte(d))
		require.NoError(t, err)
		require.NoError(t, gz.Close())
	}
	return buf.Bytes()
}

func TestDecodeData(t *testing.T) {
	data := base64.StdEncoding.EncodeToString(gzipped(t, sampleBatch))

	batch, err := DecodeData(data)
	require.NoError(t, err)

	assert.Equal(t, model.MessageTypeData, batch.MessageType)
	assert.Equal(t, "i-0replica1", batch.LogStream)
	assert.Equal(t, []string{"replica-metrics"}, batch.SubscriptionFilters)
	require.Len(t, batch.Records, 2)
	assert.Equal(t, "num=50 offset=3", batch.Records[0].Message)
	assert.Equal(t, int64(1700000000123), batch.Records[0].TimestampMillis)
	assert.Equal(t, "i-0replica1", batch.Records[1].LogStream)
}

func TestDecodeEvent(t *testing.T) {
	data := base64.StdEncoding.EncodeToString(gzipped(t, sampleBatch))
	raw := []byte(`{"awslogs":{"data":"` + data + `"}}`)

	batch, err := DecodeEvent(raw)
	require.NoError(t, err)
	assert.Equal(t, "/chain/replica", batch.LogGroup)
}

func TestDecodeMalformed(t *testing.T) {
	cases := map[string]func() error{
		"envelope not json": func() error {
			_, err := DecodeEvent([]byte("not json"))
			return err
		},
		"envelope without data": func() error {
			_, err := DecodeEvent([]byte(`{"awslogs":{}}`))
			return err
		},
		"bad base64": func() error {
			_, err := DecodeData("%%%")
			return err
		},
		"not gzip": func() error {
			_, err := DecodeData(base64.StdEncoding.EncodeToString([]byte("plain")))
			return err
		},
		"bad json": func() error {
			_, err := DecodeData(base64.StdEncoding.EncodeToString(gzipped(t, "[1,2]")))
			return err
		},
		"two batches": func() error {
			_, err := DecodeData(base64.StdEncoding.EncodeToString(gzipped(t, sampleBatch, sampleBatch)))
			return err
		},
	}

	for name, fn := range cases {
		t.Run(name, func(t *testing.T) {
			err := fn()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedPayload), err.Error())
		})
	}
}

func TestDecodeStreamConcatenated(t *testing.T) {
	var got []model.LogBatch
	err := DecodeStream(bytes.NewReader(gzipped(t, sampleBatch, sampleBatch)), func(b model.LogBatch) error {
		got = append(got, b)
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestDecodeStreamStopsOnCallbackError(t *testing.T) {
	stop := errors.New("stop")
	calls := 0
	err := DecodeStream(bytes.NewReader(gzipped(t, sampleBatch, sampleBatch)), func(model.LogBatch) error {
		calls++
		return stop
	})
	assert.ErrorIs(t, err, stop)
	assert.Equal(t, 1, calls)
}

func TestEncodeEventIsDecodable(t *testing.T) {
	in := model.LogBatch{
		MessageType: model.MessageTypeData,
		LogStream:   "master-0",
		Records: []model.LogRecord{
			{ID: "a", Message: "Imported new chain segment number=7", TimestampMillis: 42000},
		},
	}

	raw, err := EncodeEvent(in)
	require.NoError(t, err)

	out, err := DecodeEvent(raw)
	require.NoError(t, err)
	require.Len(t, out.Records, 1)
	assert.Equal(t, "master-0", out.Records[0].LogStream)
	assert.Equal(t, in.Records[0].Message, out.Records[0].Message)
}
