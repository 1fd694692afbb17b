// internal/codec/codec.go
package codec

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"strings"

	"chainlog-metrics/internal/model"
	"chainlog-metrics/internal/pool"

	json "github.com/goccy/go-json"
	"github.com/klauspost/compress/gzip"
)

// ErrMalformedPayload 는 payload 를 base64 해제 / gzip 해제 / JSON 파싱
// 중 하나라도 실패했을 때 반환된다. 해당 호출 전체의 실패로 취급한다.
var ErrMalformedPayload = errors.New("malformed log batch payload")

func malformed(stage string, err error) error {
	return fmt.Errorf("%w: %s: %v", ErrMalformedPayload, stage, err)
}

// DecodeEvent
// ------------------------------------------------------------
// Lambda 구독 트리거 이벤트({"awslogs":{"data":"..."}}) 를 LogBatch 로 변환한다.
func DecodeEvent(raw []byte) (model.LogBatch, error) {
	var env model.Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return model.LogBatch{}, malformed("envelope", err)
	}
	if env.AWSLogs.Data == "" {
		return model.LogBatch{}, malformed("envelope", errors.New("awslogs.data is empty"))
	}
	return DecodeData(env.AWSLogs.Data)
}

// DecodeData 는 base64(gzip(json)) 문자열 하나를 디코딩한다.
func DecodeData(data string) (model.LogBatch, error) {
	compressed, err := base64.StdEncoding.DecodeString(strings.TrimSpace(data))
	if err != nil {
		return model.LogBatch{}, malformed("base64", err)
	}

	var (
		batch model.LogBatch
		n     int
	)
	err = DecodeStream(bytes.NewReader(compressed), func(b model.LogBatch) error {
		batch = b
		n++
		return nil
	})
	if err != nil {
		return model.LogBatch{}, err
	}
	if n != 1 {
		return model.LogBatch{}, malformed("json", fmt.Errorf("expected 1 batch, got %d", n))
	}
	return batch, nil
}

// DecodeStream
// ------------------------------------------------------------
// gzip 스트림 안에 이어 붙은 JSON 배치들을 순서대로 fn 에 넘긴다.
// Firehose 가 S3 에 적재한 객체처럼 gzip member 여러 개,
// JSON 문서 여러 개가 연속된 경우도 처리한다.
//
// fn 이 에러를 반환하면 즉시 중단하고 그 에러를 그대로 반환한다.
func DecodeStream(r io.Reader, fn func(model.LogBatch) error) error {
	gz := pool.GzipReaderPool.Get().(*gzip.Reader)
	defer pool.GzipReaderPool.Put(gz)

	if err := gz.Reset(r); err != nil {
		return malformed("gzip", err)
	}
	defer gz.Close()

	dec := json.NewDecoder(gz)
	for {
		var batch model.LogBatch
		err := dec.Decode(&batch)
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return malformed("json", err)
		}

		normalize(&batch)
		if err := fn(batch); err != nil {
			return err
		}
	}
}

// normalize 는 각 record 에 배치의 logStream 을 채운다.
func normalize(b *model.LogBatch) {
	for i := range b.Records {
		b.Records[i].LogStream = b.LogStream
	}
}

// EncodeData
// ------------------------------------------------------------
// DecodeData 의 역방향: LogBatch → JSON → gzip → base64.
// CloudWatch Logs 구독이 보내는 것과 같은 형태를 만든다.
func EncodeData(batch model.LogBatch) (string, error) {
	buf := pool.GetBuffer()
	defer pool.PutBuffer(buf)

	gz := pool.GzipWriterPool.Get().(*gzip.Writer)
	defer pool.GzipWriterPool.Put(gz)
	gz.Reset(buf)

	if err := json.NewEncoder(gz).Encode(batch); err != nil {
		_ = gz.Close()
		return "", err
	}
	if err := gz.Close(); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}

// EncodeEvent 는 EncodeData 결과를 Lambda 트리거 이벤트 JSON 으로 감싼다.
func EncodeEvent(batch model.LogBatch) ([]byte, error) {
	data, err := EncodeData(batch)
	if err != nil {
		return nil, err
	}
	var env model.Envelope
	env.AWSLogs.Data = data
	return json.Marshal(env)
}
