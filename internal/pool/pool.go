package pool

import (
	"bytes"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// ---------------------------------------------------------------
// Pool 구성 목적
//
// 로그 배치마다 base64 해제 결과, gzip reader, 압축 해제 버퍼가
// 새로 필요하다. 같은 컨테이너(Lambda warm start / HTTP 서버)에서
// 연속으로 배치를 처리하므로 재사용해 할당을 줄인다.
// ---------------------------------------------------------------

var (
	// BufferPool:
	//   - 압축된 payload / 인코딩 결과를 담는 임시 버퍼
	//   - 초기 용량 64KB (CloudWatch Logs 구독 배치 1건 기준)
	//   - 1MB 초과 버퍼는 풀에 넣지 않음
	BufferPool = sync.Pool{
		New: func() any {
			return bytes.NewBuffer(make([]byte, 0, 64*1024))
		},
	}

	// GzipReaderPool:
	//   - gzip.Reader 재사용. Reset(r) 으로 새 입력에 연결해서 사용.
	GzipReaderPool = sync.Pool{
		New: func() any { return new(gzip.Reader) },
	}

	// GzipWriterPool:
	//   - gzip.Writer 재사용 (BestSpeed)
	//   - 배치를 다시 payload 로 만들 때(테스트 fixture, replay 검증) 사용
	GzipWriterPool = sync.Pool{
		New: func() any {
			w, _ := gzip.NewWriterLevel(nil, gzip.BestSpeed)
			return w
		},
	}
)

// Pool에 되돌려줄 최대 버퍼 용량
const MaxBufferCap = 1 * 1024 * 1024 // 1MB

// GetBuffer:
//   - 비워진 상태의 버퍼를 반환.
func GetBuffer() *bytes.Buffer {
	buf := BufferPool.Get().(*bytes.Buffer)
	buf.Reset()
	return buf
}

// PutBuffer:
//   - 1MB 이하이면 풀에 재사용
//   - 큰 배치 버퍼는 GC 에 맡긴다
func PutBuffer(buf *bytes.Buffer) {
	if buf.Cap() <= MaxBufferCap {
		buf.Reset()
		BufferPool.Put(buf)
	}
}

// PutBody:
//   - HTTP body 버퍼 반환. maxCap(보통 MaxBodySize*2) 보다 크면 버린다.
func PutBody(buf *bytes.Buffer, maxCap int64) {
	if int64(buf.Cap()) <= maxCap {
		buf.Reset()
		BufferPool.Put(buf)
	}
}
