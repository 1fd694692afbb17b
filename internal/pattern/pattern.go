// internal/pattern/pattern.go
package pattern

import (
	"strconv"
	"strings"

	"chainlog-metrics/internal/model"
)

// Pattern
// ------------------------------------------------------------
// "marker 를 찾고, 그 뒤의 값을 읽는다" 는 하나의 추출 규칙.
//
// marker 는 로그 본문 어디에 있어도 되며(전체 일치가 아님),
// 자유 텍스트 안의 다른 숫자와 섞이지 않도록 key 이름 + "=" 또는 ": "
// 형태의 고정 문자열을 사용한다.
//
// Extract 가 false 를 반환하면 NoMatch 이다.
// 호출자는 해당 metric 을 생략해야 하며 0 으로 대체하면 안 된다.
type Pattern interface {
	Name() string
	Marker() string
	Unit() model.Unit
	Extract(message string) (int64, bool)
}

// IntPattern 은 marker 바로 뒤의 10진 정수 하나를 읽는다.
type IntPattern struct {
	name   string
	marker string
}

func NewInt(name, marker string) IntPattern {
	return IntPattern{name: name, marker: marker}
}

func (p IntPattern) Name() string     { return p.name }
func (p IntPattern) Marker() string   { return p.marker }
func (p IntPattern) Unit() model.Unit { return model.UnitNone }

// Find 는 marker 의 각 출현 위치를 앞에서부터 검사한다.
// 뒤에 숫자가 없는 출현은 건너뛰고 다음 출현을 찾는다.
// int64 범위를 넘는 값은 NoMatch 로 취급한다.
func (p IntPattern) Find(message string) (int64, bool) {
	if p.marker == "" {
		return 0, false
	}

	from := 0
	for {
		i := strings.Index(message[from:], p.marker)
		if i < 0 {
			return 0, false
		}
		start := from + i + len(p.marker)

		if digits := leadingDigits(message[start:]); digits != "" {
			n, err := strconv.ParseInt(digits, 10, 64)
			if err != nil {
				return 0, false
			}
			return n, true
		}

		// 겹치는 출현까지 고려해 한 칸만 전진
		from += i + 1
	}
}

func (p IntPattern) Extract(message string) (int64, bool) {
	return p.Find(message)
}

// DurationPattern 은 marker 뒤의 duration token (예: "1w2d3h4m5s") 을 읽는다.
type DurationPattern struct {
	name   string
	marker string
}

func NewDuration(name, marker string) DurationPattern {
	return DurationPattern{name: name, marker: marker}
}

func (p DurationPattern) Name() string     { return p.name }
func (p DurationPattern) Marker() string   { return p.marker }
func (p DurationPattern) Unit() model.Unit { return model.UnitSeconds }

// Find 는 첫 번째 marker 출현 위치에서 token 을 읽는다.
//
// marker 가 있고 component 가 하나도 없으면(예: "age= ") 비어 있는
// Duration 과 true 를 반환한다. 이 경우 Seconds() 는 0 이다.
// marker 가 없으면 false (NoMatch).
func (p DurationPattern) Find(message string) (Duration, bool) {
	if p.marker == "" {
		return Duration{}, false
	}
	i := strings.Index(message, p.marker)
	if i < 0 {
		return Duration{}, false
	}
	d, _, ok := scanDuration(message[i+len(p.marker):])
	return d, ok
}

// Extract 는 token 을 초 단위로 변환해 반환한다.
func (p DurationPattern) Extract(message string) (int64, bool) {
	d, ok := p.Find(message)
	if !ok {
		return 0, false
	}
	return d.Seconds(), true
}

func leadingDigits(s string) string {
	n := 0
	for n < len(s) && s[n] >= '0' && s[n] <= '9' {
		n++
	}
	return s[:n]
}
