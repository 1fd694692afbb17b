// internal/pattern/duration.go
package pattern

import (
	"math"
	"strconv"
	"strings"
)

// durationUnits 는 token 안에서 component 가 나타나는 고정 순서.
var durationUnits = [...]struct {
	letter  byte
	seconds int64
}{
	{'w', 7 * 24 * 60 * 60},
	{'d', 24 * 60 * 60},
	{'h', 60 * 60},
	{'m', 60},
	{'s', 1},
}

// Duration
// ------------------------------------------------------------
// w/d/h/m/s 다섯 component 로 이루어진 경과 시간 token.
// 각 component 는 독립적으로 있거나 없을 수 있다.
// 추출 중에만 존재하는 임시 값이다.
type Duration struct {
	values  [len(durationUnits)]int64
	present [len(durationUnits)]bool
}

// Component 는 unit 문자(w,d,h,m,s) 에 해당하는 값을 반환한다.
func (d Duration) Component(unit byte) (int64, bool) {
	for i, u := range durationUnits {
		if u.letter == unit {
			return d.values[i], d.present[i]
		}
	}
	return 0, false
}

// Empty 는 component 가 하나도 없는지 여부.
func (d Duration) Empty() bool {
	for _, ok := range d.present {
		if ok {
			return false
		}
	}
	return true
}

// Seconds 는 있는 component 만 배수를 곱해 합산한다.
// 모두 없으면 0.
func (d Duration) Seconds() int64 {
	var total int64
	for i, u := range durationUnits {
		if d.present[i] {
			total += d.values[i] * u.seconds
		}
	}
	return total
}

func (d Duration) String() string {
	var sb strings.Builder
	for i, u := range durationUnits {
		if d.present[i] {
			sb.WriteString(strconv.FormatInt(d.values[i], 10))
			sb.WriteByte(u.letter)
		}
	}
	return sb.String()
}

// ParseDuration 은 token 하나를 초 단위로 변환한다.
//
//	ParseDuration("2w3d") == 1468800
//	ParseDuration("45s")  == 45
//
// component 가 하나도 읽히지 않으면(빈 문자열 포함) false 를 반환한다.
// 마지막 component 뒤의 문자열은 무시한다.
func ParseDuration(token string) (int64, bool) {
	d, _, ok := scanDuration(token)
	if !ok || d.Empty() {
		return 0, false
	}
	return d.Seconds(), true
}

// scanDuration 은 s 의 앞부분에서 component 를 순서대로 읽는다.
//
// 각 unit 에 대해 "숫자들 + unit 문자" 가 이어지면 소비하고,
// 아니면 소비하지 않고 다음 unit 으로 넘어간다.
// 반환값 n 은 소비한 바이트 수.
// 값 또는 합계가 int64 를 넘으면 ok=false.
func scanDuration(s string) (d Duration, n int, ok bool) {
	var total int64
	for i, u := range durationUnits {
		digits := leadingDigits(s[n:])
		if digits == "" {
			continue
		}
		end := n + len(digits)
		if end >= len(s) || s[end] != u.letter {
			continue
		}

		v, err := strconv.ParseInt(digits, 10, 64)
		if err != nil || v > (math.MaxInt64-total)/u.seconds {
			return Duration{}, 0, false
		}
		total += v * u.seconds

		d.values[i] = v
		d.present[i] = true
		n = end + 1
	}
	return d, n, true
}
