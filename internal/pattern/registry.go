// internal/pattern/registry.go
package pattern

import "sort"

// SegmentImported 는 master 노드가 새 블록을 가져왔을 때 출력하는 문구.
// 이 문구가 있으면 block number 는 MasterBlockNumber 로만 읽는다.
const SegmentImported = "Imported new chain segment"

// ------------------------------------------------------------
// 고정 추출 규칙 목록
// ------------------------------------------------------------
var (
	// master
	MasterBlockNumber = NewInt("masterBlockNumber", "number=")
	PeerBlockNumber   = NewInt("peerBlockNumber", "blockNumber: ")
	BlockAge          = NewDuration("blockAge", "age=")
	PeerCount         = NewInt("peerCount", "peerCount: ")

	// replica
	ReplicaBlockNum = NewInt("replicaBlockNum", "num=")
	ReplicaBlockAge = NewDuration("replicaBlockAge", "blockAge=")
	OffsetNum       = NewInt("offsetNum", "offset=")
	OffsetAge       = NewDuration("offsetAge", "offsetAge=")
)

var registry = func() map[string]Pattern {
	m := make(map[string]Pattern)
	for _, p := range []Pattern{
		MasterBlockNumber, PeerBlockNumber, BlockAge, PeerCount,
		ReplicaBlockNum, ReplicaBlockAge, OffsetNum, OffsetAge,
	} {
		m[p.Name()] = p
	}
	return m
}()

// Lookup 은 이름으로 등록된 규칙을 찾는다.
func Lookup(name string) (Pattern, bool) {
	p, ok := registry[name]
	return p, ok
}

// Names 는 등록된 규칙 이름을 정렬해 반환한다.
func Names() []string {
	names := make([]string, 0, len(registry))
	for n := range registry {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
