// internal/model/role.go
package model

import (
	"fmt"
	"strings"
)

// Role
// ------------------------------------------------------------
// 로그를 출력한 노드의 역할. 어떤 추출 규칙을 적용할지,
// 어떤 namespace 로 제출할지를 결정한다.
// 한 번의 호출에서는 하나의 Role 만 사용한다.
type Role int

const (
	RoleMaster Role = iota + 1
	RoleReplica
)

func (r Role) String() string {
	switch r {
	case RoleMaster:
		return "master"
	case RoleReplica:
		return "replica"
	default:
		return fmt.Sprintf("role(%d)", int(r))
	}
}

// Namespace 는 sink 제출 시 사용하는 CloudWatch namespace.
func (r Role) Namespace() string {
	switch r {
	case RoleMaster:
		return "BlockData"
	case RoleReplica:
		return "ReplicaData"
	default:
		return ""
	}
}

// ParseRole 은 설정 값을 Role 로 변환한다.
// 기존 Lambda 핸들러 이름(masterHandler / replicaHandler)도 허용하며,
// "logMonitor.masterHandler" 처럼 모듈 prefix 가 붙어 있으면 제거한다.
func ParseRole(s string) (Role, error) {
	name := strings.TrimSpace(s)
	if i := strings.LastIndexByte(name, '.'); i >= 0 {
		name = name[i+1:]
	}
	switch name {
	case "master", "masterHandler":
		return RoleMaster, nil
	case "replica", "replicaHandler":
		return RoleReplica, nil
	}
	return 0, fmt.Errorf("unknown node role %q", s)
}
