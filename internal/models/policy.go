package models

import (
	"fmt"
	"strings"
)

// CoercionPolicy decides what a non-numeric count cell becomes. It applies
// to enrolled, present and rations alike.
type CoercionPolicy int

const (
	// PolicyMissing leaves invalid counts missing. Rows survive but the
	// field is excluded from snapshots, totals and trends.
	PolicyMissing CoercionPolicy = iota
	// PolicyZero turns invalid counts into 0.
	PolicyZero
)

func (p CoercionPolicy) String() string {
	if p == PolicyZero {
		return "zero"
	}
	return "missing"
}

// ParsePolicy accepts "missing" or "zero"; empty selects PolicyMissing.
func ParsePolicy(value string) (CoercionPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "missing":
		return PolicyMissing, nil
	case "zero":
		return PolicyZero, nil
	default:
		return PolicyMissing, fmt.Errorf("unknown numeric policy: %s", value)
	}
}
