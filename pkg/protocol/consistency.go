package protocol

import (
	"strings"

	"github.com/pkg/errors"
)

// Consistency is the replica-agreement level attached to queries and echoed
// back inside unavailable/timeout error details.
type Consistency uint16

const (
	ConsistencyAny         Consistency = 0x00
	ConsistencyOne         Consistency = 0x01
	ConsistencyTwo         Consistency = 0x02
	ConsistencyThree       Consistency = 0x03
	ConsistencyQuorum      Consistency = 0x04
	ConsistencyAll         Consistency = 0x05
	ConsistencyLocalQuorum Consistency = 0x06
	ConsistencyEachQuorum  Consistency = 0x07
	ConsistencySerial      Consistency = 0x08
	ConsistencyLocalSerial Consistency = 0x09
	ConsistencyLocalOne    Consistency = 0x0A
)

// String returns the protocol-level name of the consistency level.
func (c Consistency) String() string {
	switch c {
	case ConsistencyAny:
		return "ANY"
	case ConsistencyOne:
		return "ONE"
	case ConsistencyTwo:
		return "TWO"
	case ConsistencyThree:
		return "THREE"
	case ConsistencyQuorum:
		return "QUORUM"
	case ConsistencyAll:
		return "ALL"
	case ConsistencyLocalQuorum:
		return "LOCAL_QUORUM"
	case ConsistencyEachQuorum:
		return "EACH_QUORUM"
	case ConsistencySerial:
		return "SERIAL"
	case ConsistencyLocalSerial:
		return "LOCAL_SERIAL"
	case ConsistencyLocalOne:
		return "LOCAL_ONE"
	default:
		return "UNKNOWN"
	}
}

// ParseConsistency maps a case-insensitive level name back to its value.
func ParseConsistency(s string) (Consistency, error) {
	switch strings.ToUpper(s) {
	case "ANY":
		return ConsistencyAny, nil
	case "ONE":
		return ConsistencyOne, nil
	case "TWO":
		return ConsistencyTwo, nil
	case "THREE":
		return ConsistencyThree, nil
	case "QUORUM":
		return ConsistencyQuorum, nil
	case "ALL":
		return ConsistencyAll, nil
	case "LOCAL_QUORUM":
		return ConsistencyLocalQuorum, nil
	case "EACH_QUORUM":
		return ConsistencyEachQuorum, nil
	case "SERIAL":
		return ConsistencySerial, nil
	case "LOCAL_SERIAL":
		return ConsistencyLocalSerial, nil
	case "LOCAL_ONE":
		return ConsistencyLocalOne, nil
	default:
		return 0, errors.Errorf("protocol: invalid consistency %q", s)
	}
}
