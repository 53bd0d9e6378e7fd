package protocol

import (
	"encoding/hex"

	"github.com/pkg/errors"
)

// UUID is a 16-byte identifier as it appears on the wire: tracing ids
// prepended to traced response bodies, and uuid/timeuuid column values.
type UUID [16]byte

// UUIDFromBytes builds a UUID from exactly 16 bytes.
func UUIDFromBytes(b []byte) (UUID, error) {
	var u UUID
	if len(b) != len(u) {
		return u, errors.Errorf("protocol: invalid UUID length %d", len(b))
	}
	copy(u[:], b)
	return u, nil
}

// Bytes returns a copy of the UUID's raw bytes.
func (u UUID) Bytes() []byte {
	b := make([]byte, len(u))
	copy(b, u[:])
	return b
}

// String renders the canonical 8-4-4-4-12 hex form.
func (u UUID) String() string {
	var buf [36]byte
	hex.Encode(buf[0:8], u[0:4])
	buf[8] = '-'
	hex.Encode(buf[9:13], u[4:6])
	buf[13] = '-'
	hex.Encode(buf[14:18], u[6:8])
	buf[18] = '-'
	hex.Encode(buf[19:23], u[8:10])
	buf[23] = '-'
	hex.Encode(buf[24:36], u[10:16])
	return string(buf[:])
}
