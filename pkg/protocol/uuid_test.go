package protocol

import (
	"bytes"
	"testing"
)

func TestUUIDFromBytes(t *testing.T) {
	raw := []byte{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12, 13, 14, 15}
	u, err := UUIDFromBytes(raw)
	if err != nil {
		t.Fatal(err)
	}
	if !bytes.Equal(u.Bytes(), raw) {
		t.Errorf("Bytes() = %x", u.Bytes())
	}
	if _, err := UUIDFromBytes(raw[:15]); err == nil {
		t.Error("UUIDFromBytes() accepted 15 bytes")
	}
}

func TestUUIDBytesIsACopy(t *testing.T) {
	u := UUID{1, 2, 3}
	b := u.Bytes()
	b[0] = 0xFF
	if u[0] != 1 {
		t.Error("mutating Bytes() changed the UUID")
	}
}
