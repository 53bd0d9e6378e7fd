package protocol

import (
	"net"

	"github.com/pkg/errors"
)

// ErrBufferTooShort is returned when a cursor read runs past the unread
// portion of a Buffer. Inside frame decoding this means a malformed body:
// the frame's declared length was buffered in full before decoding began.
var ErrBufferTooShort = errors.New("protocol: buffer too short")

// Buffer is an owned, growable byte arena with an explicit read cursor.
// Appends grow the arena; reads consume from the front and are never
// re-observable. Consumed bytes are reclaimed on the next append, so a
// long-lived accumulation buffer does not grow without bound.
//
// Byte-slice reads that may be retained by the caller (ReadBytes,
// ReadShortBytes) return copies; everything else is copied implicitly by
// value or string conversion.
type Buffer struct {
	b []byte
	r int
}

// NewBuffer wraps b, taking ownership of it. The cursor starts at the
// beginning.
func NewBuffer(b []byte) *Buffer {
	return &Buffer{b: b}
}

// Remaining reports the number of unread bytes.
func (b *Buffer) Remaining() int {
	return len(b.b) - b.r
}

// Bytes returns a view of the unread bytes. The view is invalidated by the
// next Append.
func (b *Buffer) Bytes() []byte {
	return b.b[b.r:]
}

// Append adds p to the end of the buffer, first discarding the consumed
// prefix so cursor reads never re-scan old bytes.
func (b *Buffer) Append(p []byte) {
	if b.r > 0 {
		n := copy(b.b, b.b[b.r:])
		b.b = b.b[:n]
		b.r = 0
	}
	b.b = append(b.b, p...)
}

// Discard consumes and drops n unread bytes.
func (b *Buffer) Discard(n int) error {
	if b.Remaining() < n {
		return ErrBufferTooShort
	}
	b.r += n
	return nil
}

// next consumes n bytes and returns them as a view into the arena. The view
// is only valid until the next Append; copy before retaining.
func (b *Buffer) next(n int) ([]byte, error) {
	if n < 0 || b.Remaining() < n {
		return nil, ErrBufferTooShort
	}
	v := b.b[b.r : b.r+n]
	b.r += n
	return v, nil
}

// ReadByte consumes a single byte.
func (b *Buffer) ReadByte() (byte, error) {
	if b.Remaining() < 1 {
		return 0, ErrBufferTooShort
	}
	c := b.b[b.r]
	b.r++
	return c, nil
}

// ReadShort consumes a big-endian uint16.
func (b *Buffer) ReadShort() (uint16, error) {
	v, err := b.next(2)
	if err != nil {
		return 0, err
	}
	return uint16(v[0])<<8 | uint16(v[1]), nil
}

// ReadInt consumes a big-endian int32.
func (b *Buffer) ReadInt() (int32, error) {
	v, err := b.ReadUint()
	return int32(v), err
}

// ReadUint consumes a big-endian uint32.
func (b *Buffer) ReadUint() (uint32, error) {
	v, err := b.next(4)
	if err != nil {
		return 0, err
	}
	return uint32(v[0])<<24 | uint32(v[1])<<16 | uint32(v[2])<<8 | uint32(v[3]), nil
}

// ReadLong consumes a big-endian int64.
func (b *Buffer) ReadLong() (int64, error) {
	v, err := b.next(8)
	if err != nil {
		return 0, err
	}
	return int64(v[0])<<56 | int64(v[1])<<48 | int64(v[2])<<40 | int64(v[3])<<32 |
		int64(v[4])<<24 | int64(v[5])<<16 | int64(v[6])<<8 | int64(v[7]), nil
}

// ReadString consumes a short-length-prefixed UTF-8 string.
func (b *Buffer) ReadString() (string, error) {
	n, err := b.ReadShort()
	if err != nil {
		return "", err
	}
	v, err := b.next(int(n))
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// ReadLongString consumes an int-length-prefixed UTF-8 string.
func (b *Buffer) ReadLongString() (string, error) {
	n, err := b.ReadInt()
	if err != nil {
		return "", err
	}
	if n < 0 {
		return "", errors.Wrapf(ErrBufferTooShort, "negative string length %d", n)
	}
	v, err := b.next(int(n))
	if err != nil {
		return "", err
	}
	return string(v), nil
}

// ReadBytes consumes an int-length-prefixed byte blob. A negative length
// denotes a null blob and yields nil. The returned slice is a copy, safe to
// retain.
func (b *Buffer) ReadBytes() ([]byte, error) {
	n, err := b.ReadInt()
	if err != nil {
		return nil, err
	}
	if n < 0 {
		return nil, nil
	}
	v, err := b.next(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// ReadShortBytes consumes a short-length-prefixed byte blob. The returned
// slice is a copy, safe to retain.
func (b *Buffer) ReadShortBytes() ([]byte, error) {
	n, err := b.ReadShort()
	if err != nil {
		return nil, err
	}
	v, err := b.next(int(n))
	if err != nil {
		return nil, err
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// ReadUUID consumes a fixed 16-byte identifier.
func (b *Buffer) ReadUUID() (UUID, error) {
	var u UUID
	v, err := b.next(len(u))
	if err != nil {
		return u, err
	}
	copy(u[:], v)
	return u, nil
}

// ReadInet consumes a network endpoint: a one-byte address size, the
// address bytes, and a big-endian int32 port.
func (b *Buffer) ReadInet() (net.IP, int32, error) {
	size, err := b.ReadByte()
	if err != nil {
		return nil, 0, err
	}
	v, err := b.next(int(size))
	if err != nil {
		return nil, 0, err
	}
	ip := make(net.IP, len(v))
	copy(ip, v)
	port, err := b.ReadInt()
	if err != nil {
		return nil, 0, err
	}
	return ip, port, nil
}

// ReadConsistency consumes a consistency level.
func (b *Buffer) ReadConsistency() (Consistency, error) {
	v, err := b.ReadShort()
	return Consistency(v), err
}

// ReadStringList consumes a short count followed by that many strings.
func (b *Buffer) ReadStringList() ([]string, error) {
	n, err := b.ReadShort()
	if err != nil {
		return nil, err
	}
	list := make([]string, n)
	for i := range list {
		if list[i], err = b.ReadString(); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// ReadStringMap consumes a short count followed by that many string pairs.
func (b *Buffer) ReadStringMap() (map[string]string, error) {
	n, err := b.ReadShort()
	if err != nil {
		return nil, err
	}
	m := make(map[string]string, n)
	for i := 0; i < int(n); i++ {
		k, err := b.ReadString()
		if err != nil {
			return nil, err
		}
		v, err := b.ReadString()
		if err != nil {
			return nil, err
		}
		m[k] = v
	}
	return m, nil
}

// ReadStringMultimap consumes a short count followed by that many
// string-to-string-list pairs.
func (b *Buffer) ReadStringMultimap() (map[string][]string, error) {
	n, err := b.ReadShort()
	if err != nil {
		return nil, err
	}
	m := make(map[string][]string, n)
	for i := 0; i < int(n); i++ {
		k, err := b.ReadString()
		if err != nil {
			return nil, err
		}
		v, err := b.ReadStringList()
		if err != nil {
			return nil, err
		}
		m[k] = v
	}
	return m, nil
}

// AppendByte appends a single byte.
func (b *Buffer) AppendByte(c byte) {
	b.Append([]byte{c})
}

// AppendShort appends a big-endian uint16.
func (b *Buffer) AppendShort(v uint16) {
	b.Append([]byte{byte(v >> 8), byte(v)})
}

// AppendInt appends a big-endian int32.
func (b *Buffer) AppendInt(v int32) {
	b.AppendUint(uint32(v))
}

// AppendUint appends a big-endian uint32.
func (b *Buffer) AppendUint(v uint32) {
	b.Append([]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}

// AppendLong appends a big-endian int64.
func (b *Buffer) AppendLong(v int64) {
	b.Append([]byte{
		byte(v >> 56), byte(v >> 48), byte(v >> 40), byte(v >> 32),
		byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v),
	})
}

// AppendString appends a short-length-prefixed string.
func (b *Buffer) AppendString(s string) {
	b.AppendShort(uint16(len(s)))
	b.Append([]byte(s))
}

// AppendLongString appends an int-length-prefixed string.
func (b *Buffer) AppendLongString(s string) {
	b.AppendInt(int32(len(s)))
	b.Append([]byte(s))
}

// AppendBytes appends an int-length-prefixed byte blob; nil is written as a
// null blob (length -1).
func (b *Buffer) AppendBytes(p []byte) {
	if p == nil {
		b.AppendInt(-1)
		return
	}
	b.AppendInt(int32(len(p)))
	b.Append(p)
}

// AppendShortBytes appends a short-length-prefixed byte blob.
func (b *Buffer) AppendShortBytes(p []byte) {
	b.AppendShort(uint16(len(p)))
	b.Append(p)
}

// AppendUUID appends the raw 16 bytes of u.
func (b *Buffer) AppendUUID(u UUID) {
	b.Append(u[:])
}

// AppendConsistency appends a consistency level.
func (b *Buffer) AppendConsistency(c Consistency) {
	b.AppendShort(uint16(c))
}

// AppendStringList appends a short count followed by the strings.
func (b *Buffer) AppendStringList(list []string) {
	b.AppendShort(uint16(len(list)))
	for _, s := range list {
		b.AppendString(s)
	}
}

// AppendStringMap appends a short count followed by the key/value pairs.
func (b *Buffer) AppendStringMap(m map[string]string) {
	b.AppendShort(uint16(len(m)))
	for k, v := range m {
		b.AppendString(k)
		b.AppendString(v)
	}
}
