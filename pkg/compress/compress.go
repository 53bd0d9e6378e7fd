// Package compress provides the pluggable frame-body compressors the wire
// codec negotiates at startup. Snappy and LZ4 are the algorithms
// Cassandra-compatible servers accept.
package compress

// Compressor compresses and decompresses frame bodies. Implementations
// must be safe for concurrent use; the codec shares one instance between
// the encode and decode paths of a connection.
type Compressor interface {
	// Name is the algorithm name sent in the STARTUP COMPRESSION option.
	Name() string

	// ShouldCompress reports whether compressing this specific body is
	// worthwhile; the encoder consults it per frame.
	ShouldCompress(b []byte) bool

	// Compress returns the compressed form of b.
	Compress(b []byte) ([]byte, error)

	// Decompress returns the original form of a compressed body.
	Decompress(b []byte) ([]byte, error)
}

// MinCompressSize is the body size below which compressing is not worth
// the CPU or the header byte: tiny bodies usually grow.
const MinCompressSize = 64

// MaxDecodedSize caps the output a Decompress call will allocate. The
// length carried inside a compressed body is untrusted input; a declared
// size above this limit fails instead of allocating. It matches the
// codec's frame-size cap.
const MaxDecodedSize = 256 * 1024 * 1024
