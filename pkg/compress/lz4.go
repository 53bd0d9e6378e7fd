package compress

import (
	"github.com/pierrec/lz4/v4"
	"github.com/pkg/errors"
)

// LZ4 implements Compressor with the lz4 block format. The wire form
// carries the uncompressed length as a big-endian uint32 prefix, as the
// server expects for the "lz4" algorithm.
type LZ4 struct{}

func (LZ4) Name() string { return "lz4" }

func (LZ4) ShouldCompress(b []byte) bool {
	return len(b) >= MinCompressSize
}

func (LZ4) Compress(b []byte) ([]byte, error) {
	out := make([]byte, 4+lz4.CompressBlockBound(len(b)))
	var c lz4.Compressor
	n, err := c.CompressBlock(b, out[4:])
	if err != nil {
		return nil, errors.Wrap(err, "lz4 compress")
	}
	out[0] = byte(len(b) >> 24)
	out[1] = byte(len(b) >> 16)
	out[2] = byte(len(b) >> 8)
	out[3] = byte(len(b))
	return out[:4+n], nil
}

func (LZ4) Decompress(b []byte) ([]byte, error) {
	if len(b) < 4 {
		return nil, errors.New("lz4 decompress: missing length prefix")
	}
	size := uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
	if size > MaxDecodedSize {
		return nil, errors.Errorf("lz4 decompress: declared size %d exceeds limit", size)
	}
	out := make([]byte, size)
	n, err := lz4.UncompressBlock(b[4:], out)
	if err != nil {
		return nil, errors.Wrap(err, "lz4 decompress")
	}
	return out[:n], nil
}
