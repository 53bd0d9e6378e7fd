package compress

import (
	"github.com/golang/snappy"
	"github.com/pkg/errors"
)

// Snappy implements Compressor with the snappy block format, the
// algorithm servers advertise as "snappy".
type Snappy struct{}

func (Snappy) Name() string { return "snappy" }

func (Snappy) ShouldCompress(b []byte) bool {
	return len(b) >= MinCompressSize
}

func (Snappy) Compress(b []byte) ([]byte, error) {
	return snappy.Encode(nil, b), nil
}

func (Snappy) Decompress(b []byte) ([]byte, error) {
	size, err := snappy.DecodedLen(b)
	if err != nil {
		return nil, errors.Wrap(err, "snappy decompress")
	}
	if size > MaxDecodedSize {
		return nil, errors.Errorf("snappy decompress: declared size %d exceeds limit", size)
	}
	return snappy.Decode(nil, b)
}
