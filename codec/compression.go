package codec

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Compression selects the payload compression of a binary frame.
type Compression uint8

const (
	// CompressionNone stores the body as is.
	CompressionNone Compression = 0
	// CompressionZstd compresses the body with zstd (better ratio).
	CompressionZstd Compression = 1
	// CompressionLZ4 compresses the body with LZ4 block compression (faster).
	CompressionLZ4 Compression = 2
)

// ErrUnknownCompression is returned for an unrecognized compression.
var ErrUnknownCompression = errors.New("codec: unknown compression")

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZstd:
		return "zstd"
	case CompressionLZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Compression(%d)", uint8(c))
	}
}

// ParseCompression parses "none", "zstd" or "lz4".
func ParseCompression(s string) (Compression, error) {
	switch strings.ToLower(s) {
	case "", "none":
		return CompressionNone, nil
	case "zstd":
		return CompressionZstd, nil
	case "lz4":
		return CompressionLZ4, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownCompression, s)
	}
}

var (
	zstdEncoderPool sync.Pool
	zstdDecoderPool sync.Pool
)

func getZstdEncoder() (*zstd.Encoder, error) {
	if v := zstdEncoderPool.Get(); v != nil {
		return v.(*zstd.Encoder), nil
	}
	return zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
}

func getZstdDecoder() (*zstd.Decoder, error) {
	if v := zstdDecoderPool.Get(); v != nil {
		return v.(*zstd.Decoder), nil
	}
	return zstd.NewReader(nil, zstd.WithDecodeAllCapLimit(true))
}

const (
	// An RLE block expands 4 stored bytes into at most 128 KiB.
	maxZstdExpansion = (128 << 10) / 4
	// A literal run extension byte encodes at most 255 bytes.
	maxLZ4Expansion = 255
)

// maxRawLen is the largest body a payload of storedLen bytes can decompress
// to under c.
func maxRawLen(storedLen uint64, c Compression) uint64 {
	var ratio uint64
	switch c {
	case CompressionZstd:
		ratio = maxZstdExpansion
	case CompressionLZ4:
		ratio = maxLZ4Expansion
	default:
		return storedLen
	}
	if storedLen > math.MaxUint64/ratio {
		return math.MaxUint64
	}
	return storedLen * ratio
}

// compress returns the compressed form of data, or nil if the compressed
// form would not be smaller.
func compress(data []byte, c Compression) ([]byte, error) {
	if len(data) == 0 {
		return nil, nil
	}

	var out []byte
	switch c {
	case CompressionNone:
		return nil, nil
	case CompressionZstd:
		enc, err := getZstdEncoder()
		if err != nil {
			return nil, err
		}
		out = enc.EncodeAll(data, nil)
		zstdEncoderPool.Put(enc)
	case CompressionLZ4:
		buf := make([]byte, lz4.CompressBlockBound(len(data)))
		n, err := lz4.CompressBlock(data, buf, nil)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, nil // incompressible
		}
		out = buf[:n]
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, c)
	}

	if len(out) >= len(data) {
		return nil, nil
	}
	return out, nil
}

// decompress expands stored into exactly rawLen bytes. Callers bound rawLen
// with maxRawLen first; zstd output is capped at the destination capacity.
func decompress(stored []byte, rawLen int, c Compression) ([]byte, error) {
	raw := make([]byte, rawLen)

	switch c {
	case CompressionZstd:
		dec, err := getZstdDecoder()
		if err != nil {
			return nil, err
		}
		defer zstdDecoderPool.Put(dec)

		out, err := dec.DecodeAll(stored, raw[:0])
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if len(out) != rawLen {
			return nil, fmt.Errorf("%w: decompressed %d bytes, want %d", ErrCorrupt, len(out), rawLen)
		}
		return out, nil
	case CompressionLZ4:
		n, err := lz4.UncompressBlock(stored, raw)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
		}
		if n != rawLen {
			return nil, fmt.Errorf("%w: decompressed %d bytes, want %d", ErrCorrupt, n, rawLen)
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownCompression, c)
	}
}
