// Package codec serializes edge lists.
//
// Two forms are supported: a compact binary frame (Encode, Decode) and a
// JSON document (the JSON codec). The binary frame is
//
//	magic "EQL1" | version u8 | compression u8 |
//	uvarint edges | uvarint raw length | uvarint stored length |
//	payload | crc32c u32 (little endian, over the raw body)
//
// The raw body is the uvarint-encoded (query, candidate) pairs. A stored
// length of zero means the payload is the raw body itself, which happens
// for CompressionNone and whenever compression does not pay off.
package codec

import "fmt"

// Codec encodes/decodes values.
// Implementations must be safe for concurrent use.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
	Name() string
}

// ByName returns a built-in codec by its stable name.
func ByName(name string) (Codec, bool) {
	switch name {
	case "json":
		return JSON{}, true
	default:
		return nil, false
	}
}

// MustMarshal is a helper for tests and benchmarks.
func MustMarshal(c Codec, v any) []byte {
	if c == nil {
		c = Default
	}
	b, err := c.Marshal(v)
	if err != nil {
		panic(fmt.Errorf("codec %s marshal failed: %w", c.Name(), err))
	}
	return b
}
