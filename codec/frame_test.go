package codec

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"math/rand/v2"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEdges(n int) (query, candidate []int) {
	rng := rand.New(rand.NewPCG(1, 2))
	query = make([]int, n)
	candidate = make([]int, n)
	for i := range n {
		query[i] = i / 16
		candidate[i] = rng.IntN(100000)
	}
	return query, candidate
}

func TestEncodeDecode(t *testing.T) {
	query, candidate := sampleEdges(5000)

	for _, c := range []Compression{CompressionNone, CompressionZstd, CompressionLZ4} {
		t.Run(c.String(), func(t *testing.T) {
			var buf bytes.Buffer
			require.NoError(t, Encode(&buf, query, candidate, c))

			q, cand, err := Decode(&buf)
			require.NoError(t, err)
			assert.Equal(t, query, q)
			assert.Equal(t, candidate, cand)
			assert.Zero(t, buf.Len(), "frame fully consumed")
		})
	}
}

func TestEncodeCompresses(t *testing.T) {
	query := make([]int, 10000)
	candidate := make([]int, 10000)
	for i := range query {
		query[i] = i / 32
		candidate[i] = i % 32
	}

	var plain, packed bytes.Buffer
	require.NoError(t, Encode(&plain, query, candidate, CompressionNone))
	require.NoError(t, Encode(&packed, query, candidate, CompressionZstd))
	assert.Less(t, packed.Len(), plain.Len())
}

func TestEncodeDecodeEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, nil, nil, CompressionZstd))

	q, c, err := Decode(&buf)
	require.NoError(t, err)
	assert.Empty(t, q)
	assert.Empty(t, c)
}

func TestDecodeNonByteReader(t *testing.T) {
	query, candidate := sampleEdges(100)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, query, candidate, CompressionLZ4))

	q, c, err := Decode(struct{ io.Reader }{&buf})
	require.NoError(t, err)
	assert.Equal(t, query, q)
	assert.Equal(t, candidate, c)
}

func TestEncodeErrors(t *testing.T) {
	var buf bytes.Buffer
	assert.ErrorIs(t, Encode(&buf, []int{1, 2}, []int{1}, CompressionNone), ErrInvalidEdge)
	assert.ErrorIs(t, Encode(&buf, []int{-1}, []int{1}, CompressionNone), ErrInvalidEdge)
	assert.ErrorIs(t, Encode(&buf, []int{1}, []int{1}, Compression(9)), ErrUnknownCompression)
}

func TestDecodeErrors(t *testing.T) {
	query, candidate := sampleEdges(64)

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, query, candidate, CompressionNone))
	frame := buf.Bytes()

	mutate := func(fn func(b []byte)) *bytes.Reader {
		b := bytes.Clone(frame)
		fn(b)
		return bytes.NewReader(b)
	}

	tests := []struct {
		name string
		in   *bytes.Reader
		err  error
	}{
		{"BadMagic", mutate(func(b []byte) { b[0] = 'X' }), ErrBadMagic},
		{"Version", mutate(func(b []byte) { b[4] = 9 }), ErrUnsupportedVersion},
		{"Compression", mutate(func(b []byte) { b[5] = 7 }), ErrUnknownCompression},
		{"Checksum", mutate(func(b []byte) { b[len(b)-1] ^= 0xFF }), ErrChecksum},
		{"BodyFlip", mutate(func(b []byte) { b[len(b)-5] ^= 0x01 }), ErrChecksum},
		{"Truncated", bytes.NewReader(frame[:len(frame)-10]), ErrCorrupt},
		{"Empty", bytes.NewReader(nil), ErrCorrupt},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(tt.in)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func craftFrame(c Compression, edges, rawLen, storedLen uint64, payload []byte) []byte {
	b := []byte("EQL1")
	b = append(b, Version, byte(c))
	b = binary.AppendUvarint(b, edges)
	b = binary.AppendUvarint(b, rawLen)
	b = binary.AppendUvarint(b, storedLen)
	b = append(b, payload...)
	return append(b, 0, 0, 0, 0)
}

func TestDecodeRejectsImplausibleLengths(t *testing.T) {
	payload := []byte{0x28, 0xb5, 0x2f, 0xfd}

	tests := []struct {
		name  string
		frame []byte
	}{
		{"ZstdHugeRaw", craftFrame(CompressionZstd, 1<<37, 1<<38, 4, payload)},
		{"LZ4HugeRaw", craftFrame(CompressionLZ4, 1<<20, 1<<21, 4, payload)},
		{"NoneWithStoredLen", craftFrame(CompressionNone, 4, 8, 4, payload)},
		{"ZstdMaxRaw", craftFrame(CompressionZstd, math.MaxUint64/4, math.MaxUint64/2, math.MaxUint64/4, payload)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := Decode(bytes.NewReader(tt.frame))
			assert.ErrorIs(t, err, ErrCorrupt)
		})
	}
}

func TestMaxRawLen(t *testing.T) {
	assert.Equal(t, uint64(4*maxZstdExpansion), maxRawLen(4, CompressionZstd))
	assert.Equal(t, uint64(4*maxLZ4Expansion), maxRawLen(4, CompressionLZ4))
	assert.Equal(t, uint64(4), maxRawLen(4, CompressionNone))
	assert.Equal(t, uint64(math.MaxUint64), maxRawLen(math.MaxUint64/2, CompressionZstd))
}

func TestParseCompression(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionZstd, CompressionLZ4} {
		got, err := ParseCompression(strings.ToUpper(c.String()))
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}

	_, err := ParseCompression("brotli")
	assert.ErrorIs(t, err, ErrUnknownCompression)
}

func TestJSONCodec(t *testing.T) {
	type edges struct {
		Query     []int `json:"query"`
		Candidate []int `json:"candidate"`
	}

	c, ok := ByName("json")
	require.True(t, ok)

	data := MustMarshal(c, edges{Query: []int{0, 1}, Candidate: []int{2, 3}})
	assert.JSONEq(t, `{"query":[0,1],"candidate":[2,3]}`, string(data))

	var out edges
	require.NoError(t, c.Unmarshal(data, &out))
	assert.Equal(t, []int{0, 1}, out.Query)

	_, ok = ByName("go-json")
	assert.False(t, ok)
}

func BenchmarkEncode(b *testing.B) {
	query, candidate := sampleEdges(100000)

	for _, c := range []Compression{CompressionNone, CompressionZstd, CompressionLZ4} {
		b.Run(c.String(), func(b *testing.B) {
			b.ReportAllocs()
			var buf bytes.Buffer
			for b.Loop() {
				buf.Reset()
				if err := Encode(&buf, query, candidate, c); err != nil {
					b.Fatal(err)
				}
			}
			b.SetBytes(int64(buf.Len()))
		})
	}
}
