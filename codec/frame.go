package codec

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	"github.com/hupe1980/edgequery/internal/conv"
	"github.com/hupe1980/edgequery/internal/hash"
)

const (
	// Version is the binary frame version written by Encode.
	Version = 1

	magic = "EQL1"
)

var (
	// ErrBadMagic is returned when the input is not an edge list frame.
	ErrBadMagic = errors.New("codec: bad magic")
	// ErrUnsupportedVersion is returned for frames written by a newer format.
	ErrUnsupportedVersion = errors.New("codec: unsupported version")
	// ErrChecksum is returned when the body checksum does not match.
	ErrChecksum = errors.New("codec: checksum mismatch")
	// ErrCorrupt is returned for structurally invalid frames.
	ErrCorrupt = errors.New("codec: corrupt frame")
	// ErrInvalidEdge is returned by Encode for mismatched or negative indices.
	ErrInvalidEdge = errors.New("codec: invalid edge")
)

// Encode writes the edge list as a binary frame.
func Encode(w io.Writer, query, candidate []int, c Compression) error {
	if len(query) != len(candidate) {
		return fmt.Errorf("%w: %d query indices, %d candidate indices", ErrInvalidEdge, len(query), len(candidate))
	}
	if c > CompressionLZ4 {
		return fmt.Errorf("%w: %d", ErrUnknownCompression, c)
	}

	raw := make([]byte, 0, 4*len(query))
	for i := range query {
		qv, errQ := conv.IntToUint64(query[i])
		cv, errC := conv.IntToUint64(candidate[i])
		if errQ != nil || errC != nil {
			return fmt.Errorf("%w: edge %d is (%d, %d)", ErrInvalidEdge, i, query[i], candidate[i])
		}
		raw = binary.AppendUvarint(raw, qv)
		raw = binary.AppendUvarint(raw, cv)
	}

	stored, err := compress(raw, c)
	if err != nil {
		return err
	}

	hdr := make([]byte, 0, len(magic)+2+3*binary.MaxVarintLen64)
	hdr = append(hdr, magic...)
	hdr = append(hdr, Version, byte(c))
	hdr = binary.AppendUvarint(hdr, uint64(len(query)))
	hdr = binary.AppendUvarint(hdr, uint64(len(raw)))
	hdr = binary.AppendUvarint(hdr, uint64(len(stored)))

	if _, err := w.Write(hdr); err != nil {
		return err
	}
	payload := stored
	if payload == nil {
		payload = raw
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}

	var sum [4]byte
	binary.LittleEndian.PutUint32(sum[:], hash.CRC32C(raw))
	_, err = w.Write(sum[:])
	return err
}

// Decode reads one binary frame. If r does not implement io.ByteReader it is
// wrapped in a bufio.Reader, which may read past the end of the frame.
func Decode(r io.Reader) (query, candidate []int, err error) {
	br, ok := r.(interface {
		io.Reader
		io.ByteReader
	})
	if !ok {
		br = bufio.NewReader(r)
	}

	var head [len(magic) + 2]byte
	if _, err := io.ReadFull(br, head[:]); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if string(head[:len(magic)]) != magic {
		return nil, nil, ErrBadMagic
	}
	if v := head[len(magic)]; v != Version {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, v)
	}
	c := Compression(head[len(magic)+1])
	if c > CompressionLZ4 {
		return nil, nil, fmt.Errorf("%w: %d", ErrUnknownCompression, c)
	}

	edges, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: edge count: %w", ErrCorrupt, err)
	}
	rawLen, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: raw length: %w", ErrCorrupt, err)
	}
	storedLen, err := binary.ReadUvarint(br)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: stored length: %w", ErrCorrupt, err)
	}

	// Each pair takes between 2 and 2*MaxVarintLen64 bytes.
	const maxPair = 2 * binary.MaxVarintLen64
	if edges > rawLen/2 || rawLen/maxPair > edges || (rawLen/maxPair == edges && rawLen%maxPair != 0) {
		return nil, nil, fmt.Errorf("%w: %d edges in %d bytes", ErrCorrupt, edges, rawLen)
	}
	if storedLen >= rawLen && storedLen != 0 {
		return nil, nil, fmt.Errorf("%w: stored length %d exceeds raw length %d", ErrCorrupt, storedLen, rawLen)
	}
	if storedLen != 0 && rawLen > maxRawLen(storedLen, c) {
		return nil, nil, fmt.Errorf("%w: %d stored bytes cannot expand to %d", ErrCorrupt, storedLen, rawLen)
	}

	payloadLen := storedLen
	if payloadLen == 0 {
		payloadLen = rawLen
	}
	// Lengths come from the input, so the payload buffer grows with what is
	// actually read instead of being allocated up front.
	payload, err := io.ReadAll(io.LimitReader(br, int64(payloadLen)))
	if err != nil {
		return nil, nil, fmt.Errorf("%w: body: %w", ErrCorrupt, err)
	}
	if uint64(len(payload)) != payloadLen {
		return nil, nil, fmt.Errorf("%w: body: %w", ErrCorrupt, io.ErrUnexpectedEOF)
	}

	raw := payload
	if storedLen != 0 {
		if raw, err = decompress(payload, int(rawLen), c); err != nil {
			return nil, nil, err
		}
	}

	var sum [4]byte
	if _, err := io.ReadFull(br, sum[:]); err != nil {
		return nil, nil, fmt.Errorf("%w: checksum: %w", ErrCorrupt, err)
	}
	if binary.LittleEndian.Uint32(sum[:]) != hash.CRC32C(raw) {
		return nil, nil, ErrChecksum
	}

	query = make([]int, edges)
	candidate = make([]int, edges)
	for i := range query {
		q, n := binary.Uvarint(raw)
		if n <= 0 {
			return nil, nil, fmt.Errorf("%w: edge %d", ErrCorrupt, i)
		}
		raw = raw[n:]
		cand, n := binary.Uvarint(raw)
		if n <= 0 {
			return nil, nil, fmt.Errorf("%w: edge %d", ErrCorrupt, i)
		}
		raw = raw[n:]
		if query[i], err = conv.Uint64ToInt(q); err != nil {
			return nil, nil, fmt.Errorf("%w: edge %d: %w", ErrCorrupt, i, err)
		}
		if candidate[i], err = conv.Uint64ToInt(cand); err != nil {
			return nil, nil, fmt.Errorf("%w: edge %d: %w", ErrCorrupt, i, err)
		}
	}
	if len(raw) != 0 {
		return nil, nil, fmt.Errorf("%w: %d trailing body bytes", ErrCorrupt, len(raw))
	}
	return query, candidate, nil
}
