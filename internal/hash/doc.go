// Package hash provides the checksum used by the edge list frame format.
//
// All checksums use CRC32-Castagnoli (CRC32C). Go's crc32 package uses the
// SSE4.2 and ARM CRC instructions when they are available.
//
// For one-shot checksums:
//
//	checksum := hash.CRC32C(data)
//
// For streaming checksums:
//
//	h := hash.NewCRC32C()
//	h.Write(chunk1)
//	h.Write(chunk2)
//	checksum := h.Sum32()
package hash
