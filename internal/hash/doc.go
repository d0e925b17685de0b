// Package hash provides the checksum used to frame data log records.
//
// Frames are protected by CRC32-Castagnoli (CRC32C), which Go computes with
// hardware instructions on x86 (SSE4.2) and ARM64:
//
//	checksum := hash.CRC32C(payload)
//
// For payloads written in pieces:
//
//	h := hash.NewCRC32C()
//	h.Write(header)
//	h.Write(body)
//	checksum := h.Sum32()
package hash
