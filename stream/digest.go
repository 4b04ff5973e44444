package stream

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"hash/crc32"
)

// crcTable is the IEEE CRC-32 table.
var crcTable = crc32.MakeTable(crc32.IEEE)

// Digest holds checksums of a consumed input.
type Digest struct {
	CRC32  uint32
	SHA256 [32]byte
}

// ComputeDigest computes the digests of an in-memory buffer.
func ComputeDigest(data []byte) Digest {
	return Digest{
		CRC32:  crc32.Checksum(data, crcTable),
		SHA256: sha256.Sum256(data),
	}
}

// CRCHex returns the CRC-32 as 8 lowercase hex digits.
func (d Digest) CRCHex() string {
	return fmt.Sprintf("%08x", d.CRC32)
}

// SHA256Hex returns the SHA-256 as lowercase hex.
func (d Digest) SHA256Hex() string {
	return hex.EncodeToString(d.SHA256[:])
}
