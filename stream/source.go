// Package stream provides the byte source used by the UTF-8 validator.
//
// A Source wraps any io.Reader and exposes it as an io.ByteReader, which is
// all the validator needs: one byte at a time, strictly in order, with io.EOF
// at the end. On top of that it provides:
//   - Position tracking (bytes consumed so far)
//   - An optional byte limit
//   - Optional CRC-32 and SHA-256 digests of the consumed bytes
package stream

import (
	"bufio"
	"crypto/sha256"
	"errors"
	"fmt"
	"hash"
	"hash/crc32"
	"io"
)

// DefaultBufferSize is the read buffer size (default: 64 KiB).
const DefaultBufferSize = 64 << 10

// digestChunk is how many consumed bytes are batched before hashing.
const digestChunk = 4096

// ErrLimitExceeded is returned when the input is longer than the limit set
// with WithLimit.
var ErrLimitExceeded = errors.New("stream: byte limit exceeded")

// Source reads bytes from an io.Reader one at a time.
type Source struct {
	r      *bufio.Reader
	size   int
	n      int64
	limit  int64
	digest bool

	crc     hash.Hash32
	sha     hash.Hash
	pending []byte
}

// SourceOption configures a Source.
type SourceOption func(*Source)

// WithBufferSize sets the read buffer size.
func WithBufferSize(size int) SourceOption {
	return func(s *Source) {
		if size > 0 {
			s.size = size
		}
	}
}

// WithLimit makes ReadByte fail with ErrLimitExceeded once more than max
// bytes are available. Zero means no limit.
func WithLimit(max int64) SourceOption {
	return func(s *Source) {
		s.limit = max
	}
}

// WithDigest enables CRC-32 (IEEE) and SHA-256 over the consumed bytes.
func WithDigest() SourceOption {
	return func(s *Source) {
		s.digest = true
	}
}

// NewSource creates a new byte source over r.
func NewSource(r io.Reader, opts ...SourceOption) *Source {
	s := &Source{size: DefaultBufferSize}
	for _, opt := range opts {
		opt(s)
	}
	s.r = bufio.NewReaderSize(r, s.size)
	if s.digest {
		s.crc = crc32.New(crcTable)
		s.sha = sha256.New()
		s.pending = make([]byte, 0, digestChunk)
	}
	return s
}

// ReadByte returns the next byte, or io.EOF at the end of the input.
func (s *Source) ReadByte() (byte, error) {
	if s.limit > 0 && s.n >= s.limit {
		// At the limit: only a clean end of input is acceptable.
		if _, err := s.r.ReadByte(); err != nil {
			return 0, err
		}
		return 0, fmt.Errorf("%w: more than %d bytes", ErrLimitExceeded, s.limit)
	}

	b, err := s.r.ReadByte()
	if err != nil {
		return 0, err
	}
	s.n++

	if s.digest {
		s.pending = append(s.pending, b)
		if len(s.pending) == cap(s.pending) {
			s.flush()
		}
	}
	return b, nil
}

// Offset returns the number of bytes consumed so far.
func (s *Source) Offset() int64 {
	return s.n
}

// Digest returns the digests of the bytes consumed so far. The second
// result is false when WithDigest was not given.
func (s *Source) Digest() (Digest, bool) {
	if !s.digest {
		return Digest{}, false
	}
	s.flush()

	d := Digest{CRC32: s.crc.Sum32()}
	copy(d.SHA256[:], s.sha.Sum(nil))
	return d, true
}

func (s *Source) flush() {
	if len(s.pending) == 0 {
		return
	}
	s.crc.Write(s.pending)
	s.sha.Write(s.pending)
	s.pending = s.pending[:0]
}
