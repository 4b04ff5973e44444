package utf8scan

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/Neumenon/utf8scan/stream"
)

// checkEvery is the number of characters between context checks. It must be
// a power of two.
const checkEvery = 4096

// Tally holds the character counts of a fully validated stream.
type Tally struct {
	ASCII     uint64 // 1-byte characters
	MultiByte uint64 // 2, 3 and 4-byte characters
	Bytes     uint64 // total bytes consumed
}

// Chars returns the total number of characters.
func (t Tally) Chars() uint64 {
	return t.ASCII + t.MultiByte
}

// String renders the success report.
func (t Tally) String() string {
	return fmt.Sprintf("Found %d ASCII and %d multi-byte UTF-8 characters.", t.ASCII, t.MultiByte)
}

// Validate reads src until io.EOF and counts its characters.
//
// It stops at the first malformed sequence and returns a *DecodeError; the
// Tally is then the zero value. A read error other than io.EOF is returned
// wrapped. ctx is only consulted between characters, never inside a
// sequence.
func Validate(ctx context.Context, src io.ByteReader) (Tally, error) {
	if err := ctx.Err(); err != nil {
		return Tally{}, err
	}

	d := decoder{src: src}
	var t Tally
	for n := uint64(1); ; n++ {
		_, size, err := d.next()
		if err == io.EOF {
			return t, nil
		}
		if err != nil {
			return Tally{}, err
		}

		if size == 1 {
			t.ASCII++
		} else {
			t.MultiByte++
		}
		t.Bytes += uint64(size)

		if n&(checkEvery-1) == 0 {
			if err := ctx.Err(); err != nil {
				return Tally{}, err
			}
		}
	}
}

// ValidateReader validates r, buffering it when it is not already an
// io.ByteReader.
func ValidateReader(ctx context.Context, r io.Reader) (Tally, error) {
	if br, ok := r.(io.ByteReader); ok {
		return Validate(ctx, br)
	}
	return Validate(ctx, stream.NewSource(r))
}

// ValidateBytes validates an in-memory buffer.
func ValidateBytes(p []byte) (Tally, error) {
	return Validate(context.Background(), bytes.NewReader(p))
}

// ============================================================
// Decoder
// ============================================================

// decoder is the per-call state machine. off counts consumed bytes.
type decoder struct {
	src io.ByteReader
	off int64
}

// next decodes one character. It returns io.EOF only at a sequence
// boundary.
func (d *decoder) next() (rune, int, error) {
	start := d.off
	b, err := d.src.ReadByte()
	if err != nil {
		if err == io.EOF {
			return 0, 0, io.EOF
		}
		return 0, 0, d.readErr(err)
	}
	d.off++

	f, ok := classify(b)
	if !ok {
		return 0, 0, &DecodeError{Kind: KindInvalidHeaderByte, Byte: b, Offset: start}
	}

	cp := f.payload(b)
	for i := 1; i < f.size; i++ {
		if cp, err = d.tail(cp); err != nil {
			return 0, 0, err
		}
	}

	if kind := f.check(cp); kind != 0 {
		return 0, 0, &DecodeError{Kind: kind, CodePoint: cp, Offset: start}
	}
	return cp, f.size, nil
}

// tail reads one continuation byte and appends its payload to cp.
func (d *decoder) tail(cp rune) (rune, error) {
	b, err := d.src.ReadByte()
	if err != nil {
		if err == io.EOF {
			return cp, &DecodeError{Kind: KindInvalidCodePoint, CodePoint: cp, Offset: d.off, Truncated: true}
		}
		return cp, d.readErr(err)
	}
	off := d.off
	d.off++

	if !isTail(b) {
		return cp, &DecodeError{Kind: KindInvalidTailByte, Byte: b, Offset: off}
	}
	return cp<<6 | rune(b&^tailMask), nil
}

func (d *decoder) readErr(err error) error {
	return fmt.Errorf("read byte at offset %d: %w", d.off, err)
}
