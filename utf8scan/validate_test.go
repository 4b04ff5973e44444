package utf8scan

import (
	"bytes"
	"context"
	"errors"
	"io"
	"math/rand"
	"strings"
	"testing"
	"testing/iotest"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// ============================================================
// Scenarios
// ============================================================

func TestValidate_Scenarios(t *testing.T) {
	tests := []struct {
		name      string
		in        []byte
		ascii     uint64
		multibyte uint64
	}{
		{"empty", nil, 0, 0},
		{"ascii", []byte("hello"), 5, 0},
		{"mixed", []byte{0x41, 0xC3, 0xA9, 0xE2, 0x82, 0xAC}, 1, 2},
		{"max 1-byte", []byte{0x7F}, 1, 0},
		{"nul", []byte{0x00}, 1, 0},
		{"min 2-byte", []byte{0xC2, 0x80}, 0, 1},
		{"min 3-byte", []byte{0xE0, 0xA0, 0x80}, 0, 1},
		{"before surrogates", []byte{0xED, 0x9F, 0xBF}, 0, 1},
		{"after surrogates", []byte{0xEE, 0x80, 0x80}, 0, 1},
		{"max 3-byte", []byte{0xEF, 0xBF, 0xBF}, 0, 1},
		{"min 4-byte", []byte{0xF0, 0x90, 0x80, 0x80}, 0, 1},
		{"max code point", []byte{0xF4, 0x8F, 0xBF, 0xBF}, 0, 1},
		{"emoji text", []byte("smile 😀 ok"), 9, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tally, err := ValidateBytes(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.ascii, tally.ASCII)
			assert.Equal(t, tt.multibyte, tally.MultiByte)
			assert.Equal(t, uint64(len(tt.in)), tally.Bytes)
		})
	}
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		in     []byte
		kind   Kind
		b      byte
		cp     rune
		offset int64
		msg    string
		exit   int
	}{
		{
			name: "lone continuation byte", in: []byte{0x80},
			kind: KindInvalidHeaderByte, b: 0x80, offset: 0,
			msg: "Invalid UTF-8 header byte: 0x80", exit: 1,
		},
		{
			name: "five-byte header", in: []byte{0x41, 0xF8, 0x88, 0x80, 0x80, 0x80},
			kind: KindInvalidHeaderByte, b: 0xF8, offset: 1,
			msg: "Invalid UTF-8 header byte: 0xF8", exit: 1,
		},
		{
			name: "0xFF header", in: []byte{0xFF},
			kind: KindInvalidHeaderByte, b: 0xFF,
			msg: "Invalid UTF-8 header byte: 0xFF", exit: 1,
		},
		{
			name: "ascii where tail expected", in: []byte{0xC3, 0x41},
			kind: KindInvalidTailByte, b: 0x41, offset: 1,
			msg: "Invalid UTF-8 tail byte: 0x41", exit: 2,
		},
		{
			name: "header where tail expected", in: []byte{0xE2, 0x82, 0xE2},
			kind: KindInvalidTailByte, b: 0xE2, offset: 2,
			msg: "Invalid UTF-8 tail byte: 0xE2", exit: 2,
		},
		{
			name: "surrogate low bound", in: []byte{0xED, 0xA0, 0x80},
			kind: KindInvalidCodePoint, cp: 0xD800,
			msg: "Invalid UTF-8 code point: U+D800", exit: 3,
		},
		{
			name: "surrogate high bound", in: []byte{0x20, 0xED, 0xBF, 0xBF},
			kind: KindInvalidCodePoint, cp: 0xDFFF, offset: 1,
			msg: "Invalid UTF-8 code point: U+DFFF", exit: 3,
		},
		{
			name: "above max code point", in: []byte{0xF4, 0x90, 0x80, 0x80},
			kind: KindInvalidCodePoint, cp: 0x110000,
			msg: "Invalid UTF-8 code point: U+110000", exit: 3,
		},
		{
			name: "largest 4-byte payload", in: []byte{0xF7, 0xBF, 0xBF, 0xBF},
			kind: KindInvalidCodePoint, cp: 0x1FFFFF,
			msg: "Invalid UTF-8 code point: U+1FFFFF", exit: 3,
		},
		{
			name: "overlong nul", in: []byte{0xC0, 0x80},
			kind: KindOverlongEncoding, cp: 0,
			msg: "Overlong UTF-8 code point: U+0000", exit: 4,
		},
		{
			name: "overlong 0x7F", in: []byte{0xC1, 0xBF},
			kind: KindOverlongEncoding, cp: 0x7F,
			msg: "Overlong UTF-8 code point: U+007F", exit: 4,
		},
		{
			name: "overlong 3-byte", in: []byte{0xE0, 0x9F, 0xBF},
			kind: KindOverlongEncoding, cp: 0x7FF,
			msg: "Overlong UTF-8 code point: U+07FF", exit: 4,
		},
		{
			name: "overlong 4-byte", in: []byte{0xF0, 0x8F, 0xBF, 0xBF},
			kind: KindOverlongEncoding, cp: 0xFFFF,
			msg: "Overlong UTF-8 code point: U+FFFF", exit: 4,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tally, err := ValidateBytes(tt.in)
			require.Error(t, err)
			assert.Zero(t, tally)

			var de *DecodeError
			require.True(t, errors.As(err, &de), "want *DecodeError, got %T", err)
			assert.Equal(t, tt.kind, de.Kind)
			assert.Equal(t, tt.offset, de.Offset)
			assert.False(t, de.Truncated)
			switch tt.kind {
			case KindInvalidHeaderByte, KindInvalidTailByte:
				assert.Equal(t, tt.b, de.Byte)
			default:
				assert.Equal(t, tt.cp, de.CodePoint)
			}
			assert.Equal(t, tt.msg, err.Error())
			assert.Equal(t, tt.exit, ExitCode(err))
		})
	}
}

func TestValidate_Truncated(t *testing.T) {
	tests := []struct {
		name   string
		in     []byte
		cp     rune
		offset int64
		msg    string
	}{
		{"2-byte missing tail", []byte{0xC3}, 0x03, 1, "Invalid UTF-8 code point: U+0003"},
		{"3-byte missing last tail", []byte{0xE2, 0x82}, 0x82, 2, "Invalid UTF-8 code point: U+0082"},
		{"4-byte missing last tail", []byte{0x41, 0xF0, 0x9F, 0x98}, 0x7D8, 4, "Invalid UTF-8 code point: U+07D8"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateBytes(tt.in)
			require.ErrorIs(t, err, ErrInvalidCodePoint)

			var de *DecodeError
			require.ErrorAs(t, err, &de)
			assert.True(t, de.Truncated)
			assert.Equal(t, tt.cp, de.CodePoint)
			assert.Equal(t, tt.offset, de.Offset)
			assert.Equal(t, tt.msg, err.Error())
			assert.Equal(t, 3, ExitCode(err))
		})
	}
}

func TestValidate_StopsAtFirstError(t *testing.T) {
	// The tail error comes first; the later header error is never reached.
	src := bytes.NewReader([]byte{0x41, 0xC3, 0x28, 0x80, 0x80})

	_, err := Validate(context.Background(), src)
	require.ErrorIs(t, err, ErrInvalidTailByte)
	assert.Equal(t, 2, src.Len(), "must not read past the offending byte")
}

// ============================================================
// Properties
// ============================================================

func TestValidate_AllASCII(t *testing.T) {
	in := make([]byte, 0, 128*3)
	for i := 0; i < 3; i++ {
		for b := 0; b < 0x80; b++ {
			in = append(in, byte(b))
		}
	}

	tally, err := ValidateBytes(in)
	require.NoError(t, err)
	assert.Equal(t, uint64(len(in)), tally.ASCII)
	assert.Zero(t, tally.MultiByte)
}

func TestDecoder_RoundTrip(t *testing.T) {
	ranges := []struct {
		lo, hi rune
		size   int
	}{
		{0x80, 0x7FF, 2},
		{0x800, 0xD7FF, 3},
		{0xE000, 0xFFFF, 3},
		{0x10000, 0x10FFFF, 4},
	}

	buf := make([]byte, utf8.UTFMax)
	for _, r := range ranges {
		for cp := r.lo; cp <= r.hi; cp++ {
			n := utf8.EncodeRune(buf, cp)
			d := decoder{src: bytes.NewReader(buf[:n])}
			got, size, err := d.next()
			if err != nil {
				t.Fatalf("U+%04X: %v", cp, err)
			}
			if got != cp || size != r.size {
				t.Fatalf("U+%04X: got U+%04X size %d", cp, got, size)
			}
		}
	}
}

func TestValidate_MultiByteCount(t *testing.T) {
	var b strings.Builder
	for cp := rune(0x80); cp <= 0x7FF; cp++ {
		b.WriteRune(cp)
	}

	tally, err := ValidateBytes([]byte(b.String()))
	require.NoError(t, err)
	assert.Equal(t, uint64(0x7FF-0x80+1), tally.MultiByte)
	assert.Zero(t, tally.ASCII)
}

func TestValidate_AgreesWithStdlib(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	alphabet := []byte{0x00, 0x41, 0x7F, 0x80, 0x9F, 0xA0, 0xBF, 0xC0, 0xC1, 0xC2, 0xDF, 0xE0, 0xED, 0xEF, 0xF0, 0xF4, 0xF5, 0xF8, 0xFF}

	for i := 0; i < 20000; i++ {
		in := make([]byte, rng.Intn(8))
		for j := range in {
			in[j] = alphabet[rng.Intn(len(alphabet))]
		}

		_, err := ValidateBytes(in)
		if got, want := err == nil, utf8.Valid(in); got != want {
			t.Fatalf("% X: valid=%v, utf8.Valid=%v (err=%v)", in, got, want, err)
		}
	}
}

func TestValidate_Idempotent(t *testing.T) {
	inputs := [][]byte{
		[]byte("Aé€"),
		{0xC0, 0x80},
		{0xE2, 0x82},
	}
	for _, in := range inputs {
		t1, err1 := ValidateBytes(in)
		t2, err2 := ValidateBytes(in)
		assert.Equal(t, t1, t2)
		assert.Equal(t, err1, err2)
	}
}

// ============================================================
// Sources and Cancellation
// ============================================================

func TestValidate_ReadErrorPropagates(t *testing.T) {
	boom := errors.New("disk on fire")
	r := io.MultiReader(strings.NewReader("ab\xc3"), iotest.ErrReader(boom))

	_, err := ValidateReader(context.Background(), r)
	require.ErrorIs(t, err, boom)

	var de *DecodeError
	assert.False(t, errors.As(err, &de))
	assert.Equal(t, ExitFailure, ExitCode(err))
	assert.Contains(t, err.Error(), "offset 3")
}

func TestValidate_CancelledBeforeStart(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	tally, err := Validate(ctx, bytes.NewReader([]byte("abc")))
	require.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, tally)
}

// cancelAfter cancels its context once n bytes have been read.
type cancelAfter struct {
	r      io.ByteReader
	n      int
	cancel context.CancelFunc
}

func (c *cancelAfter) ReadByte() (byte, error) {
	c.n--
	if c.n == 0 {
		c.cancel()
	}
	return c.r.ReadByte()
}

func TestValidate_CancelledMidStream(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	in := bytes.Repeat([]byte("é"), checkEvery*2)
	src := &cancelAfter{r: bytes.NewReader(in), n: 11, cancel: cancel}

	_, err := Validate(ctx, src)
	require.ErrorIs(t, err, context.Canceled)
}

func TestValidateReader_UsesByteReader(t *testing.T) {
	tally, err := ValidateReader(context.Background(), strings.NewReader("añb"))
	require.NoError(t, err)
	assert.Equal(t, Tally{ASCII: 2, MultiByte: 1, Bytes: 4}, tally)
}

func TestValidateReader_WrapsPlainReader(t *testing.T) {
	r := iotest.OneByteReader(strings.NewReader("€€x"))
	tally, err := ValidateReader(context.Background(), r)
	require.NoError(t, err)
	assert.Equal(t, uint64(1), tally.ASCII)
	assert.Equal(t, uint64(2), tally.MultiByte)
}

func TestTally_String(t *testing.T) {
	tally := Tally{ASCII: 1, MultiByte: 2}
	assert.Equal(t, "Found 1 ASCII and 2 multi-byte UTF-8 characters.", tally.String())
	assert.Equal(t, uint64(3), tally.Chars())
}
