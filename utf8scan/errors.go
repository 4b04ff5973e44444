package utf8scan

import (
	"errors"
	"fmt"
)

// Kind classifies a decode failure.
type Kind uint8

const (
	KindInvalidHeaderByte Kind = iota + 1 // Leading byte matches no prefix
	KindInvalidTailByte                   // Continuation byte is not 10xxxxxx
	KindInvalidCodePoint                  // Surrogate, above U+10FFFF or truncated
	KindOverlongEncoding                  // Encodable in fewer bytes
)

// Process exit statuses outside the decode error range.
const (
	ExitOK      = 0
	ExitFailure = 5 // I/O, limit, cancellation or usage failure
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case KindInvalidHeaderByte:
		return "invalid_header_byte"
	case KindInvalidTailByte:
		return "invalid_tail_byte"
	case KindInvalidCodePoint:
		return "invalid_code_point"
	case KindOverlongEncoding:
		return "overlong_encoding"
	default:
		return fmt.Sprintf("unknown(%d)", k)
	}
}

// ExitCode returns the process status for the kind.
func (k Kind) ExitCode() int {
	if k < KindInvalidHeaderByte || k > KindOverlongEncoding {
		return ExitFailure
	}
	return int(k)
}

// DecodeError reports the first malformed sequence in a stream.
//
// Byte is meaningful for the header and tail kinds, CodePoint for the code
// point and overlong kinds. Offset is the 0-based stream position of the
// offending byte; for code point checks it is the position of the leading
// byte, and for truncated input it is the stream length.
type DecodeError struct {
	Kind      Kind
	Byte      byte
	CodePoint rune
	Offset    int64
	Truncated bool // stream ended while a continuation byte was expected
}

func (e *DecodeError) Error() string {
	switch e.Kind {
	case KindInvalidHeaderByte:
		return fmt.Sprintf("Invalid UTF-8 header byte: 0x%02X", e.Byte)
	case KindInvalidTailByte:
		return fmt.Sprintf("Invalid UTF-8 tail byte: 0x%02X", e.Byte)
	case KindInvalidCodePoint:
		return fmt.Sprintf("Invalid UTF-8 code point: U+%04X", e.CodePoint)
	case KindOverlongEncoding:
		return fmt.Sprintf("Overlong UTF-8 code point: U+%04X", e.CodePoint)
	default:
		return fmt.Sprintf("UTF-8 decode error: %s", e.Kind)
	}
}

// Is reports whether target is a DecodeError of the same kind, so the
// sentinels below work with errors.Is.
func (e *DecodeError) Is(target error) bool {
	t, ok := target.(*DecodeError)
	return ok && t.Kind == e.Kind
}

// ExitCode returns the process status for the error.
func (e *DecodeError) ExitCode() int {
	return e.Kind.ExitCode()
}

// Sentinels for errors.Is.
var (
	ErrInvalidHeaderByte = &DecodeError{Kind: KindInvalidHeaderByte}
	ErrInvalidTailByte   = &DecodeError{Kind: KindInvalidTailByte}
	ErrInvalidCodePoint  = &DecodeError{Kind: KindInvalidCodePoint}
	ErrOverlongEncoding  = &DecodeError{Kind: KindOverlongEncoding}
)

// ExitCode maps a validation result to a process exit status.
func ExitCode(err error) int {
	if err == nil {
		return ExitOK
	}
	var de *DecodeError
	if errors.As(err, &de) {
		return de.ExitCode()
	}
	return ExitFailure
}
