// Package utf8scan validates byte streams against the UTF-8 encoding rules.
//
// The validator reads one byte at a time from an io.ByteReader, decides the
// sequence length from the leading byte, checks every continuation byte,
// assembles the code point and rejects surrogate halves, values above
// U+10FFFF and overlong (non-minimal) encodings. Valid characters are counted
// as ASCII (one byte) or multi-byte (two to four bytes).
//
// # Result
//
// Validation returns either a Tally or an error. Decode failures are reported
// as *DecodeError and stop the scan at the first malformed sequence; there is
// no resynchronization. Any other error comes from the byte source or from a
// cancelled context.
//
//	t, err := utf8scan.ValidateBytes([]byte("A\xc3\xa9\xe2\x82\xac"))
//	// t.ASCII == 1, t.MultiByte == 2, err == nil
//
// # Leading Bytes
//
//	0xxxxxxx  1 byte   payload 7 bits
//	110xxxxx  2 bytes  payload 5 bits
//	1110xxxx  3 bytes  payload 4 bits
//	11110xxx  4 bytes  payload 3 bits
//
// Continuation bytes match 10xxxxxx and contribute 6 bits each.
//
// # Truncated Input
//
// End of stream inside a multi-byte sequence is reported as
// KindInvalidCodePoint carrying the partially assembled code point, for every
// sequence length.
//
// # Exit Codes
//
// ExitCode maps a result to a process status: 0 on success, 1 through 4 for
// the four decode error kinds, ExitFailure for anything else.
package utf8scan
