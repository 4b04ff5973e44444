package utf8scan

// Code point limits.
const (
	MaxCodePoint = 0x10FFFF
	surrogateMin = 0xD800
	surrogateMax = 0xDFFF
)

// Continuation bytes: 10xxxxxx.
const (
	tailPrefix byte = 0x80
	tailMask   byte = 0xC0
)

// form describes one leading-byte pattern.
type form struct {
	prefix  byte
	mask    byte
	size    int
	shorter rune // last code point of the next-shorter encoding
}

// forms is ordered by priority; the first matching prefix wins.
var forms = [...]form{
	{prefix: 0x00, mask: 0x80, size: 1, shorter: -1},
	{prefix: 0xC0, mask: 0xE0, size: 2, shorter: 0x7F},
	{prefix: 0xE0, mask: 0xF0, size: 3, shorter: 0x7FF},
	{prefix: 0xF0, mask: 0xF8, size: 4, shorter: 0xFFFF},
}

// classify returns the form for a leading byte, or false for 10xxxxxx and
// 11111xxx.
func classify(b byte) (form, bool) {
	for _, f := range forms {
		if b&f.mask == f.prefix {
			return f, true
		}
	}
	return form{}, false
}

// payload extracts the leading byte's code point bits.
func (f form) payload(b byte) rune {
	return rune(b &^ f.mask)
}

// check applies the range, surrogate and overlong rules to a fully
// assembled code point. Range and surrogate violations take precedence.
func (f form) check(cp rune) Kind {
	switch f.size {
	case 1:
		return 0
	case 3:
		if cp >= surrogateMin && cp <= surrogateMax {
			return KindInvalidCodePoint
		}
	case 4:
		if cp > MaxCodePoint {
			return KindInvalidCodePoint
		}
	}
	if cp <= f.shorter {
		return KindOverlongEncoding
	}
	return 0
}

func isTail(b byte) bool {
	return b&tailMask == tailPrefix
}
