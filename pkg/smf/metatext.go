package smf

import (
	"fmt"
	"strings"

	"golang.org/x/net/html/charset"
	"golang.org/x/text/transform"
)

// TextDecoder turns the raw bytes of a text-class meta event into the
// string placed in the JSON document.
type TextDecoder func(data []byte) string

// EscapeText is the default TextDecoder: printable ASCII passes through,
// everything else becomes a \xNN escape so arbitrary bytes survive the
// trip through a JSON string.
func EscapeText(data []byte) string {
	var sb strings.Builder
	for _, b := range data {
		if b >= 32 && b <= 126 {
			sb.WriteByte(b)
		} else {
			fmt.Fprintf(&sb, "\\x%02x", b)
		}
	}
	return sb.String()
}

// NewCharsetDecoder returns a TextDecoder that transcodes meta text from
// the named charset (Shift_JIS, ISO-8859-1, ...) into UTF-8. Bytes that
// fail to transcode fall back to EscapeText.
func NewCharsetDecoder(label string) (TextDecoder, error) {
	enc, _ := charset.Lookup(label)
	if enc == nil {
		return nil, fmt.Errorf("unknown charset: %s", label)
	}
	return func(data []byte) string {
		decoded, _, err := transform.Bytes(enc.NewDecoder(), data)
		if err != nil {
			return EscapeText(data)
		}
		return string(decoded)
	}, nil
}
